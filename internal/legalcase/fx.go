package legalcase

import (
	"github.com/civicworks/caseboard/internal/legalcase/repository"
	"github.com/civicworks/caseboard/internal/legalcase/service"
	"go.uber.org/fx"
)

var Module = fx.Module("legalcase.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
