package claim

import (
	"github.com/civicworks/caseboard/internal/claim/repository"
	"github.com/civicworks/caseboard/internal/claim/service"
	"go.uber.org/fx"
)

var Module = fx.Module("claim.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
