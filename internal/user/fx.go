package user

import (
	"github.com/civicworks/caseboard/internal/user/repository"
	"github.com/civicworks/caseboard/internal/user/service"
	"go.uber.org/fx"
)

var Module = fx.Module("user.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
