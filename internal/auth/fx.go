package auth

import (
	"github.com/civicworks/caseboard/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(service.New),
)
