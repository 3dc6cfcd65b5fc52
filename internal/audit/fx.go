package audit

import (
	"github.com/civicworks/caseboard/internal/audit/repository"
	"github.com/civicworks/caseboard/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
