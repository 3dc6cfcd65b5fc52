package inspection

import (
	"github.com/civicworks/caseboard/internal/inspection/repository"
	"github.com/civicworks/caseboard/internal/inspection/service"
	"go.uber.org/fx"
)

var Module = fx.Module("inspection.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
