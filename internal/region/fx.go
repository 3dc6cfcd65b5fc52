package region

import (
	"github.com/civicworks/caseboard/internal/region/repository"
	"github.com/civicworks/caseboard/internal/region/service"
	"go.uber.org/fx"
)

var Module = fx.Module("region.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
