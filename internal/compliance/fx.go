package compliance

import (
	"github.com/civicworks/caseboard/internal/compliance/repository"
	"github.com/civicworks/caseboard/internal/compliance/service"
	"go.uber.org/fx"
)

var Module = fx.Module("compliance.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
