package occupancy

import (
	"go.uber.org/fx"

	"github.com/casalunahms/casaluna/internal/occupancy/repository"
	"github.com/casalunahms/casaluna/internal/occupancy/service"
)

var Module = fx.Module("occupancy.engine",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewEngine),
)
