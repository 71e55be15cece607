package shift

import (
	"go.uber.org/fx"

	"github.com/casalunahms/casaluna/internal/shift/repository"
	"github.com/casalunahms/casaluna/internal/shift/service"
)

var Module = fx.Module("shift.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
