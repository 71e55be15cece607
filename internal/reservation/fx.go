package reservation

import (
	"go.uber.org/fx"

	"github.com/casalunahms/casaluna/internal/reservation/repository"
	"github.com/casalunahms/casaluna/internal/reservation/service"
)

var Module = fx.Module("reservation.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
