package room

import (
	"go.uber.org/fx"

	"github.com/casalunahms/casaluna/internal/room/repository"
	"github.com/casalunahms/casaluna/internal/room/service"
)

var Module = fx.Module("room",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
