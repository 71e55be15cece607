package staynight

import (
	"go.uber.org/fx"

	"github.com/casalunahms/casaluna/internal/staynight/repository"
	"github.com/casalunahms/casaluna/internal/staynight/service"
)

var Module = fx.Module("staynight.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
