package payment

import (
	"go.uber.org/fx"

	"github.com/casalunahms/casaluna/internal/payment/repository"
	"github.com/casalunahms/casaluna/internal/payment/service"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
