package observability

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/casalunahms/casaluna/internal/config"
)

var Module = fx.Module("observability",
	fx.Provide(NewLogger),
)

func NewLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.Log.Mode == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
