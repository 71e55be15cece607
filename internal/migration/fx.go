package migration

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/casalunahms/casaluna/internal/config"
	occupancydomain "github.com/casalunahms/casaluna/internal/occupancy/domain"
	paymentdomain "github.com/casalunahms/casaluna/internal/payment/domain"
	reservationdomain "github.com/casalunahms/casaluna/internal/reservation/domain"
	roomdomain "github.com/casalunahms/casaluna/internal/room/domain"
	shiftdomain "github.com/casalunahms/casaluna/internal/shift/domain"
	staynightdomain "github.com/casalunahms/casaluna/internal/staynight/domain"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, genID *snowflake.Node) error {
		if cfg.Database.Driver == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// sqlite and mysql deployments are single-node dev setups;
			// AutoMigrate keeps them in sync without the SQL files.
			if err := autoMigrate(conn); err != nil {
				return err
			}
		}
		return SeedPaymentMethods(context.Background(), conn, genID)
	}),
)

func autoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&roomdomain.Room{},
		&reservationdomain.Reservation{},
		&reservationdomain.RoomBooking{},
		&staynightdomain.Stay{},
		&staynightdomain.StayNight{},
		&paymentdomain.PaymentMethod{},
		&paymentdomain.Payment{},
		&occupancydomain.RoomDailyStatus{},
		&shiftdomain.ShiftHandover{},
		&shiftdomain.Sale{},
		&shiftdomain.CashOutflow{},
	)
}
