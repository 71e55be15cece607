package migration

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	paymentdomain "github.com/casalunahms/casaluna/internal/payment/domain"
)

type methodSeed struct {
	Code string
	Name string
}

// SeedPaymentMethods upserts the built-in settlement methods. Existing
// rows keep their ids; only the display name and channel refresh.
func SeedPaymentMethods(ctx context.Context, db *gorm.DB, genID *snowflake.Node) error {
	seeds := []methodSeed{
		{Code: "cash", Name: "Efectivo"},
		{Code: "transfer", Name: "Transferencia"},
	}

	for _, seed := range seeds {
		method := &paymentdomain.PaymentMethod{
			ID:        genID.Generate(),
			Code:      seed.Code,
			Name:      seed.Name,
			Channel:   paymentdomain.ResolveChannel(seed.Code, seed.Name),
			CreatedAt: time.Now().UTC(),
		}
		err := db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "code"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "channel"}),
			}).
			Create(method).Error
		if err != nil {
			return err
		}
	}
	return nil
}
