package migration

import (
	analyticsdomain "github.com/inkhaus/studio/internal/analytics/domain"
	bookingdomain "github.com/inkhaus/studio/internal/booking/domain"
	"github.com/inkhaus/studio/internal/config"
	designdomain "github.com/inkhaus/studio/internal/design/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		// The versioned SQL migrations target postgres. Other dialects
		// (sqlite for local development, mysql) fall back to AutoMigrate.
		if cfg.DBType != "postgres" {
			return conn.AutoMigrate(
				&analyticsdomain.Event{},
				&designdomain.Design{},
				&bookingdomain.Booking{},
				&bookingdomain.Customer{},
				&bookingdomain.SyncState{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
