package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/inkhaus/studio/internal/booking"
	"github.com/inkhaus/studio/internal/calcom"
	"github.com/inkhaus/studio/internal/clock"
	"github.com/inkhaus/studio/internal/config"
	"github.com/inkhaus/studio/internal/logger"
	"github.com/inkhaus/studio/internal/migration"
	"github.com/inkhaus/studio/internal/realtime"
	"github.com/inkhaus/studio/internal/scheduler"
	syncsvc "github.com/inkhaus/studio/internal/sync"
	"github.com/inkhaus/studio/pkg/db"
	"github.com/inkhaus/studio/pkg/telemetry"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		telemetry.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// Dependencies required by the sync loop. No HTTP server here.
		booking.Module,
		calcom.Module,
		realtime.Module,
		syncsvc.Module,
		scheduler.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
