package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/inkhaus/studio/internal/clock"
	"github.com/inkhaus/studio/internal/config"
	"github.com/inkhaus/studio/internal/logger"
	"github.com/inkhaus/studio/internal/migration"
	"github.com/inkhaus/studio/internal/server"
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

		server.Module,
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
