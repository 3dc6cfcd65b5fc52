package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/civicworks/caseboard/internal/clock"
	"github.com/civicworks/caseboard/internal/config"
	"github.com/civicworks/caseboard/internal/migration"
	"github.com/civicworks/caseboard/internal/observability"
	"github.com/civicworks/caseboard/internal/server"
	"github.com/civicworks/caseboard/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
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
