package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/billcollect/internal/billing"
	"github.com/smallbiznis/billcollect/internal/clock"
	"github.com/smallbiznis/billcollect/internal/config"
	"github.com/smallbiznis/billcollect/internal/jobstate"
	"github.com/smallbiznis/billcollect/internal/leaderlock"
	"github.com/smallbiznis/billcollect/internal/migration"
	"github.com/smallbiznis/billcollect/internal/scheduledbilling"
	"github.com/smallbiznis/billcollect/internal/scheduler"
	"github.com/smallbiznis/billcollect/internal/server"
	"github.com/smallbiznis/billcollect/internal/upstream"
	"github.com/smallbiznis/billcollect/pkg/db"
	"github.com/smallbiznis/billcollect/pkg/log"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		log.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// Functional domains
		upstream.Module,
		jobstate.Module,
		billing.Module,
		scheduledbilling.Module,
		leaderlock.Module,
		scheduler.Module,

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
