package main

import (
	"github.com/SeredDEV/store-payments/internal/capture"
	"github.com/SeredDEV/store-payments/internal/checkout"
	"github.com/SeredDEV/store-payments/internal/config"
	"github.com/SeredDEV/store-payments/internal/events"
	"github.com/SeredDEV/store-payments/internal/gateway"
	"github.com/SeredDEV/store-payments/internal/observability/logger"
	"github.com/SeredDEV/store-payments/internal/observability/tracing"
	"github.com/SeredDEV/store-payments/internal/server"
	"github.com/SeredDEV/store-payments/internal/session"
	"github.com/SeredDEV/store-payments/internal/webhook"
	"github.com/SeredDEV/store-payments/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		tracing.Module,
		fx.Provide(func() *snowflake.Node {
			node, err := snowflake.NewNode(1)
			if err != nil {
				panic(err)
			}
			return node
		}),
		db.Module,
		events.Module,
		gateway.Module,
		session.Module,
		checkout.Module,
		webhook.Module,
		capture.Module,
		server.Module,
	)
	app.Run()
}
