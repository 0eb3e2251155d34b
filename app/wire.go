//go:build wireinject
// +build wireinject

package app

import (
	"github.com/benbjohnson/clock"
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"source.quilibrium.com/quilibrium/monorepo/wesolowski/config"
	"source.quilibrium.com/quilibrium/monorepo/wesolowski/engine"
)

var loggerSet = wire.NewSet(
	newLogger,
)

var debugLoggerSet = wire.NewSet(
	debugLogger,
)

var metricsSet = wire.NewSet(
	defaultRegisterer,
	engine.NewMetrics,
)

var engineSet = wire.NewSet(
	wire.FieldsOf(new(*config.Config), "Engine"),
	clock.New,
	engine.NewEngine,
)

func defaultRegisterer() prometheus.Registerer {
	return prometheus.DefaultRegisterer
}

func NewEngine(*config.Config) (*engine.Engine, error) {
	panic(wire.Build(
		loggerSet,
		metricsSet,
		engineSet,
	))
}

func NewDebugEngine(*config.Config) (*engine.Engine, error) {
	panic(wire.Build(
		debugLoggerSet,
		metricsSet,
		engineSet,
	))
}
