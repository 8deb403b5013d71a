package server

import (
	"time"

	"outbreak/server/internal/telemetry"
	"outbreak/server/internal/world"
)

const (
	defaultTickInterval     = 60 * time.Millisecond
	defaultDt               = 0.1
	defaultHumanCount       = 100
	defaultZombieCount      = 5
	defaultHistoryLimit     = 10000
	defaultSubscriberBuffer = 16
)

// HubConfig controls the driver that pushes ticks into the world.
type HubConfig struct {
	TickInterval     time.Duration
	Dt               float64
	World            world.Config
	AutoStart        bool
	HistoryLimit     int
	SubscriberBuffer int
	Logger           telemetry.Logger
}

func DefaultHubConfig() HubConfig {
	worldCfg := world.DefaultConfig()
	worldCfg.HumanCount = defaultHumanCount
	worldCfg.ZombieCount = defaultZombieCount
	return HubConfig{
		TickInterval:     defaultTickInterval,
		Dt:               defaultDt,
		World:            worldCfg,
		HistoryLimit:     defaultHistoryLimit,
		SubscriberBuffer: defaultSubscriberBuffer,
	}
}

func (cfg HubConfig) normalized() HubConfig {
	normalized := cfg
	if normalized.TickInterval <= 0 {
		normalized.TickInterval = defaultTickInterval
	}
	if normalized.Dt <= 0 {
		normalized.Dt = defaultDt
	}
	if normalized.HistoryLimit <= 0 {
		normalized.HistoryLimit = defaultHistoryLimit
	}
	if normalized.SubscriberBuffer <= 0 {
		normalized.SubscriberBuffer = defaultSubscriberBuffer
	}
	normalized.Logger = telemetry.Default(normalized.Logger)
	return normalized
}
