package app

import (
	"strconv"
	"strings"
	"time"

	server "outbreak/server"
	"outbreak/server/internal/observability"
	"outbreak/server/internal/telemetry"
	"outbreak/server/internal/world"
	"outbreak/server/logging"
)

type settings struct {
	hub           server.HubConfig
	logging       logging.Config
	listenAddr    string
	observability observability.Config
}

// loadSettings layers environment overrides on top of the defaults. Invalid
// values are reported through logger and otherwise ignored.
func loadSettings(cfg Config, getenv func(string) string, logger telemetry.Logger) settings {
	s := settings{
		hub:           server.DefaultHubConfig(),
		logging:       logging.DefaultConfig(),
		listenAddr:    defaultListenAddr,
		observability: cfg.Observability,
	}
	env := envReader{getenv: getenv, logger: logger}

	env.int("SIM_HUMANS", &s.hub.World.HumanCount)
	env.int("SIM_ZOMBIES", &s.hub.World.ZombieCount)
	humans, zombies := world.ClampPopulation(s.hub.World.HumanCount, s.hub.World.ZombieCount)
	if humans != s.hub.World.HumanCount || zombies != s.hub.World.ZombieCount {
		logger.Printf("population %d/%d outside [0, %d], using %d/%d",
			s.hub.World.HumanCount, s.hub.World.ZombieCount, world.MaxPopulation, humans, zombies)
		s.hub.World.HumanCount, s.hub.World.ZombieCount = humans, zombies
	}
	env.float("SIM_BITE_RADIUS", &s.hub.World.DefaultBiteRadius)
	env.int("SIM_DECIDE_WORKERS", &s.hub.World.DecideWorkers)
	if raw := strings.TrimSpace(getenv("SIM_SEED")); raw != "" {
		s.hub.World.Seed = raw
	}
	env.float("SIM_DT", &s.hub.Dt)
	env.bool("SIM_AUTOSTART", &s.hub.AutoStart)

	var tickMillis int
	if env.int("SIM_TICK_MS", &tickMillis) {
		if tickMillis > 0 {
			s.hub.TickInterval = time.Duration(tickMillis) * time.Millisecond
		} else {
			logger.Printf("invalid SIM_TICK_MS=%d: must be positive", tickMillis)
		}
	}

	if raw := strings.TrimSpace(getenv("LISTEN_ADDR")); raw != "" {
		s.listenAddr = raw
	}

	if raw := strings.TrimSpace(getenv("LOG_LEVEL")); raw != "" {
		if severity, err := logging.ParseSeverity(raw); err == nil {
			s.logging.MinimumSeverity = severity
		} else {
			logger.Printf("invalid LOG_LEVEL=%q: %v", raw, err)
		}
	}
	if raw := strings.TrimSpace(getenv("LOG_JSON_PATH")); raw != "" {
		s.logging.JSON.FilePath = raw
		if !s.logging.HasSink(logging.SinkJSON) {
			s.logging.EnabledSinks = append(s.logging.EnabledSinks, logging.SinkJSON)
		}
	}

	env.bool("ENABLE_PPROF_TRACE", &s.observability.EnablePprofTrace)
	return s
}

type envReader struct {
	getenv func(string) string
	logger telemetry.Logger
}

func (e envReader) int(key string, target *int) bool {
	raw := strings.TrimSpace(e.getenv(key))
	if raw == "" {
		return false
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		e.logger.Printf("invalid %s=%q: %v", key, raw, err)
		return false
	}
	*target = value
	return true
}

func (e envReader) float(key string, target *float64) bool {
	raw := strings.TrimSpace(e.getenv(key))
	if raw == "" {
		return false
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		e.logger.Printf("invalid %s=%q: %v", key, raw, err)
		return false
	}
	*target = value
	return true
}

func (e envReader) bool(key string, target *bool) bool {
	raw := strings.TrimSpace(e.getenv(key))
	if raw == "" {
		return false
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		e.logger.Printf("invalid %s=%q: %v", key, raw, err)
		return false
	}
	*target = value
	return true
}
