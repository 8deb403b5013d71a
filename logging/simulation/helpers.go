package simulation

import (
	"context"

	"outbreak/server/logging"
)

const (
	// EventWorldReset is emitted when the roster is rebuilt.
	EventWorldReset logging.EventType = "simulation.world_reset"
	// EventConversion is emitted for every human replaced by a zombie.
	EventConversion logging.EventType = "simulation.conversion"
	// EventPopulation is emitted once per reset and once per tick.
	EventPopulation logging.EventType = "simulation.population"
	// EventTickBudgetOverrun is emitted when a driver tick exceeds its interval.
	EventTickBudgetOverrun logging.EventType = "simulation.tick_budget_overrun"
)

var worldRef = logging.EntityRef{Kind: logging.EntityKindWorld}

// WorldResetPayload describes the freshly spawned population.
type WorldResetPayload struct {
	Humans     int     `json:"humans"`
	Zombies    int     `json:"zombies"`
	BiteRadius float64 `json:"biteRadius"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
}

func WorldReset(ctx context.Context, pub logging.Publisher, tick uint64, payload WorldResetPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventWorldReset,
		Tick:     tick,
		Actor:    worldRef,
		Severity: logging.SeverityInfo,
		Category: logging.CategorySimulation,
		Payload:  payload,
		Extra:    extra,
	})
}

// ConversionPayload records the zombie that replaced the victim.
type ConversionPayload struct {
	ZombieID   string  `json:"zombieId"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	BiteRadius float64 `json:"biteRadius"`
}

// Conversion publishes a bite resolution. actor is the biting zombie and
// victim the human that was removed.
func Conversion(ctx context.Context, pub logging.Publisher, tick uint64, actor, victim logging.EntityRef, payload ConversionPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventConversion,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{victim},
		Severity: logging.SeverityInfo,
		Category: logging.CategorySimulation,
		Payload:  payload,
		Extra:    extra,
	})
}

// PopulationPayload is the per-tick population report.
type PopulationPayload struct {
	Humans  int     `json:"humans"`
	Zombies int     `json:"zombies"`
	Time    float64 `json:"time"`
}

func Population(ctx context.Context, pub logging.Publisher, tick uint64, payload PopulationPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventPopulation,
		Tick:     tick,
		Actor:    worldRef,
		Severity: logging.SeverityDebug,
		Category: logging.CategorySimulation,
		Payload:  payload,
		Extra:    extra,
	})
}

// TickBudgetOverrunPayload captures timing details for a slow tick.
type TickBudgetOverrunPayload struct {
	DurationMillis int64   `json:"durationMillis"`
	BudgetMillis   int64   `json:"budgetMillis"`
	Ratio          float64 `json:"ratio"`
	Streak         uint64  `json:"streak"`
}

// TickBudgetOverrun publishes a warning when a driver tick exceeds its budget.
func TickBudgetOverrun(ctx context.Context, pub logging.Publisher, tick uint64, payload TickBudgetOverrunPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTickBudgetOverrun,
		Tick:     tick,
		Actor:    logging.EntityRef{Kind: logging.EntityKindDriver},
		Severity: logging.SeverityWarn,
		Category: logging.CategoryDriver,
		Payload:  payload,
		Extra:    extra,
	})
}
