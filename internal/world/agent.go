package world

import "github.com/google/uuid"

// Kind identifies the behavior an agent runs. It never changes for the
// lifetime of an agent: conversion replaces the agent instead.
type Kind uint8

const (
	KindHuman Kind = iota
	KindZombie
)

func (k Kind) String() string {
	switch k {
	case KindHuman:
		return "human"
	case KindZombie:
		return "zombie"
	default:
		return "unknown"
	}
}

// Status is observational only. StatusInfected is reserved and currently
// never assigned.
type Status uint8

const (
	StatusIdle Status = iota
	StatusMoving
	StatusInfected
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusMoving:
		return "moving"
	case StatusInfected:
		return "infected"
	default:
		return "unknown"
	}
}

// State is the kinematic state of an agent.
type State struct {
	Status   Status
	Position Vec2
	Velocity Vec2
}

// Agent is a single simulated entity owned by a World. Pointers to agents
// handed out by the spatial queries are only valid within the current tick.
type Agent struct {
	id    uuid.UUID
	kind  Kind
	state State

	// busy gates bite signals to one per tick; cleared by the world.
	busy       bool
	biteRadius float64
	speed      float64
}

func newHuman(id uuid.UUID, position, velocity Vec2) *Agent {
	return &Agent{
		id:    id,
		kind:  KindHuman,
		state: State{Position: position, Velocity: velocity},
		speed: HumanSpeed,
	}
}

func newZombie(id uuid.UUID, position, velocity Vec2, biteRadius float64) *Agent {
	return &Agent{
		id:         id,
		kind:       KindZombie,
		state:      State{Position: position, Velocity: velocity},
		biteRadius: biteRadius,
		speed:      ZombieSpeed,
	}
}

func (a *Agent) ID() uuid.UUID       { return a.id }
func (a *Agent) Kind() Kind          { return a.kind }
func (a *Agent) State() State        { return a.state }
func (a *Agent) Position() Vec2      { return a.state.Position }
func (a *Agent) Velocity() Vec2      { return a.state.Velocity }
func (a *Agent) Busy() bool          { return a.busy }
func (a *Agent) BiteRadius() float64 { return a.biteRadius }
func (a *Agent) Speed() float64      { return a.speed }

// decide runs the kind-specific decision rule. It writes only to the
// receiver and returns the human this agent bit, if any.
func (a *Agent) decide(view View, rng Rand) *Agent {
	switch a.kind {
	case KindHuman:
		decideHuman(a, rng)
	case KindZombie:
		return decideZombie(a, view, rng)
	}
	return nil
}

// Integrate advances the position by velocity*dt. Each axis that leaves the
// bounds is clamped onto the edge and has its velocity component negated.
func (a *Agent) Integrate(dt float64, bounds Rect) {
	next := a.state.Position.Add(a.state.Velocity.Mul(dt))
	vel := a.state.Velocity

	if next[0] < bounds.Left {
		next[0] = bounds.Left
		vel[0] = -vel[0]
	} else if next[0] > bounds.Right {
		next[0] = bounds.Right
		vel[0] = -vel[0]
	}

	if next[1] < bounds.Top {
		next[1] = bounds.Top
		vel[1] = -vel[1]
	} else if next[1] > bounds.Bottom {
		next[1] = bounds.Bottom
		vel[1] = -vel[1]
	}

	a.state.Position = next
	a.state.Velocity = vel
}

// AgentSnapshot is a read-only copy of an agent for observers.
type AgentSnapshot struct {
	ID         uuid.UUID
	Kind       Kind
	Status     Status
	Position   Vec2
	Velocity   Vec2
	BiteRadius float64
}

func (a *Agent) snapshot() AgentSnapshot {
	return AgentSnapshot{
		ID:         a.id,
		Kind:       a.kind,
		Status:     a.state.Status,
		Position:   a.state.Position,
		Velocity:   a.state.Velocity,
		BiteRadius: a.biteRadius,
	}
}
