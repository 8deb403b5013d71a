package proto

import (
	"encoding/json"
	"errors"
	"fmt"

	"outbreak/server/internal/world"
)

const (
	// Version tracks the wire-protocol revision expected by clients.
	Version = 1

	// Type identifiers for outbound websocket payloads.
	TypeState   = "state"
	TypeHistory = "history"
	TypeError   = "error"
)

// Client command identifiers.
const (
	CommandReset         = "reset"
	CommandStart         = "start"
	CommandPause         = "pause"
	CommandStop          = "stop"
	CommandSetDt         = "setDt"
	CommandSetBiteRadius = "setBiteRadius"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrInvalidCommand = errors.New("invalid command")
)

// Bounds mirrors the world rectangle.
type Bounds struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// Agent is the per-agent data a renderer needs.
type Agent struct {
	ID   string  `json:"id"`
	Kind string  `json:"kind" jsonschema:"enum=human,enum=zombie"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Population is the report emitted after every reset and tick.
type Population struct {
	Humans  int     `json:"humans"`
	Zombies int     `json:"zombies"`
	Time    float64 `json:"time"`
	Tick    uint64  `json:"tick"`
}

// StateMessage is broadcast after every reset and tick.
type StateMessage struct {
	Ver        int        `json:"ver"`
	Type       string     `json:"type"`
	Running    bool       `json:"running"`
	Dt         float64    `json:"dt"`
	Population Population `json:"population"`
	Bounds     Bounds     `json:"bounds"`
	Agents     []Agent    `json:"agents"`
}

// HistoryMessage carries the population time series since the last reset.
// Peak is the largest count of either kind, for scaling a plot.
type HistoryMessage struct {
	Ver     int       `json:"ver"`
	Type    string    `json:"type"`
	Time    []float64 `json:"time"`
	Humans  []int     `json:"humans"`
	Zombies []int     `json:"zombies"`
	Peak    int       `json:"peak"`
}

// ErrorMessage reports a rejected client command.
type ErrorMessage struct {
	Ver    int    `json:"ver"`
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

func NewErrorMessage(err error) ErrorMessage {
	return ErrorMessage{Ver: Version, Type: TypeError, Reason: err.Error()}
}

// Command is an inbound control message. Optional fields are only read by
// the commands that use them.
type Command struct {
	Ver        int      `json:"ver,omitempty"`
	Type       string   `json:"type" jsonschema:"required"`
	Humans     *int     `json:"humans,omitempty"`
	Zombies    *int     `json:"zombies,omitempty"`
	BiteRadius *float64 `json:"biteRadius,omitempty"`
	Dt         *float64 `json:"dt,omitempty"`
}

// DecodeCommand parses and validates a client command.
func DecodeCommand(payload []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return cmd, fmt.Errorf("%w: %v", ErrInvalidCommand, err)
	}
	if cmd.Ver == 0 {
		cmd.Ver = Version
	}
	if cmd.Ver != Version {
		return cmd, fmt.Errorf("%w: unsupported protocol version %d", ErrInvalidCommand, cmd.Ver)
	}
	if err := cmd.Validate(); err != nil {
		return cmd, err
	}
	return cmd, nil
}

// Validate checks the fields required by the command type.
func (c Command) Validate() error {
	switch c.Type {
	case CommandStart, CommandPause, CommandStop:
		return nil
	case CommandReset:
		if c.Humans == nil || c.Zombies == nil {
			return fmt.Errorf("%w: reset needs humans and zombies", ErrInvalidCommand)
		}
		if *c.Humans < 0 || *c.Zombies < 0 {
			return fmt.Errorf("%w: negative population", ErrInvalidCommand)
		}
		if *c.Humans > world.MaxPopulation || *c.Zombies > world.MaxPopulation-*c.Humans {
			return fmt.Errorf("%w: population exceeds %d", ErrInvalidCommand, world.MaxPopulation)
		}
		if c.BiteRadius != nil && *c.BiteRadius <= 0 {
			return fmt.Errorf("%w: biteRadius must be positive", ErrInvalidCommand)
		}
		return nil
	case CommandSetDt:
		if c.Dt == nil || *c.Dt <= 0 {
			return fmt.Errorf("%w: dt must be positive", ErrInvalidCommand)
		}
		return nil
	case CommandSetBiteRadius:
		if c.BiteRadius == nil || *c.BiteRadius <= 0 {
			return fmt.Errorf("%w: biteRadius must be positive", ErrInvalidCommand)
		}
		return nil
	case "":
		return fmt.Errorf("%w: missing type", ErrInvalidCommand)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, c.Type)
	}
}
