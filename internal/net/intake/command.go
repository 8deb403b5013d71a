package intake

import "outbreak/server/internal/net/proto"

// Controller is the set of driver controls a client command can reach.
type Controller interface {
	Reset(humans, zombies int, biteRadius float64) proto.StateMessage
	Start()
	Pause()
	Stop() proto.HistoryMessage
	SetDt(dt float64) error
	SetDefaultBiteRadius(radius float64) error
}

// StageClientCommand decodes payload and applies it to ctl. The decoded
// command is returned even when it is rejected so callers can log its type.
func StageClientCommand(ctl Controller, payload []byte) (proto.Command, error) {
	cmd, err := proto.DecodeCommand(payload)
	if err != nil {
		return cmd, err
	}
	return cmd, Apply(ctl, cmd)
}

// Apply validates cmd and forwards it to the matching control.
func Apply(ctl Controller, cmd proto.Command) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	switch cmd.Type {
	case proto.CommandReset:
		radius := 0.0
		if cmd.BiteRadius != nil {
			radius = *cmd.BiteRadius
		}
		ctl.Reset(*cmd.Humans, *cmd.Zombies, radius)
	case proto.CommandStart:
		ctl.Start()
	case proto.CommandPause:
		ctl.Pause()
	case proto.CommandStop:
		ctl.Stop()
	case proto.CommandSetDt:
		return ctl.SetDt(*cmd.Dt)
	case proto.CommandSetBiteRadius:
		return ctl.SetDefaultBiteRadius(*cmd.BiteRadius)
	}
	return nil
}
