package host

import (
	"errors"
	"fmt"
	"strings"

	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/bus"
)

// Usage lists the commands Exec understands.
const Usage = "usage: load <rom.gb> | start | stop | press <a|b|start|select|up|down|left|right> [down|up] | release <button> | status"

func usageErr(u string) error { return fmt.Errorf("%w: %s", ErrUsage, u) }

// Exec runs one text command for id and returns the reply to show the user.
// Commands are case-insensitive except for the ROM name.
func (m *Manager) Exec(id, line string) (string, error) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return "", usageErr(Usage)
	}
	switch strings.ToLower(args[0]) {
	case "load":
		if len(args) < 2 {
			return "", usageErr("load <rom.gb>")
		}
		if err := m.Load(id, args[1]); err != nil {
			return "", err
		}
		st, _ := m.Status(id)
		return fmt.Sprintf("loaded %s", st.ROM), nil

	case "start":
		if err := m.Start(id); err != nil {
			if errors.Is(err, ErrNoROM) {
				return "", fmt.Errorf("%w, use load <rom.gb> first", ErrNoROM)
			}
			return "", err
		}
		return "started", nil

	case "stop":
		if err := m.Stop(id); err != nil {
			return "", err
		}
		return "stopped", nil

	case "press", "release":
		verb := strings.ToLower(args[0])
		if len(args) < 2 {
			return "", usageErr(verb + " <button>")
		}
		btn, ok := bus.ParseButton(strings.ToLower(args[1]))
		if !ok {
			return "", usageErr(fmt.Sprintf("unknown button %q", args[1]))
		}
		down := verb == "press"
		if verb == "press" && len(args) > 2 {
			switch strings.ToLower(args[2]) {
			case "down":
			case "up":
				down = false
			default:
				return "", usageErr("press <button> <down|up>")
			}
		}
		if err := m.Press(id, btn, down); err != nil {
			return "", err
		}
		if down {
			return fmt.Sprintf("%s down", strings.ToLower(args[1])), nil
		}
		return fmt.Sprintf("%s up", strings.ToLower(args[1])), nil

	case "status":
		st, err := m.Status(id)
		if err != nil {
			return "", err
		}
		return st.String(), nil
	}
	return "", usageErr(Usage)
}

func (s Status) String() string {
	state := "stopped"
	if s.Running {
		state = "running"
	}
	if s.ROM == "" {
		return fmt.Sprintf("%s: no ROM", s.ID)
	}
	out := fmt.Sprintf("%s: %s %q %s frames=%d", s.ID, s.ROM, s.Title, state, s.Frames)
	if s.Err != nil {
		out += " fault: " + s.Err.Error()
	}
	return out
}
