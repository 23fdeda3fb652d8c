package ui

import (
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/bus"
	"github.com/hajimehoshi/ebiten/v2"
)

var keymap = []struct {
	key ebiten.Key
	btn bus.Button
}{
	{ebiten.KeyArrowRight, bus.ButtonRight},
	{ebiten.KeyArrowLeft, bus.ButtonLeft},
	{ebiten.KeyArrowUp, bus.ButtonUp},
	{ebiten.KeyArrowDown, bus.ButtonDown},
	{ebiten.KeyZ, bus.ButtonA},
	{ebiten.KeyX, bus.ButtonB},
	{ebiten.KeyEnter, bus.ButtonStart},
	{ebiten.KeyShiftRight, bus.ButtonSelect},
}

// Standard layout: face buttons on the right, d-pad on the left.
var padmap = []struct {
	pad ebiten.StandardGamepadButton
	btn bus.Button
}{
	{ebiten.StandardGamepadButtonLeftRight, bus.ButtonRight},
	{ebiten.StandardGamepadButtonLeftLeft, bus.ButtonLeft},
	{ebiten.StandardGamepadButtonLeftTop, bus.ButtonUp},
	{ebiten.StandardGamepadButtonLeftBottom, bus.ButtonDown},
	{ebiten.StandardGamepadButtonRightRight, bus.ButtonA},
	{ebiten.StandardGamepadButtonRightBottom, bus.ButtonB},
	{ebiten.StandardGamepadButtonCenterRight, bus.ButtonStart},
	{ebiten.StandardGamepadButtonCenterLeft, bus.ButtonSelect},
}

var padIDs []ebiten.GamepadID

// pollButtons reads keyboard and gamepads into the raw joypad byte
// (cleared bit = pressed).
func pollButtons() byte {
	raw := byte(0xFF)
	for _, m := range keymap {
		if ebiten.IsKeyPressed(m.key) {
			raw &^= byte(m.btn)
		}
	}
	padIDs = ebiten.AppendGamepadIDs(padIDs[:0])
	for _, id := range padIDs {
		if !ebiten.IsStandardGamepadLayoutAvailable(id) {
			continue
		}
		for _, m := range padmap {
			if ebiten.IsStandardGamepadButtonPressed(id, m.pad) {
				raw &^= byte(m.btn)
			}
		}
	}
	return raw
}

// joypad is the byte the game sees this frame. The menu owns the keys
// while it is open, so the game sees nothing held.
func (a *App) joypad() byte { return gateButtons(a.showMenu, pollButtons) }

func gateButtons(menuOpen bool, poll func() byte) byte {
	if menuOpen {
		return 0xFF
	}
	return poll()
}
