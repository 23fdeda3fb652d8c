package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/emu"
	"github.com/hajimehoshi/ebiten/v2"
)

// statePath names the quick-save file for slot. Slots sit next to the ROM
// unless a state directory is configured.
func (a *App) statePath(slot int) string {
	base := a.romPath
	if base == "" {
		base = a.s.Header().Title
	}
	name := strings.TrimSuffix(filepath.Base(base), filepath.Ext(base))
	dir := a.cfg.StateDir
	if dir == "" {
		dir = filepath.Dir(a.romPath)
	}
	return filepath.Join(dir, fmt.Sprintf("%s.ss%d", name, slot+1))
}

func (a *App) saveSlot(slot int) error {
	data, err := a.s.SaveState()
	if err != nil {
		return err
	}
	return os.WriteFile(a.statePath(slot), data, 0o644)
}

func (a *App) loadSlot(slot int) error {
	data, err := os.ReadFile(a.statePath(slot))
	if err != nil {
		return err
	}
	return a.s.LoadState(data)
}

func (a *App) quickSave() {
	if err := a.saveSlot(a.currentSlot); err != nil {
		a.toast("Save failed: " + err.Error())
		return
	}
	a.toast(fmt.Sprintf("Saved slot %d", a.currentSlot+1))
}

func (a *App) quickLoad() {
	if _, err := os.Stat(a.statePath(a.currentSlot)); err != nil {
		a.toast("Slot is empty")
		return
	}
	if err := a.loadSlot(a.currentSlot); err != nil {
		a.toast("Load failed: " + err.Error())
		return
	}
	a.toast(fmt.Sprintf("Loaded slot %d", a.currentSlot+1))
}

// FlushSaveRAM writes battery RAM of the current game to its .sav file.
// It does nothing when saving is disabled or the cartridge has no battery.
func (a *App) FlushSaveRAM() error {
	if !a.cfg.SaveRAM || a.romPath == "" {
		return nil
	}
	data, ok := a.s.SaveRAM()
	if !ok {
		return nil
	}
	return os.WriteFile(emu.SavePath(a.romPath), data, 0o644)
}

// switchROM replaces the running session with a fresh one for path. The old
// game's save RAM is flushed first.
func (a *App) switchROM(path string) error {
	rom, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	s, err := emu.New(rom, nil, emu.WithPalette(a.s.Palette()))
	if err != nil {
		return err
	}
	if err := a.FlushSaveRAM(); err != nil {
		a.toast("Save RAM not written: " + err.Error())
	}
	if a.cfg.SaveRAM {
		if data, err := os.ReadFile(emu.SavePath(path)); err == nil {
			_ = s.LoadRAM(data)
		}
	}
	a.s = s
	a.romPath = path
	a.paused = false
	ebiten.SetWindowTitle(a.windowTitle())
	return nil
}

func (a *App) findROMs() []string {
	entries, err := os.ReadDir(a.cfg.ROMsDir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".gb") {
			continue
		}
		out = append(out, filepath.Join(a.cfg.ROMsDir, e.Name()))
	}
	return out
}
