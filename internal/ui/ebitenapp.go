package ui

import (
	"fmt"
	"image/color"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/emu"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/ppu"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/render"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const (
	numSlots    = 4
	fastFrames  = 5
	toastLength = 2 * time.Second
)

var slotKeys = [numSlots]ebiten.Key{ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3, ebiten.KeyDigit4}

type App struct {
	cfg     Config
	s       *emu.Session
	romPath string
	tex     *ebiten.Image
	shade   *ebiten.Image
	paused  bool
	fast    bool

	// overlay/menu
	showMenu    bool
	menuMode    string // "main", "slot", "rom", "settings", "keys"
	menuIdx     int
	currentSlot int
	romList     []string
	romSel      int
	romOff      int
	keysOff     int
	curW, curH  int

	toastMsg   string
	toastUntil time.Time
}

// NewApp wraps a running session. romPath names the file s was built from
// and is used to place quick-save slots and the .sav file; it may be empty.
func NewApp(cfg Config, s *emu.Session, romPath string) *App {
	cfg.Defaults()
	s.SetPalette(PaletteByName(cfg.Palette))
	a := &App{cfg: cfg, s: s, romPath: romPath, menuMode: "main"}
	ebiten.SetWindowTitle(a.windowTitle())
	a.applyWindowSize()
	return a
}

func (a *App) Run() error { return ebiten.RunGame(a) }

// Session is the session currently shown. It changes when a ROM is picked
// from the menu.
func (a *App) Session() *emu.Session { return a.s }
func (a *App) ROMPath() string       { return a.romPath }

func (a *App) windowTitle() string {
	if t := a.s.Header().Title; t != "" {
		return a.cfg.Title + " - [" + t + "]"
	}
	return a.cfg.Title
}

func (a *App) applyWindowSize() {
	ebiten.SetWindowSize(ppu.Width*a.cfg.Scale, ppu.Height*a.cfg.Scale)
}

func (a *App) Update() error {
	// Toggle menu (Escape)
	toggled := inpututil.IsKeyJustPressed(ebiten.KeyEscape) && (!a.showMenu || a.menuMode == "main")
	if toggled {
		a.showMenu = !a.showMenu
		a.menuMode = "main"
		a.menuIdx = 0
	}
	a.s.SetButtons(a.joypad())
	if toggled {
		return nil
	}
	if a.showMenu {
		a.updateMenu()
		return nil
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		a.paused = !a.paused
	}
	a.fast = ebiten.IsKeyPressed(ebiten.KeyTab)

	if inpututil.IsKeyJustPressed(ebiten.KeyR) { // post-boot reset
		a.s.Reset()
		a.toast("Reset")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyB) { // power cycle through the boot ROM
		if n, err := a.s.Restart(); err != nil {
			a.toast("Restart failed: " + err.Error())
		} else {
			a.s = n
			a.toast("Power cycle")
		}
	}
	for i, k := range slotKeys {
		if inpututil.IsKeyJustPressed(k) {
			a.currentSlot = i
			a.toast(fmt.Sprintf("Slot %d", i+1))
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		a.quickSave()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF9) {
		a.quickLoad()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		if name, err := a.saveScreenshot(); err != nil {
			a.toast("Screenshot failed: " + err.Error())
		} else {
			a.toast("Saved " + filepath.Base(name))
		}
	}

	// Frame-step when paused (N)
	if a.paused && inpututil.IsKeyJustPressed(ebiten.KeyN) {
		a.s.AdvanceFrame()
	}

	if !a.paused && a.s.Err() == nil {
		n := 1
		if a.fast {
			n = fastFrames
		}
		for i := 0; i < n; i++ {
			a.s.AdvanceFrame()
		}
		if err := a.s.Err(); err != nil {
			log.Printf("emulation stopped: %v", err)
			a.toast(err.Error())
		}
	}
	return nil
}

func (a *App) Draw(screen *ebiten.Image) {
	if a.tex == nil {
		a.tex = ebiten.NewImage(ppu.Width, ppu.Height)
	}
	a.tex.WritePixels(a.s.Framebuffer())
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(a.cfg.Scale), float64(a.cfg.Scale))
	screen.DrawImage(a.tex, op)

	if a.showMenu {
		if a.shade == nil {
			a.shade = ebiten.NewImage(1, 1)
			a.shade.Fill(color.RGBA{0, 0, 0, 0xC0})
		}
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(float64(a.curW), float64(a.curH))
		screen.DrawImage(a.shade, op)
		a.drawMenu(screen)
	}
	switch {
	case a.paused && !a.showMenu:
		ebitenutil.DebugPrintAt(screen, "PAUSED", 4, 4)
	case a.fast:
		ebitenutil.DebugPrintAt(screen, ">>", 4, 4)
	}
	if a.toastMsg != "" && time.Now().Before(a.toastUntil) {
		msg := a.truncateText(a.toastMsg, a.maxCharsForText(4))
		ebitenutil.DebugPrintAt(screen, msg, 4, a.curH-18)
	}
}

func (a *App) Layout(outW, outH int) (int, int) {
	a.curW, a.curH = ppu.Width*a.cfg.Scale, ppu.Height*a.cfg.Scale
	return a.curW, a.curH
}

func (a *App) toast(msg string) {
	a.toastMsg = msg
	a.toastUntil = time.Now().Add(toastLength)
}

func (a *App) saveScreenshot() (string, error) {
	ts := time.Now().Format("20060102_150405")
	name := filepath.Join(a.cfg.ScreenshotDir, fmt.Sprintf("screenshot_%s.png", ts))
	f, err := os.Create(name)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return name, render.PNG(f, a.s.Frame(), a.s.Palette(), a.cfg.Scale)
}
