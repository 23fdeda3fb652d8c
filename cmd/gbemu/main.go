package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/pkg/profile"
	"golang.org/x/term"

	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/emu"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/render"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/statsview"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/ui"
)

type CLIFlags struct {
	ROMPath string
	BootROM string
	Scale   int
	Title   string
	Palette string
	Trace   string // file for the per-instruction trace, "-" for stderr
	SaveRAM bool   // persist battery RAM next to ROM (.sav)
	ROMsDir string

	// headless
	Headless bool
	Frames   int
	PNGOut   string
	Expect   string // expected frame CRC32 hex (e.g., "1a2b3c4d")
	ASCII    bool

	Profile   string // "cpu" or "mem"
	StatsView bool
}

func parseFlags() CLIFlags {
	var f CLIFlags
	flag.StringVar(&f.ROMPath, "rom", "", "path to ROM (.gb)")
	flag.StringVar(&f.BootROM, "bootrom", "", "optional 256-byte DMG boot ROM")
	flag.IntVar(&f.Scale, "scale", 3, "window scale, also applied to -png")
	flag.StringVar(&f.Title, "title", "gbemu", "window title")
	flag.StringVar(&f.Palette, "palette", "grey", "display palette: grey or green")
	flag.StringVar(&f.Trace, "trace", "", "write a CPU trace to this file (\"-\" for stderr)")
	flag.BoolVar(&f.SaveRAM, "save", true, "persist battery RAM to ROM.sav on exit and load on start")
	flag.StringVar(&f.ROMsDir, "romsdir", "roms", "directory the ROM menu lists")

	// headless options
	flag.BoolVar(&f.Headless, "headless", false, "run without a window")
	flag.IntVar(&f.Frames, "frames", 300, "frames to run in headless mode")
	flag.StringVar(&f.PNGOut, "png", "", "write last frame to PNG at path")
	flag.StringVar(&f.Expect, "expect", "", "assert frame CRC32 (hex)")
	flag.BoolVar(&f.ASCII, "ascii", false, "print the last frame as text when stdout is a terminal")

	flag.StringVar(&f.Profile, "profile", "", "write a cpu or mem profile to the working directory")
	flag.BoolVar(&f.StatsView, "statsview", false, "serve runtime stats (needs the statsview build tag)")
	flag.Parse()
	return f
}

func runHeadless(s *emu.Session, f CLIFlags) error {
	frames := f.Frames
	if frames <= 0 {
		frames = 1
	}

	start := time.Now()
	for i := 0; i < frames; i++ {
		s.AdvanceFrame()
		if err := s.Err(); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}
	dur := time.Since(start)

	crc := s.Frame().Checksum()
	fps := float64(frames) / dur.Seconds()
	log.Printf("headless: frames=%d elapsed=%s fps=%.2f frame_crc32=%08x",
		frames, dur.Truncate(time.Millisecond), fps, crc)

	if f.PNGOut != "" {
		if err := savePNG(s, f.PNGOut, f.Scale); err != nil {
			return fmt.Errorf("write PNG: %w", err)
		}
		log.Printf("wrote %s", f.PNGOut)
	}

	if f.ASCII {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Print(render.ASCII(s.Frame(), 2))
		} else {
			log.Printf("-ascii ignored: stdout is not a terminal")
		}
	}

	if f.Expect != "" {
		// normalize expected hex (allow with/without 0x, upper/lowercase)
		want := strings.TrimPrefix(strings.ToLower(f.Expect), "0x")
		got := fmt.Sprintf("%08x", crc)
		if got != want {
			return fmt.Errorf("checksum mismatch: got %s, want %s", got, want)
		}
	}
	return nil
}

func savePNG(s *emu.Session, path string, scale int) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render.PNG(out, s.Frame(), s.Palette(), scale); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func readOptional(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return b, nil
}

func openTrace(path string) (io.Writer, func(), error) {
	switch path {
	case "":
		return nil, func() {}, nil
	case "-":
		return os.Stderr, func() {}, nil
	}
	out, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("trace: %w", err)
	}
	return out, func() { out.Close() }, nil
}

func writeSaveRAM(s *emu.Session, path string) {
	data, ok := s.SaveRAM()
	if !ok {
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Printf("write %s: %v", path, err)
		return
	}
	log.Printf("wrote %s", path)
}

func main() {
	log.SetFlags(0)
	f := parseFlags()
	if f.ROMPath == "" {
		log.Fatal("-rom is required")
	}

	// stopped by hand so error exits still flush the profile
	var prof interface{ Stop() }
	switch f.Profile {
	case "":
	case "cpu":
		prof = profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	case "mem":
		prof = profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	default:
		log.Fatalf("unknown -profile %q (want cpu or mem)", f.Profile)
	}
	err := run(f)
	if prof != nil {
		prof.Stop()
	}
	if err != nil {
		log.Fatal(err)
	}
}

func run(f CLIFlags) error {
	if f.StatsView {
		if !statsview.Available() {
			log.Printf("statsview not compiled in; rebuild with -tags statsview")
		}
		statsview.Launch(os.Stderr)
	}

	rom, err := readOptional(f.ROMPath)
	if err != nil {
		return err
	}
	boot, err := readOptional(f.BootROM)
	if err != nil {
		return err
	}

	trace, closeTrace, err := openTrace(f.Trace)
	if err != nil {
		return err
	}
	defer closeTrace()

	opts := []emu.Option{emu.WithPalette(ui.PaletteByName(f.Palette))}
	if trace != nil {
		opts = append(opts, emu.WithTrace(trace))
	}
	if f.Headless {
		// serial output is how test ROMs report
		opts = append(opts, emu.WithSerial(os.Stdout))
	}
	s, err := emu.New(rom, boot, opts...)
	if err != nil {
		return fmt.Errorf("load cart: %w", err)
	}
	h := s.Header()
	log.Printf("ROM: %q type=%s banks=%d ram=%dB", h.Title, h.CartTypeStr, h.ROMBanks, h.RAMSizeBytes)

	// Battery RAM: load .sav if present
	savPath := emu.SavePath(f.ROMPath)
	if f.SaveRAM {
		if data, err := os.ReadFile(savPath); err == nil {
			if err := s.LoadRAM(data); err == nil {
				log.Printf("loaded save RAM: %s (%d bytes)", savPath, len(data))
			}
		}
	}

	if f.Headless {
		err := runHeadless(s, f)
		if f.SaveRAM {
			writeSaveRAM(s, savPath)
		}
		return err
	}

	uiCfg := ui.Config{
		Title:   f.Title,
		Scale:   f.Scale,
		Palette: f.Palette,
		ROMsDir: f.ROMsDir,
		SaveRAM: f.SaveRAM,
	}
	app := ui.NewApp(uiCfg, s, f.ROMPath)
	if err := app.Run(); err != nil {
		return err
	}
	// UI exit: the menu may have switched games, so save whatever is loaded now
	if err := app.FlushSaveRAM(); err != nil {
		log.Printf("save RAM: %v", err)
	}
	return nil
}
