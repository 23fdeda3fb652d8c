package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/host"
)

type CLIFlags struct {
	ROMDir string
	UIFPS  int
	Max    int
	FPS    int
	Scale  int
	Out    string
	Quiet  bool
}

func parseFlags() CLIFlags {
	var f CLIFlags
	flag.StringVar(&f.ROMDir, "roms", "roms", "directory load <rom> is resolved against")
	flag.IntVar(&f.UIFPS, "uifps", 10, "snapshots per second per session")
	flag.IntVar(&f.Max, "max", 0, "max sessions (0 = unlimited)")
	flag.IntVar(&f.FPS, "fps", 60, "emulated frames per second")
	flag.IntVar(&f.Scale, "scale", 2, "snapshot scale")
	flag.StringVar(&f.Out, "out", "snapshots", "directory for <id>.png snapshots; empty disables")
	flag.BoolVar(&f.Quiet, "q", false, "do not log session events to stderr")
	flag.Parse()
	return f
}

// publish writes snapshots until ctx is done.
func publish(ctx context.Context, m *host.Manager, dir string, scale, uifps int) error {
	t := time.NewTicker(time.Second / time.Duration(uifps))
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if _, err := m.WriteSnapshots(dir, scale); err != nil {
				return err
			}
		}
	}
}

func main() {
	log.SetFlags(0)
	f := parseFlags()
	if f.UIFPS <= 0 {
		f.UIFPS = 10
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)
	if f.Quiet {
		logger = nil
	}
	m := host.NewManager(host.Config{ROMDir: f.ROMDir, UIFPS: f.UIFPS, MaxSessions: f.Max}, logger)
	defer m.Close()

	if f.Out != "" {
		if err := os.MkdirAll(f.Out, 0o755); err != nil {
			log.Fatalf("snapshots: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// stdin EOF ends the process; the scanner itself cannot be interrupted
	go func() {
		if err := m.Serve(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("stdin: %v", err)
		}
		cancel()
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return m.Run(gctx, f.FPS) })
	if f.Out != "" {
		g.Go(func() error { return publish(gctx, m, f.Out, f.Scale, f.UIFPS) })
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("host: %v", err)
		stop()
		os.Exit(1)
	}
}
