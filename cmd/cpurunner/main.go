package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/conformance"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/emu"
)

// writerFunc adapts a function to io.Writer
type writerFunc func(p []byte) (n int, err error)

func (f writerFunc) Write(p []byte) (n int, err error) { return f(p) }

// ring keeps the last len(buf) items written to it.
type ring[T any] struct {
	buf  []T
	idx  int
	fill int
}

func newRing[T any](n int) *ring[T] { return &ring[T]{buf: make([]T, n)} }

func (r *ring[T]) push(v T) {
	if len(r.buf) == 0 {
		return
	}
	r.buf[r.idx] = v
	r.idx = (r.idx + 1) % len(r.buf)
	if r.fill < len(r.buf) {
		r.fill++
	}
}

// items returns the contents in chronological order.
func (r *ring[T]) items() []T {
	out := make([]T, 0, r.fill)
	start := (r.idx - r.fill + len(r.buf)) % max(len(r.buf), 1)
	for j := 0; j < r.fill; j++ {
		out = append(out, r.buf[(start+j)%len(r.buf)])
	}
	return out
}

func main() {
	log.SetFlags(0)
	jsonPath := flag.String("json", "", "single-step test vectors: a .json file or a directory of them")
	maxFail := flag.Int("maxfail", 5, "mismatching cases to print per file")
	romPath := flag.String("rom", "", "path to a test ROM (.gb) to run headless")
	bootPath := flag.String("bootrom", "", "optional DMG boot ROM to run from 0x0000 until FF50 disables it")
	steps := flag.Int("steps", 50_000_000, "max CPU steps to run")
	trace := flag.Bool("trace", false, "print one trace line per instruction")
	until := flag.String("until", "Passed", "stop when serial output contains this substring (case-insensitive); empty to disable")
	auto := flag.Bool("auto", false, "auto-detect 'Passed' or 'Failed N tests' in serial output and exit with code 0/1")
	timeout := flag.Duration("timeout", 0, "optional wall-clock timeout (e.g. 30s, 2m); 0 disables")
	traceOnFail := flag.Bool("traceOnFail", false, "when -auto detects failure, print a recent trace window (slows down)")
	traceWindow := flag.Int("traceWindow", 200, "number of recent instructions to include in 'traceOnFail' dump")
	serialWindow := flag.Int("serialWindow", 8192, "number of recent serial bytes to retain for diagnostics on fail")
	flag.Parse()

	switch {
	case *jsonPath != "":
		os.Exit(runVectors(*jsonPath, *maxFail))
	case *romPath != "":
		os.Exit(runROM(romOptions{
			rom:          *romPath,
			boot:         *bootPath,
			steps:        *steps,
			trace:        *trace,
			until:        *until,
			auto:         *auto,
			timeout:      *timeout,
			traceOnFail:  *traceOnFail,
			traceWindow:  *traceWindow,
			serialWindow: max(*serialWindow, 256),
		}))
	default:
		log.Fatal("one of -json or -rom is required")
	}
}

func runVectors(path string, maxFail int) int {
	var files []conformance.File
	if st, err := os.Stat(path); err != nil {
		log.Fatalf("stat %s: %v", path, err)
	} else if st.IsDir() {
		if files, err = conformance.LoadDir(path); err != nil {
			log.Fatal(err)
		}
	} else {
		cases, err := conformance.LoadFile(path)
		if err != nil {
			log.Fatal(err)
		}
		files = []conformance.File{{Name: path, Cases: cases}}
	}

	start := time.Now()
	mem := conformance.NewFlatMemory()
	var total, failed, badFiles int
	for _, f := range files {
		fileFailed := 0
		for _, c := range f.Cases {
			total++
			mm := conformance.RunOn(mem, c)
			if len(mm) == 0 {
				continue
			}
			failed++
			fileFailed++
			if fileFailed <= maxFail {
				parts := make([]string, len(mm))
				for i, m := range mm {
					parts[i] = m.String()
				}
				fmt.Printf("%s: %s: %s\n", f.Name, c.Name, strings.Join(parts, "; "))
			}
		}
		if fileFailed > 0 {
			badFiles++
			fmt.Printf("%s: %d/%d failed\n", f.Name, fileFailed, len(f.Cases))
		}
	}
	fmt.Printf("\nDone: files=%d cases=%d failed=%d (in %d files) elapsed=%s\n",
		len(files), total, failed, badFiles, time.Since(start).Truncate(time.Millisecond))
	if failed > 0 {
		return 1
	}
	return 0
}

type romOptions struct {
	rom, boot    string
	steps        int
	trace        bool
	until        string
	auto         bool
	timeout      time.Duration
	traceOnFail  bool
	traceWindow  int
	serialWindow int
}

func runROM(o romOptions) int {
	rom, err := os.ReadFile(o.rom)
	if err != nil {
		log.Fatalf("read rom: %v", err)
	}
	var boot []byte
	if o.boot != "" {
		if boot, err = os.ReadFile(o.boot); err != nil {
			log.Fatalf("read bootrom: %v", err)
		}
	}

	// Stream serial to stdout and capture in-memory for pattern detection
	var ser bytes.Buffer
	serRing := newRing[byte](o.serialWindow)
	w := io.Writer(os.Stdout)
	if o.until != "" || o.auto {
		w = io.MultiWriter(os.Stdout, &ser, writerFunc(func(p []byte) (int, error) {
			for _, ch := range p {
				serRing.push(ch)
			}
			return len(p), nil
		}))
	}
	opts := []emu.Option{emu.WithSerial(w)}

	// Trace lines go straight to stdout, or into a ring for the failure dump.
	traceRing := newRing[string](o.traceWindow)
	switch {
	case o.trace:
		opts = append(opts, emu.WithTrace(os.Stdout))
	case o.traceOnFail && o.auto:
		opts = append(opts, emu.WithTrace(writerFunc(func(p []byte) (int, error) {
			traceRing.push(strings.TrimRight(string(p), "\n"))
			return len(p), nil
		})))
	}

	s, err := emu.New(rom, boot, opts...)
	if err != nil {
		log.Fatalf("load cart: %v", err)
	}

	start := time.Now()
	var deadline time.Time
	if o.timeout > 0 {
		deadline = start.Add(o.timeout)
	}
	// Regex for failure summary: "Failed <n> tests"
	failRe := regexp.MustCompile(`(?i)failed\s+(\d+)\s+tests?`)
	// Regex to capture test markers like "11:01"
	stageRe := regexp.MustCompile(`\b(\d{2}:\d{2})\b`)
	lastStage := ""

	done := func(steps, cycles int) {
		fmt.Printf("\nDone: steps=%d cycles~=%d elapsed=%s\n", steps, cycles, time.Since(start).Truncate(time.Millisecond))
	}

	var cycles int
	seen := 0
	for i := 0; i < o.steps; i++ {
		cycles += s.Step()
		if err := s.Err(); err != nil {
			fmt.Printf("\nCPU stopped: %v\n", err)
			done(i+1, cycles)
			return 1
		}
		// only rescan once new serial bytes arrived
		if ser.Len() == seen {
			if !deadline.IsZero() && i&0xFFFF == 0 && time.Now().After(deadline) {
				fmt.Printf("\nTimeout after %s.\n", time.Since(start).Truncate(time.Millisecond))
				done(i+1, cycles)
				return 2
			}
			continue
		}
		seen = ser.Len()
		out := ser.String()

		if o.auto {
			if mm := stageRe.FindAllString(out, -1); len(mm) > 0 {
				lastStage = mm[len(mm)-1]
			}
			if strings.Contains(strings.ToLower(out), "passed") {
				fmt.Printf("\nDetected PASS in serial output.\n")
				if lastStage != "" {
					fmt.Printf("Last stage seen: %s\n", lastStage)
				}
				done(i+1, cycles)
				return 0
			}
			if m := failRe.FindStringSubmatch(out); m != nil {
				fmt.Printf("\nDetected %s in serial output.\n", m[0])
				if lastStage != "" {
					fmt.Printf("Last stage seen: %s\n", lastStage)
				}
				if tr := traceRing.items(); len(tr) > 0 {
					fmt.Printf("\n--- recent trace (last %d instructions) ---\n", len(tr))
					for _, line := range tr {
						fmt.Println(line)
					}
					fmt.Printf("--- end trace ---\n")
				}
				if sr := serRing.items(); len(sr) > 0 {
					fmt.Printf("\n--- recent serial (last %d bytes) ---\n", len(sr))
					fmt.Printf("%s", sr)
					fmt.Printf("\n--- end serial ---\n")
				}
				done(i+1, cycles)
				return 1
			}
		} else if o.until != "" {
			if strings.Contains(strings.ToLower(out), strings.ToLower(o.until)) {
				fmt.Printf("\nDetected '%s' in serial output.\n", o.until)
				done(i+1, cycles)
				return 0
			}
		}
	}
	done(o.steps, cycles)
	return 0
}
