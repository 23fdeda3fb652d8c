package host

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/bus"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/ppu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeROM stores a 32KB ROM-only image with code at the entry point.
func writeROM(t *testing.T, dir, name string, code ...byte) {
	t.Helper()
	rom := make([]byte, 32*1024)
	copy(rom[0x0100:], code)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), rom, 0o644))
}

func newManager(t *testing.T, cfg Config) *Manager {
	t.Helper()
	if cfg.ROMDir == "" {
		cfg.ROMDir = t.TempDir()
	}
	writeROM(t, cfg.ROMDir, "nop.gb")
	writeROM(t, cfg.ROMDir, "bad.gb", 0xD3)
	return NewManager(cfg, nil)
}

func TestConfig_Defaults(t *testing.T) {
	var c Config
	c.Defaults()
	assert.Equal(t, "roms", c.ROMDir)
	assert.Equal(t, 10, c.UIFPS)
	assert.Equal(t, 0, c.MaxSessions)
}

func TestManager_LoadStartTick(t *testing.T) {
	m := newManager(t, Config{})
	require.NoError(t, m.Load("p1", "nop.gb"))

	require.NoError(t, m.Tick(context.Background()))
	st, err := m.Status("p1")
	require.NoError(t, err)
	assert.False(t, st.Running)
	assert.Zero(t, st.Frames, "stopped sessions do not advance")

	require.NoError(t, m.Start("p1"))
	require.NoError(t, m.Tick(context.Background()))
	require.NoError(t, m.Tick(context.Background()))
	st, _ = m.Status("p1")
	assert.True(t, st.Running)
	assert.Equal(t, uint64(2), st.Frames)
	assert.Equal(t, "nop.gb", st.ROM)

	require.NoError(t, m.Stop("p1"))
	require.NoError(t, m.Tick(context.Background()))
	st, _ = m.Status("p1")
	assert.Equal(t, uint64(2), st.Frames)
}

func TestManager_LoadErrors(t *testing.T) {
	m := newManager(t, Config{})
	assert.Error(t, m.Load("p1", "missing.gb"))
	assert.ErrorIs(t, m.Start("p1"), ErrNoROM)
	assert.ErrorIs(t, m.Stop("p1"), ErrNoSession)

	// path components are stripped
	require.NoError(t, m.Load("p1", "../../nop.gb"))
}

func TestManager_SessionLimit(t *testing.T) {
	m := newManager(t, Config{MaxSessions: 1})
	require.NoError(t, m.Load("p1", "nop.gb"))
	assert.ErrorIs(t, m.Load("p2", "nop.gb"), ErrLimit)
	require.NoError(t, m.Load("p1", "nop.gb"), "reloading an existing id is fine")

	m.Remove("p1")
	require.NoError(t, m.Load("p2", "nop.gb"))
	assert.Equal(t, []string{"p2"}, m.IDs())
}

func TestManager_FaultStopsOnlyThatSession(t *testing.T) {
	var logs bytes.Buffer
	dir := t.TempDir()
	writeROM(t, dir, "nop.gb")
	writeROM(t, dir, "bad.gb", 0xD3)
	m := NewManager(Config{ROMDir: dir}, nil)
	m.log.SetOutput(&logs)

	require.NoError(t, m.Load("good", "nop.gb"))
	require.NoError(t, m.Load("bad", "bad.gb"))
	require.NoError(t, m.Start("good"))
	require.NoError(t, m.Start("bad"))

	require.NoError(t, m.Tick(context.Background()))

	bad, _ := m.Status("bad")
	assert.False(t, bad.Running)
	assert.Error(t, bad.Err)
	assert.Contains(t, logs.String(), "bad stopped")
	assert.ErrorContains(t, m.Start("bad"), "illegal opcode")

	good, _ := m.Status("good")
	assert.True(t, good.Running)
	assert.NoError(t, good.Err)

	require.NoError(t, m.Tick(context.Background()))
	good, _ = m.Status("good")
	assert.Equal(t, uint64(2), good.Frames)
}

func TestManager_Press(t *testing.T) {
	m := newManager(t, Config{})
	require.NoError(t, m.Load("p1", "nop.gb"))
	require.NoError(t, m.Press("p1", bus.ButtonStart, true))

	e, err := m.lookup("p1")
	require.NoError(t, err)
	assert.Equal(t, byte(0xF7), e.sess.Buttons())

	require.NoError(t, m.Press("p1", bus.ButtonStart, false))
	assert.Equal(t, byte(0xFF), e.sess.Buttons())

	assert.ErrorIs(t, m.Press("nobody", bus.ButtonA, true), ErrNoSession)
}

func TestManager_SnapshotThrottle(t *testing.T) {
	m := newManager(t, Config{UIFPS: 10})
	clock := time.Unix(1000, 0)
	m.now = func() time.Time { return clock }
	require.NoError(t, m.Load("p1", "nop.gb"))

	data, err := m.Snapshot("p1", 2)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, ppu.Width*2, img.Bounds().Dx())
	assert.Equal(t, ppu.Height*2, img.Bounds().Dy())

	clock = clock.Add(50 * time.Millisecond)
	_, err = m.Snapshot("p1", 2)
	assert.ErrorIs(t, err, ErrThrottled)

	clock = clock.Add(50 * time.Millisecond)
	_, err = m.Snapshot("p1", 1)
	assert.NoError(t, err)

	_, err = m.Snapshot("nobody", 1)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestManager_Run(t *testing.T) {
	m := newManager(t, Config{})
	require.NoError(t, m.Load("p1", "nop.gb"))
	require.NoError(t, m.Start("p1"))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, m.Run(ctx, 200), context.DeadlineExceeded)

	st, _ := m.Status("p1")
	assert.NotZero(t, st.Frames)
}

func TestManager_Close(t *testing.T) {
	m := newManager(t, Config{})
	require.NoError(t, m.Load("a", "nop.gb"))
	require.NoError(t, m.Load("b", "nop.gb"))
	assert.Equal(t, []string{"a", "b"}, m.IDs())
	m.Close()
	assert.Empty(t, m.IDs())
}

func TestManager_Exec(t *testing.T) {
	m := newManager(t, Config{})

	_, err := m.Exec("p1", "start")
	assert.ErrorIs(t, err, ErrNoROM)

	tests := []struct {
		line string
		want string
	}{
		{"load nop.gb", "loaded nop.gb"},
		{"START", "started"},
		{"press a", "a down"},
		{"press a up", "a up"},
		{"press Start down", "start down"},
		{"release start", "start up"},
		{"stop", "stopped"},
		{"status", `p1: nop.gb "" stopped frames=0`},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := m.Exec("p1", tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, line := range []string{"", "load", "press", "press x", "press a sideways", "jump"} {
		_, err := m.Exec("p1", line)
		assert.ErrorIs(t, err, ErrUsage, "line %q", line)
	}

	_, err = m.Exec("p2", "status")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestManager_Serve(t *testing.T) {
	m := newManager(t, Config{})
	in := strings.NewReader(`# comment
p1 load nop.gb

p1 start
p2 start
p1 press up
p1 status
`)
	var out bytes.Buffer
	require.NoError(t, m.Serve(context.Background(), in, &out))
	assert.Equal(t, `p1: loaded nop.gb
p1: started
p2: error: host: no ROM loaded, use load <rom.gb> first
p1: up down
p1: nop.gb "" running frames=0
`, out.String())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.Serve(ctx, strings.NewReader("p1 stop\n"), &out), context.Canceled)
}

func TestManager_WriteSnapshots(t *testing.T) {
	m := newManager(t, Config{UIFPS: 10})
	clock := time.Unix(1000, 0)
	m.now = func() time.Time { return clock }
	require.NoError(t, m.Load("p1", "nop.gb"))
	require.NoError(t, m.Load("p2", "nop.gb"))
	require.NoError(t, m.Start("p1"))

	dir := t.TempDir()
	n, err := m.WriteSnapshots(dir, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "stopped sessions are skipped")

	f, err := os.Open(filepath.Join(dir, "p1.png"))
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, ppu.Width, img.Bounds().Dx())
	assert.NoFileExists(t, filepath.Join(dir, "p2.png"))

	n, err = m.WriteSnapshots(dir, 1)
	require.NoError(t, err)
	assert.Zero(t, n, "throttled")

	clock = clock.Add(100 * time.Millisecond)
	n, err = m.WriteSnapshots(dir, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
