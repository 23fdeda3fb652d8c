// Package host runs many independent emulator sessions side by side, keyed
// by an owner id, and accepts the small text command set a chat or console
// front-end would forward to it.
package host

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/sync/errgroup"

	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/bus"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/emu"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/render"
)

// Config controls where ROMs come from and how often snapshots are produced.
type Config struct {
	ROMDir      string // directory ROM names are resolved against
	UIFPS       int    // max snapshots per second per session
	MaxSessions int    // 0 means unlimited
}

// Defaults fills missing fields.
func (c *Config) Defaults() {
	if c.ROMDir == "" {
		c.ROMDir = "roms"
	}
	if c.UIFPS <= 0 {
		c.UIFPS = 10
	}
	if c.MaxSessions < 0 {
		c.MaxSessions = 0
	}
}

var (
	ErrNoSession = errors.New("host: no active session")
	ErrNoROM     = errors.New("host: no ROM loaded")
	ErrLimit     = errors.New("host: session limit reached")
	ErrThrottled = errors.New("host: snapshot requested too soon")
	ErrUsage     = errors.New("host: bad command")
)

// Status describes one session.
type Status struct {
	ID      string
	ROM     string
	Title   string
	Running bool
	Frames  uint64
	Err     error
}

type entry struct {
	mu      sync.Mutex
	rom     string
	sess    *emu.Session
	running bool
	frames  uint64
	nextUI  time.Time
}

// Manager owns the sessions. All methods are safe for concurrent use; each
// session is guarded by its own lock so a slow frame does not block the
// registry.
type Manager struct {
	cfg Config
	log *log.Logger
	now func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
}

// NewManager returns an empty manager. A nil logger discards output.
func NewManager(cfg Config, logger *log.Logger) *Manager {
	cfg.Defaults()
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Manager{
		cfg:     cfg,
		log:     logger,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
}

func (m *Manager) lookup(id string) (*entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return nil, ErrNoSession
	}
	return e, nil
}

func (m *Manager) getOrCreate(id string) (*entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[id]; ok {
		return e, nil
	}
	if m.cfg.MaxSessions > 0 && len(m.entries) >= m.cfg.MaxSessions {
		return nil, ErrLimit
	}
	e := &entry{}
	m.entries[id] = e
	return e, nil
}

// Load reads romName from the ROM directory and builds a fresh session for
// id, replacing whatever it ran before. The new session starts stopped.
// Only the base name is used so callers cannot escape the directory.
func (m *Manager) Load(id, romName string) error {
	name := filepath.Base(romName)
	path := filepath.Join(m.cfg.ROMDir, name)
	rom, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("host: read ROM %s: %w", name, err)
	}
	sess, err := emu.New(rom, nil)
	if err != nil {
		return fmt.Errorf("host: load %s: %w", name, err)
	}
	e, err := m.getOrCreate(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rom = name
	e.sess = sess
	e.running = false
	e.frames = 0
	e.nextUI = time.Time{}
	m.log.Printf("host: %s loaded %s (%s)", id, name, sess.Header().Title)
	return nil
}

// Start resumes frame advancement for id.
func (m *Manager) Start(id string) error {
	e, err := m.lookup(id)
	if err != nil {
		return ErrNoROM
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess == nil {
		return ErrNoROM
	}
	if err := e.sess.Err(); err != nil {
		return err
	}
	e.running = true
	e.nextUI = time.Time{}
	return nil
}

// Stop pauses id. The session keeps its state.
func (m *Manager) Stop(id string) error {
	e, err := m.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.running = false
	e.mu.Unlock()
	return nil
}

// Press sets or clears one button on id's joypad.
func (m *Manager) Press(id string, btn bus.Button, down bool) error {
	e, err := m.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess == nil {
		return ErrNoSession
	}
	if down {
		e.sess.Press(btn)
	} else {
		e.sess.Release(btn)
	}
	return nil
}

// Remove drops id and its session.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	delete(m.entries, id)
	m.mu.Unlock()
}

// Close drops every session.
func (m *Manager) Close() {
	m.mu.Lock()
	maps.Clear(m.entries)
	m.mu.Unlock()
}

// snapshot copies the registry so callers can iterate without holding m.mu.
func (m *Manager) snapshot() map[string]*entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return maps.Clone(m.entries)
}

// IDs lists the known session ids in sorted order.
func (m *Manager) IDs() []string {
	ids := make([]string, 0)
	for id := range m.snapshot() {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Status reports on one session.
func (m *Manager) Status(id string) (Status, error) {
	e, err := m.lookup(id)
	if err != nil {
		return Status{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	st := Status{ID: id, ROM: e.rom, Running: e.running, Frames: e.frames}
	if e.sess != nil {
		st.Title = e.sess.Header().Title
		st.Err = e.sess.Err()
	}
	return st, nil
}

// Tick advances every running session by one frame, in parallel. A session
// whose CPU faulted is stopped and logged; the others carry on.
func (m *Manager) Tick(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for id, e := range m.snapshot() {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			e.mu.Lock()
			defer e.mu.Unlock()
			if !e.running || e.sess == nil {
				return nil
			}
			e.sess.AdvanceFrame()
			e.frames++
			if err := e.sess.Err(); err != nil {
				e.running = false
				m.log.Printf("host: %s stopped: %v", id, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Run calls Tick fps times per second until ctx is done.
func (m *Manager) Run(ctx context.Context, fps int) error {
	if fps <= 0 {
		fps = 60
	}
	t := time.NewTicker(time.Second / time.Duration(fps))
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if err := m.Tick(ctx); err != nil {
				return err
			}
		}
	}
}

// Snapshot encodes id's current frame as PNG. Calls faster than UIFPS per
// session get ErrThrottled.
func (m *Manager) Snapshot(id string, scale int) ([]byte, error) {
	e, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess == nil {
		return nil, ErrNoROM
	}
	now := m.now()
	if now.Before(e.nextUI) {
		return nil, ErrThrottled
	}
	e.nextUI = now.Add(time.Second / time.Duration(m.cfg.UIFPS))

	var buf bytes.Buffer
	if err := render.PNG(&buf, e.sess.Frame(), e.sess.Palette(), scale); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
