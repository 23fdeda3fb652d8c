package host

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Serve reads "<id> <command>" lines from r, runs each through Exec and
// writes "<id>: <reply>" to w. Blank lines and lines starting with '#' are
// skipped. It returns nil at EOF and ctx.Err() once ctx is done.
func (m *Manager) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		id, cmd, _ := strings.Cut(line, " ")
		reply, err := m.Exec(id, cmd)
		if err != nil {
			reply = "error: " + err.Error()
			m.log.Printf("host: %s %q: %v", id, cmd, err)
		}
		if _, err := fmt.Fprintf(w, "%s: %s\n", id, reply); err != nil {
			return err
		}
	}
	return sc.Err()
}

// WriteSnapshots stores the frame of every running session as dir/<id>.png,
// honouring the per-session UIFPS throttle. It returns how many files were
// written.
func (m *Manager) WriteSnapshots(dir string, scale int) (int, error) {
	n := 0
	for id, e := range m.snapshot() {
		e.mu.Lock()
		running := e.running
		e.mu.Unlock()
		if !running {
			continue
		}
		data, err := m.Snapshot(id, scale)
		if errors.Is(err, ErrThrottled) || errors.Is(err, ErrNoSession) {
			continue
		}
		if err != nil {
			return n, err
		}
		path := filepath.Join(dir, filepath.Base(id)+".png")
		// rename so readers never see a half-written image
		tmp := path + ".tmp"
		if err := os.WriteFile(tmp, data, 0o644); err != nil {
			return n, fmt.Errorf("host: snapshot %s: %w", id, err)
		}
		if err := os.Rename(tmp, path); err != nil {
			return n, fmt.Errorf("host: snapshot %s: %w", id, err)
		}
		n++
	}
	return n, nil
}
