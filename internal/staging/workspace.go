package staging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"reelsmith/internal/services"
)

const lockFileName = ".reelsmith.lock"

// Workspace is one job's scratch directory tree.
type Workspace struct {
	JobID  string
	Root   string
	Work   string
	Speech string
}

// Manager creates and locks workspaces under the staging root.
type Manager struct {
	root string
	lock *flock.Flock
}

// NewManager constructs a manager rooted at stagingDir.
func NewManager(stagingDir string) (*Manager, error) {
	stagingDir = strings.TrimSpace(stagingDir)
	if stagingDir == "" {
		return nil, services.Wrap(services.ErrConfiguration, "staging", "init", "staging directory required", nil)
	}
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrIO, "staging", "init", stagingDir, err)
	}
	return &Manager{
		root: stagingDir,
		lock: flock.New(filepath.Join(stagingDir, lockFileName)),
	}, nil
}

// Root returns the staging root directory.
func (m *Manager) Root() string {
	if m == nil {
		return ""
	}
	return m.root
}

// Acquire takes the staging lock, failing once ctx is done. The returned
// release function is safe to call more than once.
func (m *Manager) Acquire(ctx context.Context) (func(), error) {
	locked, err := m.lock.TryLockContext(ctx, 250*time.Millisecond)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "staging", "lock", m.lock.Path(), err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrTransient, "staging", "lock",
			fmt.Sprintf("staging root %s is locked by another run", m.root), nil)
	}
	released := false
	return func() {
		if !released {
			released = true
			_ = m.lock.Unlock()
		}
	}, nil
}

// Create builds the workspace tree for a job.
func (m *Manager) Create(jobID string) (Workspace, error) {
	var ws Workspace
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return ws, services.Wrap(services.ErrValidation, "staging", "create", "job id required", nil)
	}
	root := filepath.Join(m.root, "job-"+jobID)
	ws = Workspace{
		JobID:  jobID,
		Root:   root,
		Work:   filepath.Join(root, "work"),
		Speech: filepath.Join(root, "speech"),
	}
	for _, dir := range []string{ws.Root, ws.Work, ws.Speech} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Workspace{}, services.Wrap(services.ErrIO, "staging", "create", dir, err)
		}
	}
	return ws, nil
}

// Remove deletes the workspace tree.
func (ws Workspace) Remove() error {
	if strings.TrimSpace(ws.Root) == "" {
		return nil
	}
	return os.RemoveAll(ws.Root)
}
