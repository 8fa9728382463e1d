package runtime

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/shirou/gopsutil/v4/process"
)

// ProcessFinder reports whether a process with the given name is running.
type ProcessFinder interface {
	Running(ctx context.Context, name string) (bool, error)
}

// UserProcessFinder matches processes by exact name, restricted to one user,
// like `pgrep -u $USER -x name`.
type UserProcessFinder struct {
	// UID is the effective user id to match; negative matches every user.
	UID int
}

// NewUserProcessFinder returns a finder for processes whose effective uid is ours.
func NewUserProcessFinder() *UserProcessFinder {
	return &UserProcessFinder{UID: os.Geteuid()}
}

// Running scans the process table once. Zombies do not count as running.
func (f *UserProcessFinder) Running(ctx context.Context, name string) (bool, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return false, fmt.Errorf("list processes: %w", err)
	}
	for _, p := range procs {
		// Processes can exit between listing and inspection; skip them.
		pname, err := p.NameWithContext(ctx)
		if err != nil || pname != name {
			continue
		}
		if !f.ownedByUser(ctx, p) {
			continue
		}
		if status, err := p.StatusWithContext(ctx); err == nil && slices.Contains(status, process.Zombie) {
			continue
		}
		return true, nil
	}
	return false, nil
}

func (f *UserProcessFinder) ownedByUser(ctx context.Context, p *process.Process) bool {
	if f.UID < 0 {
		return true
	}
	uids, err := p.UidsWithContext(ctx)
	if err != nil || len(uids) == 0 {
		return false
	}
	euid := uids[0]
	if len(uids) > 1 {
		euid = uids[1]
	}
	return int(euid) == f.UID
}
