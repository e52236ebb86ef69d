package installer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/jingkaihe/skillhub/pkg/logger"
	"github.com/jingkaihe/skillhub/pkg/skillerr"
)

const (
	lockRetryDelay  = 50 * time.Millisecond
	lockRetryJitter = 50 * time.Millisecond // Add up to 50ms of jitter
	// lockUnreadableAge is how old a lock file without a PID must be before
	// it counts as abandoned.
	lockUnreadableAge = 10 * time.Second
)

var errLockHeld = errors.New("install lock held by another process")

// installLock serializes installs of one skill id into one skills directory
// across skillhub processes.
type installLock struct {
	path string
}

func lockPath(skillsDir, id string) string {
	return filepath.Join(skillsDir, "."+id+".skillhub.lock")
}

func (i *Installer) acquireLock(ctx context.Context, skillsDir, id string) (*installLock, error) {
	path := lockPath(skillsDir, id)
	lockCtx, cancel := context.WithTimeout(ctx, i.lockTimeout)
	defer cancel()

	var lock *installLock
	err := retry.Do(
		func() error {
			l, err := tryLock(ctx, path)
			if err != nil {
				return err
			}
			lock = l
			return nil
		},
		retry.Context(lockCtx),
		retry.Attempts(0),
		retry.Delay(lockRetryDelay),
		retry.MaxJitter(lockRetryJitter),
		retry.DelayType(retry.CombineDelay(retry.FixedDelay, retry.RandomDelay)),
		retry.RetryIf(func(err error) bool { return errors.Is(err, errLockHeld) }),
		retry.LastErrorOnly(true),
	)
	if err == nil {
		return lock, nil
	}

	switch {
	case ctx.Err() != nil:
		return nil, skillerr.Canceled("install lock", ctx.Err())
	case errors.Is(err, errLockHeld) || errors.Is(err, context.DeadlineExceeded):
		return nil, skillerr.InstallInProgress(id, filepath.Join(skillsDir, id), err)
	default:
		return nil, skillerr.Filesystem("create lock file", path, err)
	}
}

func tryLock(ctx context.Context, path string) (*installLock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err == nil {
		_, werr := fmt.Fprintf(f, "%d\n", os.Getpid())
		cerr := f.Close()
		if werr != nil || cerr != nil {
			_ = os.Remove(path)
			if werr != nil {
				return nil, werr
			}
			return nil, cerr
		}
		return &installLock{path: path}, nil
	}
	if !os.IsExist(err) {
		return nil, err
	}

	if stale, pid, judged := isStaleLock(path); stale {
		logger.G(ctx).WithField("path", path).WithField("pid", pid).Warn("removing stale install lock")
		if err := reclaimStaleLock(ctx, path, judged); err != nil {
			return nil, err
		}
	}
	return nil, errLockHeld
}

// isStaleLock reports whether the process recorded in the lock file is gone.
// The returned FileInfo identifies the file that was judged.
func isStaleLock(path string) (bool, int, os.FileInfo) {
	before, err := os.Lstat(path)
	if err != nil {
		return false, 0, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return false, 0, nil
	}
	after, err := os.Lstat(path)
	if err != nil || !os.SameFile(before, after) {
		return false, 0, nil
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(content)))
	if err != nil || pid <= 0 {
		return time.Since(after.ModTime()) > lockUnreadableAge, 0, after
	}

	alive, err := process.PidExists(int32(pid))
	if err != nil {
		return false, pid, nil
	}
	return !alive, pid, after
}

// reclaimStaleLock renames the lock aside and deletes it only when it is
// still the file that was judged stale. A lock created by another waiter in
// the meantime is linked back into place.
func reclaimStaleLock(ctx context.Context, path string, judged os.FileInfo) error {
	aside := fmt.Sprintf("%s.stale.%d.%d", path, os.Getpid(), time.Now().UnixNano())
	if err := os.Rename(path, aside); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	moved, err := os.Lstat(aside)
	if err == nil && os.SameFile(judged, moved) {
		if err := os.Remove(aside); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}

	if err := os.Link(aside, path); err != nil {
		logger.G(ctx).WithError(err).WithField("path", path).Warn("failed to restore install lock taken while reclaiming a stale one")
	}
	_ = os.Remove(aside)
	return nil
}

func (l *installLock) release(ctx context.Context) {
	if l == nil || l.path == "" {
		return
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		logger.G(ctx).WithError(err).WithField("path", l.path).Warn("failed to release install lock")
	}
	l.path = ""
}
