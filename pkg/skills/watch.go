package skills

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/jingkaihe/skillhub/pkg/logger"
	"github.com/jingkaihe/skillhub/pkg/platform"
)

const defaultDebounce = 300 * time.Millisecond

// Snapshot maps each platform to the ids installed in its global skills directory
type Snapshot map[platform.Platform][]string

// Watcher reports installed skills whenever a platform's skills directory changes
type Watcher struct {
	discovery *Discovery
	debounce  time.Duration
}

// NewWatcher creates a watcher over the platforms known to d. A non-positive
// debounce uses the default.
func NewWatcher(d *Discovery, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Watcher{discovery: d, debounce: debounce}
}

// Snapshot lists installed ids for every platform whose global directory resolves
func (w *Watcher) Snapshot(ctx context.Context) Snapshot {
	snap := make(Snapshot)
	for _, p := range platform.All() {
		ids, err := w.discovery.ListInstalledIDs(p)
		if err != nil {
			logger.G(ctx).WithError(err).WithField("platform", p).Debug("failed to list installed skills")
			continue
		}
		snap[p] = ids
	}
	return snap
}

// Run sends an initial snapshot to out, then a fresh one after each burst of
// filesystem events settles. It returns when ctx is done.
func (w *Watcher) Run(ctx context.Context, out chan<- Snapshot) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create file watcher")
	}
	defer fw.Close()

	watched := w.addDirs(ctx, fw)
	if watched == 0 {
		logger.G(ctx).Warn("no platform directories exist yet, nothing to watch")
	}

	if !send(ctx, out, w.Snapshot(ctx)) {
		return nil
	}

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			logger.G(ctx).WithField("path", event.Name).WithField("op", event.Op.String()).Debug("skills directory changed")
			if event.Op&fsnotify.Create != 0 {
				// a skills directory created under a watched platform root
				w.addDirs(ctx, fw)
			}
			timer.Reset(w.debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.G(ctx).WithError(err).Warn("file watcher error")
		case <-timer.C:
			if !send(ctx, out, w.Snapshot(ctx)) {
				return nil
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// addDirs watches each existing detection and global skills directory and
// returns how many are being watched.
func (w *Watcher) addDirs(ctx context.Context, fw *fsnotify.Watcher) int {
	resolver := w.discovery.Resolver()
	count := 0
	for _, p := range platform.All() {
		for _, dirFn := range []func(platform.Platform) (string, error){resolver.DetectionDir, resolver.GlobalDir} {
			dir, err := dirFn(p)
			if err != nil || !isDir(dir) {
				continue
			}
			if err := fw.Add(dir); err != nil {
				logger.G(ctx).WithError(err).WithField("directory", dir).Debug("failed to watch directory")
				continue
			}
			count++
		}
	}
	return count
}

func send(ctx context.Context, out chan<- Snapshot, snap Snapshot) bool {
	select {
	case out <- snap:
		return true
	case <-ctx.Done():
		return false
	}
}
