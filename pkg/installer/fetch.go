package installer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jingkaihe/skillhub/pkg/logger"
	"github.com/jingkaihe/skillhub/pkg/skillerr"
)

const (
	skillsPrefix = "skills/"
	maxHintNames = 12
)

func (i *Installer) newStagingDir() (string, error) {
	root := i.tempDir
	if root == "" {
		root = os.TempDir()
	}
	pattern := fmt.Sprintf("skillhub_clone_%d_%d_", os.Getpid(), time.Now().UnixMilli())
	dir, err := os.MkdirTemp(root, pattern)
	if err != nil {
		return "", skillerr.Filesystem("create staging directory in", root, err)
	}
	return dir, nil
}

// sparseFetch checks out subPath of src into tmp and returns the directory
// holding it. Repositories often keep skills under skills/, so a missing
// subPath is retried once with that prefix.
func (i *Installer) sparseFetch(ctx context.Context, src Source, tmp, subPath string) (string, error) {
	if _, err := i.git(ctx, "", "clone", "--filter=blob:none", "--no-checkout", src.URL(), tmp); err != nil {
		return "", err
	}
	if _, err := i.git(ctx, tmp, "sparse-checkout", "init", "--cone"); err != nil {
		return "", err
	}

	dir, err := i.checkoutSubPath(ctx, tmp, subPath)
	if err != nil || dir != "" {
		return dir, err
	}

	if alt := skillsPrefix + strings.TrimPrefix(subPath, skillsPrefix); alt != subPath {
		logger.G(ctx).WithField("sub_path", subPath).WithField("retry", alt).Debug("sub-path missing, retrying under skills/")
		if dir, err = i.checkoutSubPath(ctx, tmp, alt); err != nil || dir != "" {
			return dir, err
		}
	}

	return "", skillerr.SourcePathNotFound(filepath.Join(tmp, filepath.FromSlash(subPath)), subPath, i.availableSkillsHint(ctx, tmp))
}

// checkoutSubPath returns the checked out directory, or "" when the
// repository has no such directory.
func (i *Installer) checkoutSubPath(ctx context.Context, tmp, subPath string) (string, error) {
	if _, err := i.git(ctx, tmp, "sparse-checkout", "set", subPath); err != nil {
		return "", err
	}
	if _, err := i.git(ctx, tmp, "checkout"); err != nil {
		return "", err
	}
	dir := filepath.Join(tmp, filepath.FromSlash(subPath))
	if !isDir(dir) {
		return "", nil
	}
	return dir, nil
}

func (i *Installer) availableSkillsHint(ctx context.Context, tmp string) string {
	names := listDirNames(filepath.Join(tmp, "skills"))
	if len(names) == 0 {
		out, err := i.git(ctx, tmp, "ls-tree", "-d", "--name-only", "HEAD:skills")
		if err == nil {
			for _, line := range strings.Split(out.Stdout, "\n") {
				if name := strings.TrimSpace(line); name != "" {
					names = append(names, name)
				}
			}
			sort.Strings(names)
		}
	}
	if len(names) == 0 {
		return ""
	}
	if len(names) > maxHintNames {
		names = names[:maxHintNames]
	}
	return "available skills: " + strings.Join(names, ", ")
}

func listDirNames(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

// cloneInto clones the whole repository into target. A partial clone left by
// a failure is removed unless something else created target meanwhile.
func (i *Installer) cloneInto(ctx context.Context, src Source, id, target string) error {
	_, err := i.git(ctx, "", "clone", src.URL(), target)
	if err == nil {
		return nil
	}

	if e, ok := skillerr.As(err); ok && strings.Contains(e.Stderr, "already exists and is not an empty directory") {
		return skillerr.AlreadyInstalled(id, target)
	}
	if rmErr := os.RemoveAll(target); rmErr != nil {
		logger.G(ctx).WithError(rmErr).WithField("path", target).Warn("failed to remove partial clone")
	}
	return err
}
