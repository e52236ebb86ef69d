package installer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jingkaihe/skillhub/pkg/skillerr"
)

// placeDir moves src to target. Across filesystems the tree is copied into a
// sibling staging directory first so target only ever appears complete.
func placeDir(src, target, id string) error {
	err := os.Rename(src, target)
	if err == nil {
		return nil
	}
	if pathExists(target) {
		return skillerr.AlreadyInstalled(id, target)
	}
	if !isCrossDevice(err) {
		return skillerr.Filesystem("move skill to", target, err)
	}

	staging := fmt.Sprintf("%s.incoming.%d", target, time.Now().UnixNano())
	defer os.RemoveAll(staging)

	if err := copyDir(src, staging); err != nil {
		return skillerr.Filesystem("copy skill to", staging, err)
	}
	if err := os.Rename(staging, target); err != nil {
		if pathExists(target) {
			return skillerr.AlreadyInstalled(id, target)
		}
		return skillerr.Filesystem("move skill to", target, err)
	}
	return nil
}

func copyDir(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		destPath := filepath.Join(dst, relPath)

		switch {
		case info.Mode()&os.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(link, destPath)
		case info.IsDir():
			return os.MkdirAll(destPath, info.Mode().Perm())
		default:
			return copyFile(path, destPath, info.Mode().Perm())
		}
	})
}

func copyFile(src, dst string, mode os.FileMode) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return err
	}
	return dstFile.Close()
}
