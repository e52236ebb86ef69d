package skills

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jingkaihe/skillhub/pkg/logger"
	"github.com/jingkaihe/skillhub/pkg/platform"
	"github.com/jingkaihe/skillhub/pkg/skillerr"
)

// Discovery answers questions about which skills are installed where
type Discovery struct {
	resolver *platform.Resolver
}

// Option is a function that configures a Discovery
type Option func(*Discovery) error

// WithResolver sets the platform resolver used to locate skills directories
func WithResolver(r *platform.Resolver) Option {
	return func(d *Discovery) error {
		d.resolver = r
		return nil
	}
}

// NewDiscovery creates a new skill discovery instance
func NewDiscovery(opts ...Option) (*Discovery, error) {
	d := &Discovery{}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	if d.resolver == nil {
		d.resolver = platform.NewResolver()
	}
	return d, nil
}

// Resolver returns the resolver backing this discovery
func (d *Discovery) Resolver() *platform.Resolver {
	return d.resolver
}

// ListInstalledIDs returns the sorted names of skill directories in the
// global skills directory of p. A missing directory yields an empty list.
func (d *Discovery) ListInstalledIDs(p platform.Platform) ([]string, error) {
	dir, err := d.resolver.GlobalDir(p)
	if err != nil {
		return nil, err
	}
	return listSkillDirs(dir)
}

// ListInstalledSkills returns metadata for every skill installed globally for p
func (d *Discovery) ListInstalledSkills(p platform.Platform) ([]InstalledSkill, error) {
	dir, err := d.resolver.GlobalDir(p)
	if err != nil {
		return nil, err
	}
	return d.ListInstalledSkillsIn(dir)
}

// ListInstalledSkillsIn returns metadata for every skill directory under dir,
// sorted by id.
func (d *Discovery) ListInstalledSkillsIn(dir string) ([]InstalledSkill, error) {
	ids, err := listSkillDirs(dir)
	if err != nil {
		return nil, err
	}

	out := make([]InstalledSkill, 0, len(ids))
	for _, id := range ids {
		out = append(out, loadInstalledSkill(dir, id))
	}
	return out, nil
}

func loadInstalledSkill(dir, id string) InstalledSkill {
	installPath := filepath.Join(dir, id)
	skill := InstalledSkill{
		ID:          id,
		Tags:        []string{},
		InstallPath: installPath,
	}

	manifestPath, ok := FindManifest(installPath, manifestSearchDepth)
	if !ok {
		return skill
	}
	skill.ManifestPath = manifestPath

	meta, err := ReadManifest(manifestPath)
	if err != nil {
		return skill
	}
	skill.Name = meta.Name
	skill.Description = meta.Description
	skill.Tags = meta.Tags
	return skill
}

// DetectedPlatforms returns the platforms present on this machine
func (d *Discovery) DetectedPlatforms() []platform.Platform {
	var out []platform.Platform
	for _, p := range platform.All() {
		if d.resolver.IsDetected(p) {
			out = append(out, p)
		}
	}
	return out
}

// InstalledAnywhere returns the sorted, de-duplicated ids installed on any
// detected platform.
func (d *Discovery) InstalledAnywhere(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	for _, p := range d.DetectedPlatforms() {
		ids, err := d.ListInstalledIDs(p)
		if err != nil {
			logger.G(ctx).WithError(err).WithField("platform", p).Debug("skipping platform that could not be listed")
			continue
		}
		for _, id := range ids {
			seen[id] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// InstalledPlatformsForIDs maps each id to the platforms that have it
// installed globally. Ids installed nowhere are omitted.
func (d *Discovery) InstalledPlatformsForIDs(ids []string) (map[string][]platform.Platform, error) {
	result := make(map[string][]platform.Platform)
	for _, id := range ids {
		if strings.TrimSpace(id) == "" || platform.ValidateIdentifier(id) != nil {
			continue
		}

		var found []platform.Platform
		for _, p := range platform.All() {
			dir, err := d.resolver.GlobalDir(p)
			if err != nil {
				return nil, err
			}
			if isDir(filepath.Join(dir, id)) {
				found = append(found, p)
			}
		}
		if len(found) > 0 {
			result[id] = found
		}
	}
	return result, nil
}

// listSkillDirs lists directory entries of dir that are directories,
// following symlinks.
func listSkillDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, skillerr.Filesystem("read directory", dir, err)
	}

	ids := []string{}
	for _, entry := range entries {
		if isDir(filepath.Join(dir, entry.Name())) {
			ids = append(ids, entry.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
