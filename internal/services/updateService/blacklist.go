package updateservice

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Blacklist is the persisted set of version strings that failed their health
// check. A version in here is never downloaded again, even after the release
// that introduced it is re-discovered on a later run.
type Blacklist struct {
	versions map[string]struct{}
	path     string
}

// blacklistFile is the on-disk shape: a single-field JSON record so the file
// stays human-diffable. Entries are sorted before writing for stable diffs.
type blacklistFile struct {
	IgnoredVersions []string `json:"ignored_versions"`
}

// BlacklistPath resolves the per-user location of the blacklist file,
// falling back to a relative path when no user cache dir can be resolved.
func BlacklistPath(appName string) string {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "update_state.json"
	}
	return filepath.Join(cacheDir, appName, "state.json")
}

// LoadBlacklist reads the persisted set from path. A missing, unreadable or
// malformed file yields an empty blacklist: a corrupted state file must never
// block updates, so every load error collapses to "nothing is blacklisted".
func LoadBlacklist(path string) *Blacklist {
	bl := &Blacklist{
		versions: make(map[string]struct{}),
		path:     path,
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return bl
	}

	var record blacklistFile
	if err := json.Unmarshal(raw, &record); err != nil {
		return bl
	}

	for _, v := range record.IgnoredVersions {
		bl.versions[v] = struct{}{}
	}
	return bl
}

// IsBad reports whether version is known-broken. Release identifiers and
// locally recorded identifiers may disagree on a leading "v", so both the
// raw and the stripped form are checked.
func (b *Blacklist) IsBad(version string) bool {
	clean := strings.TrimPrefix(version, "v")
	if _, ok := b.versions[clean]; ok {
		return true
	}
	_, ok := b.versions[version]
	return ok
}

// MarkBad records version as broken and persists the set synchronously.
// The in-memory entry stays visible even when the write fails, but the
// failure is surfaced so the caller can report the lost durability.
func (b *Blacklist) MarkBad(version string) error {
	b.versions[version] = struct{}{}
	return b.save()
}

// Versions returns the recorded set, sorted.
func (b *Blacklist) Versions() []string {
	out := make([]string, 0, len(b.versions))
	for v := range b.versions {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func (b *Blacklist) save() error {
	if dir := filepath.Dir(b.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create blacklist dir: %w", err)
		}
	}

	record := blacklistFile{IgnoredVersions: b.Versions()}
	raw, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode blacklist: %w", err)
	}

	if err := os.WriteFile(b.path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write blacklist: %w", err)
	}
	return nil
}
