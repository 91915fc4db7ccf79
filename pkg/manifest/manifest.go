// Package manifest reads package.json and patches its version field.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// FileName is the manifest file name inside the working directory.
const FileName = "package.json"

var (
	// ErrVersionNotFound is returned when the version field to patch is absent.
	ErrVersionNotFound = errors.New("version field not found in manifest")
	errMissingName     = errors.New("manifest has no name")
	errMissingVersion  = errors.New("manifest has no version")
)

// Repository is the manifest "repository" field. It accepts both the
// string shorthand and the {type, url} object form.
type Repository struct {
	Type string `json:"type,omitempty"`
	URL  string `json:"url,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Repository) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		r.URL = s
		return nil
	}
	type plain Repository
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("invalid repository field: %w", err)
	}
	*r = Repository(p)
	return nil
}

// Manifest holds the package.json fields used by the release pipeline.
type Manifest struct {
	Name       string            `json:"name"`
	Version    string            `json:"version"`
	Private    *bool             `json:"private,omitempty"`
	Repository *Repository       `json:"repository,omitempty"`
	Scripts    map[string]string `json:"scripts,omitempty"`

	// Raw is the file content as read from disk.
	Raw string `json:"-"`
}

// Parse decodes manifest content.
func Parse(raw []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}
	if m.Name == "" {
		return nil, errMissingName
	}
	if m.Version == "" {
		return nil, errMissingVersion
	}
	m.Raw = string(raw)
	return &m, nil
}

// Load reads dir/package.json.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	// #nosec G304 - the manifest path is derived from the working directory
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(raw)
}

// RepositoryURL returns the declared repository URL, or "".
func (m *Manifest) RepositoryURL() string {
	if m.Repository == nil {
		return ""
	}
	return m.Repository.URL
}

// IsPublic reports whether the manifest explicitly declares "private": false.
// An absent field is not public: scoped packages then keep the registry's
// restricted default.
func (m *Manifest) IsPublic() bool {
	return m.Private != nil && !*m.Private
}

// SetVersion replaces the first "version": "<old>" pair in raw with newVersion,
// leaving every other byte untouched.
func SetVersion(raw, oldVersion, newVersion string) (string, error) {
	re := regexp.MustCompile(`("version"\s*:\s*")` + regexp.QuoteMeta(oldVersion) + `"`)
	loc := re.FindStringSubmatchIndex(raw)
	if loc == nil {
		return "", fmt.Errorf("%w: %q", ErrVersionNotFound, oldVersion)
	}
	prefixEnd := loc[3]
	return raw[:prefixEnd] + newVersion + `"` + raw[loc[1]:], nil
}

// WriteVersion patches the version in dir/package.json and returns the new
// content. In dry-run mode nothing is written.
func WriteVersion(dir string, m *Manifest, newVersion string, dryRun bool) (string, error) {
	updated, err := SetVersion(m.Raw, m.Version, newVersion)
	if err != nil {
		return "", err
	}
	if dryRun {
		return updated, nil
	}

	path := filepath.Join(dir, FileName)
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(updated), info.Mode().Perm()); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return updated, nil
}
