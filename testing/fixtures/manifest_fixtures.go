package fixtures

import (
	"os"
	"path/filepath"
	"testing"
)

// Canned package.json documents.
const (
	PublicManifest = `{
  "name": "widget",
  "version": "1.0.0",
  "private": false,
  "repository": {
    "type": "git",
    "url": "git+https://github.com/acme/widget.git"
  },
  "scripts": {
    "test": "jest"
  }
}
`

	PrereleaseManifest = `{
  "name": "widget",
  "version": "2.0.0-rc1",
  "repository": "https://gitlab.example.com/acme/widget"
}
`

	ManifestWithoutRepository = `{
  "name": "widget",
  "version": "1.0.0"
}
`
)

// WriteManifest writes content as package.json into dir and returns its path.
func WriteManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "package.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	return path
}
