// Package registry queries the npm registry through the npm CLI and builds
// the publish command line.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sgaunet/auto-release/pkg/runner"
	"github.com/sgaunet/bullets"
)

var (
	// ErrNotFound is returned when the registry does not know the package.
	ErrNotFound = errors.New("package not found in registry")
	// ErrUnparsableOutput is returned when npm prints neither JSON on stdout
	// nor a JSON error object on stderr.
	ErrUnparsableOutput = errors.New("couldn't parse npm json output")
)

const notFoundCode = "E404"

// Package is the subset of "npm view <name> --json" used for resolution.
type Package struct {
	Name     string            `json:"name"`
	DistTags map[string]string `json:"dist-tags"`
	Versions []string          `json:"versions"`
}

type npmError struct {
	Error struct {
		Code    string `json:"code"`
		Summary string `json:"summary"`
	} `json:"error"`
}

// NPM queries the registry by running "npm view".
type NPM struct {
	exec   runner.Executor
	binary string
	log    *bullets.Logger
}

// NewNPM creates a registry client running binary through exec.
func NewNPM(exec runner.Executor, binary string, logger *bullets.Logger) *NPM {
	if binary == "" {
		binary = "npm"
	}
	return &NPM{exec: exec, binary: binary, log: logger}
}

// Show returns the package metadata, or ErrNotFound.
func (n *NPM) Show(ctx context.Context, name string) (*Package, error) {
	out, err := n.view(ctx, name)
	if err != nil {
		return nil, err
	}
	var pkg Package
	if err := json.Unmarshal(out, &pkg); err != nil {
		// Single-version packages report "versions" as a string.
		var loose struct {
			Name     string            `json:"name"`
			DistTags map[string]string `json:"dist-tags"`
			Versions string            `json:"versions"`
		}
		if err2 := json.Unmarshal(out, &loose); err2 != nil {
			return nil, fmt.Errorf("failed to decode package metadata: %w", err)
		}
		pkg = Package{Name: loose.Name, DistTags: loose.DistTags, Versions: []string{loose.Versions}}
	}
	return &pkg, nil
}

// ShowVersion resolves name@versionOrTag to a version, or "" when the
// registry has no such version or tag.
func (n *NPM) ShowVersion(ctx context.Context, name, versionOrTag string) (string, error) {
	out, err := n.view(ctx, name+"@"+versionOrTag, "version")
	if errors.Is(err, ErrNotFound) {
		// npm 7+ reports an unknown version of a known package as E404 too.
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if len(out) == 0 {
		return "", nil
	}

	var v string
	if err := json.Unmarshal(out, &v); err == nil {
		return v, nil
	}
	// A range query may match several versions; the last one is the highest.
	var list []string
	if err := json.Unmarshal(out, &list); err == nil {
		if len(list) == 0 {
			return "", nil
		}
		return list[len(list)-1], nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnparsableOutput, strings.TrimSpace(string(out)))
}

// view runs "npm view <query> [field] --json" and returns the JSON document
// describing the result. An empty result yields nil.
func (n *NPM) view(ctx context.Context, query string, fields ...string) ([]byte, error) {
	args := append([]string{"view", query}, fields...)
	args = append(args, "--json")

	res, runErr := n.exec.Output(ctx, n.binary, args...)
	if runErr != nil {
		if cmdRes, ok := runner.ErrorResult(runErr); ok {
			res = cmdRes
		}
	}

	stdout := strings.TrimSpace(res.Stdout)
	if stdout != "" && json.Valid([]byte(stdout)) {
		if code := errorCode([]byte(stdout)); code != "" {
			return nil, classify(code, query)
		}
		return []byte(stdout), nil
	}

	if doc := extractJSONObject(res.Stderr); doc != nil {
		if code := errorCode(doc); code != "" {
			return nil, classify(code, query)
		}
	}

	if runErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnparsableOutput, runErr)
	}
	if stdout == "" {
		return nil, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnparsableOutput, stdout)
}

func classify(code, query string) error {
	if code == notFoundCode {
		return fmt.Errorf("%w: %s", ErrNotFound, query)
	}
	return fmt.Errorf("npm view %s failed with %s", query, code)
}

func errorCode(doc []byte) string {
	var e npmError
	if err := json.Unmarshal(doc, &e); err != nil {
		return ""
	}
	return e.Error.Code
}

// extractJSONObject finds the multi-line JSON object npm 7+ embeds in its
// stderr log output.
func extractJSONObject(stderr string) []byte {
	s := "\n" + stderr
	start := strings.Index(s, "\n{\n")
	end := strings.LastIndex(s, "\n}")
	if start < 0 || end < start {
		return nil
	}
	doc := []byte(s[start+1 : end+2])
	if !json.Valid(doc) {
		return nil
	}
	return doc
}
