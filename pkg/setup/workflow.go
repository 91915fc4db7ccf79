package setup

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// WorkflowPath is the GitHub Actions workflow written for CI publishing.
const WorkflowPath = ".github/workflows/release.yml"

const yamlIndent = 2

type workflow struct {
	Name string                 `yaml:"name"`
	On   workflowTrigger        `yaml:"on"`
	Jobs map[string]workflowJob `yaml:"jobs"`
}

type workflowTrigger struct {
	Push struct {
		Branches []string `yaml:"branches"`
	} `yaml:"push"`
}

type workflowJob struct {
	Name   string         `yaml:"name"`
	RunsOn string         `yaml:"runs-on"`
	Steps  []workflowStep `yaml:"steps"`
}

type workflowStep struct {
	Uses string            `yaml:"uses,omitempty"`
	With map[string]any    `yaml:"with,omitempty"`
	Run  string            `yaml:"run,omitempty"`
	Env  map[string]string `yaml:"env,omitempty"`
}

// releaseWorkflow returns the workflow publishing on every push to branch.
func releaseWorkflow(branch string) workflow {
	w := workflow{
		Name: "release",
		Jobs: map[string]workflowJob{
			"release": {
				Name:   "release",
				RunsOn: "ubuntu-latest",
				Steps: []workflowStep{
					{Uses: "actions/checkout@v4", With: map[string]any{"fetch-depth": 0}},
					{Uses: "actions/setup-node@v4", With: map[string]any{
						"node-version": 20,
						"cache":        "yarn",
						"registry-url": "https://registry.npmjs.org",
					}},
					{Run: "yarn"},
					{Run: "yarn publish:npm", Env: map[string]string{
						"GITHUB_TOKEN":    "${{ secrets.GITHUB_TOKEN }}",
						"NODE_AUTH_TOKEN": "${{ secrets.NPM_TOKEN }}",
					}},
				},
			},
		},
	}
	w.On.Push.Branches = []string{branch}
	return w
}

// RenderWorkflow encodes the release workflow for branch.
func RenderWorkflow(branch string) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(yamlIndent)
	if err := enc.Encode(releaseWorkflow(branch)); err != nil {
		return nil, fmt.Errorf("failed to encode workflow: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode workflow: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteWorkflow writes the release workflow under dir.
func WriteWorkflow(dir, branch string) (string, error) {
	data, err := RenderWorkflow(branch)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, WorkflowPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // workflow files are committed
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
