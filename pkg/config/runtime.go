package config

import (
	"strings"
)

// Flags are the command line switches of the publish command.
type Flags struct {
	DryRun     bool
	CI         bool
	Verbose    bool
	AllowDirty bool
	NoDraft    bool
	// TokenFile is the optional positional GitLab token file path.
	TokenFile string
}

// Runtime is the configuration record passed to every component instead of
// reading the process environment or working directory directly.
// It is not modified after construction.
type Runtime struct {
	env     map[string]string
	Workdir string
	Flags   Flags
}

// NewRuntime builds a Runtime from an os.Environ style list.
func NewRuntime(environ []string, workdir string, flags Flags) Runtime {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		env[k] = v
	}
	return Runtime{env: env, Workdir: workdir, Flags: flags}
}

// Getenv returns the value of key, or "" when unset.
func (r Runtime) Getenv(key string) string {
	return r.env[key]
}

// Environ returns the environment as a KEY=value list, with extra entries
// appended (later entries win for exec.Cmd).
func (r Runtime) Environ(extra ...string) []string {
	out := make([]string, 0, len(r.env)+len(extra))
	for k, v := range r.env {
		out = append(out, k+"="+v)
	}
	return append(out, extra...)
}

// EnvironWithout returns the environment minus every variable whose name
// starts with prefix.
func (r Runtime) EnvironWithout(prefix string) []string {
	out := make([]string, 0, len(r.env))
	for k, v := range r.env {
		if strings.HasPrefix(k, prefix) {
			continue
		}
		out = append(out, k+"="+v)
	}
	return out
}
