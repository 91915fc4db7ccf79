package git

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	gitssh "github.com/go-git/go-git/v5/plumbing/transport/ssh"
	"github.com/sgaunet/auto-release/internal/security"
	"golang.org/x/crypto/ssh"
)

var defaultKeyFiles = []string{"id_ed25519", "id_ecdsa", "id_rsa"}

// authFor selects push credentials for remoteURL.
// HTTPS remotes use a token from the environment, SSH remotes use the agent
// or the first unencrypted key in ~/.ssh. Local paths need none. A nil
// method lets go-git try without credentials.
func (r *Repository) authFor(remoteURL string) (transport.AuthMethod, error) {
	if strings.HasPrefix(remoteURL, "file://") || filepath.IsAbs(remoteURL) {
		return nil, nil
	}
	if strings.HasPrefix(remoteURL, "http://") || strings.HasPrefix(remoteURL, "https://") {
		return r.httpsAuth(remoteURL), nil
	}
	return r.sshAuth(remoteURL)
}

func (r *Repository) httpsAuth(remoteURL string) transport.AuthMethod {
	u, err := url.Parse(remoteURL)
	if err == nil && u.User != nil {
		// credentials embedded in the remote URL are used by go-git directly
		return nil
	}

	host := ""
	if u != nil {
		host = u.Hostname()
	}

	candidates := []struct {
		env  string
		user string
	}{
		{"CI_JOB_TOKEN", "gitlab-ci-token"},
		{"GITLAB_TOKEN", "oauth2"},
	}
	if host == "github.com" {
		candidates = []struct {
			env  string
			user string
		}{{"GITHUB_TOKEN", "x-access-token"}}
	}

	for _, c := range candidates {
		value := r.rt.Getenv(c.env)
		if value == "" {
			continue
		}
		token := security.NewSecureToken(value, c.env)
		security.DebugAuth(r.log, "HTTPS", token, map[string]string{"user": c.user, "host": host})
		return &githttp.BasicAuth{Username: c.user, Password: token.Value()}
	}
	r.log.Debug("no HTTPS token found in environment, pushing without credentials")
	return nil
}

func (r *Repository) sshAuth(remoteURL string) (transport.AuthMethod, error) {
	user := sshUser(remoteURL)

	if r.rt.Getenv("SSH_AUTH_SOCK") != "" {
		auth, err := gitssh.NewSSHAgentAuth(user)
		if err == nil {
			r.log.Debug("using SSH agent authentication")
			return auth, nil
		}
		r.log.Debug("SSH agent unavailable: " + err.Error())
	}

	home := r.rt.Getenv("HOME")
	if home == "" {
		var err error
		if home, err = os.UserHomeDir(); err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
	}

	for _, name := range defaultKeyFiles {
		keyFile := filepath.Join(home, ".ssh", name)
		if !usableKey(keyFile) {
			continue
		}
		auth, err := gitssh.NewPublicKeysFromFile(user, keyFile, "")
		security.DebugSSHKey(r.log, keyFile, err == nil)
		if err == nil {
			return auth, nil
		}
	}
	r.log.Debug("no usable SSH key found")
	return nil, nil
}

// usableKey reports whether keyFile is a private key that can be used
// without a passphrase.
func usableKey(keyFile string) bool {
	// #nosec G304 - key paths are fixed names under ~/.ssh
	data, err := os.ReadFile(keyFile)
	if err != nil {
		return false
	}
	_, err = ssh.ParseRawPrivateKey(data)
	var missing *ssh.PassphraseMissingError
	if errors.As(err, &missing) {
		return false
	}
	return err == nil
}

// sshUser extracts the user of an scp-like or ssh:// remote, "git" by default.
func sshUser(remoteURL string) string {
	if u, err := url.Parse(remoteURL); err == nil && u.Scheme == "ssh" && u.User != nil {
		return u.User.Username()
	}
	if at := strings.Index(remoteURL, "@"); at > 0 && !strings.Contains(remoteURL[:at], "/") {
		return remoteURL[:at]
	}
	return gitssh.DefaultUsername
}
