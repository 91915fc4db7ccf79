package registry

import (
	"fmt"

	"github.com/sgaunet/auto-release/pkg/config"
)

// PublishArgs returns the command and arguments publishing the package.
// The access flag is only added for explicitly public packages and the tag
// flag only for non-default distribution tags.
func PublishArgs(client string, public bool, distTag string) (string, []string, error) {
	var args []string
	switch client {
	case config.ClientYarn:
		args = []string{"publish", "--non-interactive", "--no-git-tag-version"}
	case config.ClientNPM:
		args = []string{"publish"}
	default:
		return "", nil, fmt.Errorf("unsupported registry client %q", client)
	}
	if public {
		args = append(args, "--access", "public")
	}
	if distTag != "" && distTag != "latest" {
		args = append(args, "--tag", distTag)
	}
	return client, args, nil
}
