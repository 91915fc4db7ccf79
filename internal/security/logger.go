package security

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sgaunet/bullets"
)

// DebugAuth logs which authentication method is used for a remote operation.
// Values are sanitized before logging and the token is always masked.
//
// Example:
//
//	DebugAuth(logger, "HTTPS push", token, map[string]string{"url": remoteURL})
func DebugAuth(logger *bullets.Logger, authType string, token SecureToken, details map[string]string) {
	if logger == nil {
		return
	}

	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys)+1)
	if !token.IsEmpty() {
		parts = append(parts, fmt.Sprintf("token=%s (%s)", token, token.Source()))
	}
	for _, k := range keys {
		parts = append(parts, k+"="+SanitizeString(details[k]))
	}
	logger.Debug(fmt.Sprintf("Using %s authentication: %s", authType, strings.Join(parts, " ")))
}

// DebugSSHKey logs SSH key usage safely with masked paths.
func DebugSSHKey(logger *bullets.Logger, keyFile string, success bool) {
	if logger == nil {
		return
	}

	maskedPath := MaskSSHKeyPath(keyFile)
	if success {
		logger.Debug("SSH authentication configured with key: " + maskedPath)
	} else {
		logger.Debug("Skipping SSH key: " + maskedPath)
	}
}
