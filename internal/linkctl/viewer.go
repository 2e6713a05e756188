package linkctl

import (
	"fmt"
	"net/url"
	"strings"
)

const viewerPath = "/simple-experiment/index.html"

// BuildViewerURL returns the link handed to participants. Signed links carry
// only the token; unsigned links carry the plain session id.
func BuildViewerURL(frontendBase, apiBase, sessionID, token string) (string, error) {
	base := strings.TrimRight(frontendBase, "/")
	if base == "" {
		base = DefaultFrontendBase
	}

	u, err := url.Parse(base + viewerPath)
	if err != nil {
		return "", fmt.Errorf("invalid frontend base %q: %w", frontendBase, err)
	}

	q := u.Query()
	if token == "" && sessionID != "" {
		q.Set("sessionId", sessionID)
	}
	q.Set("api", apiBase)
	if token != "" {
		q.Set("token", token)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}
