package worker

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/flashframe/flashframe-backend/pkg/storage"
)

// photoKey is a parsed event-photo object key:
// <prefix>/<organization>/<event>/<file>.
type photoKey struct {
	Prefix       string
	Organization string
	EventID      string
	FileName     string
}

// assetKey is a parsed branding-asset object key:
// organization-assets/<organization>/<kind>.
type assetKey struct {
	Organization string
	Kind         string
}

// decodeKey undoes the URL encoding S3 applies to object keys in event
// notifications.
func decodeKey(raw string) (string, error) {
	key, err := url.QueryUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("decode object key %q: %w", raw, err)
	}
	return key, nil
}

func parsePhotoKey(key string) (*photoKey, error) {
	parts := strings.SplitN(key, "/", 4)
	if len(parts) != 4 || parts[3] == "" {
		return nil, fmt.Errorf("unexpected object key %q", key)
	}
	return &photoKey{
		Prefix:       parts[0],
		Organization: parts[1],
		EventID:      parts[2],
		FileName:     parts[3],
	}, nil
}

func parseAssetKey(key string) (*assetKey, error) {
	parts := strings.SplitN(key, "/", 3)
	if len(parts) != 3 || parts[0] != storage.PrefixAssets || parts[2] == "" {
		return nil, fmt.Errorf("unexpected asset key %q", key)
	}
	return &assetKey{
		Organization: parts[1],
		Kind:         parts[2],
	}, nil
}

func isAssetKey(key string) bool {
	return strings.HasPrefix(key, storage.PrefixAssets+"/")
}
