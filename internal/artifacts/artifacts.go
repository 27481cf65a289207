// Package artifacts holds server-side copies of verified deliverables.
package artifacts

import (
	"context"
	"errors"
	"path"
	"strings"
)

// ErrInvalidKey is returned for keys that would escape the store root.
var ErrInvalidKey = errors.New("invalid artifact key")

type Store interface {
	// Put writes data under key and returns a locator for the stored copy.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Name() string
}

// FinalKey is where a verified file's server copy lives.
func FinalKey(shootID, storedFilename string) string {
	return path.Join("shoots", shootID, "final", storedFilename)
}

// hasParentSegment reports whether any slash-separated segment of key is "..".
// Names like "house..front.jpg" are fine.
func hasParentSegment(key string) bool {
	for _, seg := range strings.Split(strings.ReplaceAll(key, `\`, "/"), "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}
