package blobstore

import (
	"context"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
)

const publicHost = "https://storage.googleapis.com"

// Store persists uploaded binaries and returns a publicly fetchable URL for them.
type Store interface {
	Put(ctx context.Context, key string, contentType string, body io.Reader) (string, error)
}

// NewKey returns a globally unique object key that keeps the original file name: {uuid}-{name}.
func NewKey(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "upload"
	}
	return uuid.NewString() + "-" + name
}

// PublicURL is the URL under which a public object of the bucket is served.
func PublicURL(bucket string, key string) string {
	return publicHost + "/" + bucket + "/" + url.PathEscape(key)
}
