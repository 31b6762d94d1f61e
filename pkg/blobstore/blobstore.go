// Package blobstore holds the document byte stores. Every implementation
// satisfies domain.BlobStore; content refs are object keys and are opaque to
// callers.
package blobstore

import (
	"errors"
	"fmt"
	"mime"
	"strings"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("blobstore: object not found")

const keyPrefix = "documents/"

// newKey builds a collision-free object key, keeping an extension derived
// from the content type so direct downloads open in the right viewer.
func newKey(contentType string) string {
	ext := ""
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		ext = exts[0]
	}
	switch contentType {
	case "application/pdf":
		ext = ".pdf"
	case "image/jpeg":
		ext = ".jpg"
	}
	return fmt.Sprintf("%s%s%s", keyPrefix, uuid.NewString(), ext)
}

func validRef(ref string) bool {
	return strings.HasPrefix(ref, keyPrefix) && !strings.Contains(ref, "..")
}
