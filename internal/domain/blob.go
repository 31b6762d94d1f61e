package domain

import "context"

// BlobStore is the external store for uploaded document bytes.
type BlobStore interface {
	Store(ctx context.Context, data []byte, contentType string) (string, error)
	Fetch(ctx context.Context, ref string) ([]byte, error)
	DirectURL(ctx context.Context, ref string) (string, error)
	Delete(ctx context.Context, ref string) error
}
