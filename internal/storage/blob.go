package storage

import "io"

// BlobStore persists uploaded submission files. Handles are opaque to the
// rest of the engine.
type BlobStore interface {
	Put(handle string, r io.Reader) (string, error)
	Get(handle string) (io.ReadCloser, error)
	DownloadURL(handle string) (string, error)
}
