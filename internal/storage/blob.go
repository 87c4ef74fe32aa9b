package storage

import "io"

type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
	// List returns every stored key under a prefix; the asset resolver
	// registry is built from it.
	List(prefix string) ([]string, error)
}
