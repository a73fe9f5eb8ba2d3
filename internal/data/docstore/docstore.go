// Package docstore holds the durable media a survey document can live on.
//
// Every Medium stores exactly one opaque document. Load must return a whole document as it
// was last saved and Save must replace it atomically, so readers never observe a partial
// write and need no lock of their own.
package docstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load and Save when the document has not been created.
var ErrNotFound = errors.New("document not found")

type Medium interface {
	// Init stores seed unless a document already exists. created reports whether it did.
	Init(ctx context.Context, seed []byte) (created bool, err error)
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, doc []byte) error
	// Describe names the medium for logs.
	Describe() string
	Close() error
}
