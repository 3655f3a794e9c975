package book

import (
	"context"
	"iter"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=book

// Repository defines the contract for book storage.
type Repository interface {
	// Insert adds b at the end of the collection.
	Insert(ctx context.Context, b Book) error
	// Get returns a copy of the book with the given id.
	Get(ctx context.Context, id string) (Book, error)
	// List returns the books in insertion order as of the call.
	List(ctx context.Context) iter.Seq[Book]
	// Update runs mutate against the stored book while holding the write lock.
	// The change is discarded when mutate returns an error.
	Update(ctx context.Context, id string, mutate func(*Book) error) error
	// Delete removes the book with the given id.
	Delete(ctx context.Context, id string) error
	// Len returns the number of stored books.
	Len() int
}
