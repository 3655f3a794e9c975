package book

import (
	"context"
	"iter"
	"slices"
	"sync"
)

// Registry is an in-memory Repository. Records keep their insertion order
// and ids are never handed out twice, even after a delete.
type Registry struct {
	mu      sync.RWMutex
	books   map[string]*Book
	order   []string
	retired map[string]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		books:   make(map[string]*Book),
		retired: make(map[string]struct{}),
	}
}

func (r *Registry) Insert(_ context.Context, b Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.books[b.ID]; ok {
		return ErrDuplicateID
	}
	if _, ok := r.retired[b.ID]; ok {
		return ErrDuplicateID
	}
	stored := b.clone()
	r.books[b.ID] = &stored
	r.order = append(r.order, b.ID)
	return nil
}

func (r *Registry) Get(_ context.Context, id string) (Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.books[id]
	if !ok {
		return Book{}, ErrNotFound
	}
	return b.clone(), nil
}

func (r *Registry) List(_ context.Context) iter.Seq[Book] {
	r.mu.RLock()
	snapshot := make([]Book, 0, len(r.order))
	for _, id := range r.order {
		snapshot = append(snapshot, r.books[id].clone())
	}
	r.mu.RUnlock()

	return func(yield func(Book) bool) {
		for _, b := range snapshot {
			if !yield(b.clone()) {
				return
			}
		}
	}
}

func (r *Registry) Update(_ context.Context, id string, mutate func(*Book) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.books[id]
	if !ok {
		return ErrNotFound
	}
	next := current.clone()
	if err := mutate(&next); err != nil {
		return err
	}
	// id and insertion time belong to the registry.
	next.ID = current.ID
	next.InsertedAt = current.InsertedAt
	r.books[id] = &next
	return nil
}

func (r *Registry) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.books[id]; !ok {
		return ErrNotFound
	}
	delete(r.books, id)
	r.retired[id] = struct{}{}
	if i := slices.Index(r.order, id); i >= 0 {
		r.order = slices.Delete(r.order, i, i+1)
	}
	return nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.books)
}
