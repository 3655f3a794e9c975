package book

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const idLength = 16

// Service provides book-related business logic.
type Service struct {
	repo  Repository
	now   func() time.Time
	newID func() (string, error)
}

// Option customises a Service.
type Option func(*Service)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides how new book ids are produced.
func WithIDGenerator(newID func() (string, error)) Option {
	return func(s *Service) { s.newID = newID }
}

// NewService creates a new book service.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:  repo,
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() (string, error) { return gonanoid.New(idLength) },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates p, stores a new book and returns its id.
func (s *Service) Create(ctx context.Context, p Payload) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}

	id, err := s.newID()
	if err != nil {
		return "", fmt.Errorf("generate id: %w: %v", ErrStorage, err)
	}

	now := s.now()
	b := Book{ID: id, InsertedAt: now, UpdatedAt: now}
	p.apply(&b)

	if err := s.repo.Insert(ctx, b); err != nil {
		return "", fmt.Errorf("insert book %s: %w: %v", id, ErrStorage, err)
	}

	// The record must be readable straight after the insert.
	if _, err := s.repo.Get(ctx, id); err != nil {
		return "", fmt.Errorf("verify book %s: %w: %v", id, ErrStorage, err)
	}
	return id, nil
}

// List returns the summaries of books matching f, in insertion order.
// The sequence is evaluated lazily and may be ranged over more than once.
func (s *Service) List(ctx context.Context, f Filter) iter.Seq[Summary] {
	books := s.repo.List(ctx)
	return func(yield func(Summary) bool) {
		for b := range books {
			if !f.Match(b) {
				continue
			}
			if !yield(b.Summarize()) {
				return
			}
		}
	}
}

// Get returns the book with the given id.
func (s *Service) Get(ctx context.Context, id string) (Book, error) {
	return s.repo.Get(ctx, id)
}

// Update replaces every mutable field of the book with the given id.
// An unknown id is reported before the payload is validated.
func (s *Service) Update(ctx context.Context, id string, p Payload) error {
	return s.repo.Update(ctx, id, func(b *Book) error {
		if err := p.Validate(); err != nil {
			return err
		}
		p.apply(b)
		b.UpdatedAt = s.now()
		return nil
	})
}

// Delete removes the book with the given id.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Count returns the number of stored books.
func (s *Service) Count() int {
	return s.repo.Len()
}

// IsValidation reports whether err is a payload validation failure and
// returns it.
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
