package book

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when no book has the requested id.
	ErrNotFound = errors.New("book not found")
	// ErrStorage is returned when the registry cannot confirm a write.
	ErrStorage = errors.New("book storage failure")
	// ErrDuplicateID is returned by Insert when the id was already issued.
	ErrDuplicateID = errors.New("book id already issued")
)

// Book represents a bookshelf record.
type Book struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Year       *int      `json:"year,omitempty"`
	Author     string    `json:"author"`
	Summary    string    `json:"summary"`
	Publisher  string    `json:"publisher"`
	PageCount  *int      `json:"pageCount,omitempty"`
	ReadPage   *int      `json:"readPage,omitempty"`
	Finished   bool      `json:"finished"`
	Reading    *bool     `json:"reading,omitempty"`
	InsertedAt time.Time `json:"insertedAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Summary is the projection returned when listing books.
type Summary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Publisher string `json:"publisher"`
}

// Summarize projects b onto its listing fields.
func (b Book) Summarize() Summary {
	return Summary{ID: b.ID, Name: b.Name, Publisher: b.Publisher}
}

// Payload is the mutable field set accepted by create and update.
type Payload struct {
	Name      string `json:"name" yaml:"name" validate:"notblank"`
	Year      *int   `json:"year" yaml:"year"`
	Author    string `json:"author" yaml:"author"`
	Summary   string `json:"summary" yaml:"summary"`
	Publisher string `json:"publisher" yaml:"publisher"`
	PageCount *int   `json:"pageCount" yaml:"pageCount" validate:"omitempty,gte=0"`
	ReadPage  *int   `json:"readPage" yaml:"readPage" validate:"omitempty,gte=0"`
	Reading   *bool  `json:"reading" yaml:"reading"`
}

// apply replaces every mutable field of b and recomputes finished.
func (p Payload) apply(b *Book) {
	b.Name = p.Name
	b.Year = cloneInt(p.Year)
	b.Author = p.Author
	b.Summary = p.Summary
	b.Publisher = p.Publisher
	b.PageCount = cloneInt(p.PageCount)
	b.ReadPage = cloneInt(p.ReadPage)
	b.Reading = cloneBool(p.Reading)
	b.Finished = isFinished(p.PageCount, p.ReadPage)
}

// isFinished reports readPage == pageCount. Two absent values compare equal.
func isFinished(pageCount, readPage *int) bool {
	if pageCount == nil || readPage == nil {
		return pageCount == nil && readPage == nil
	}
	return *pageCount == *readPage
}

// Filter narrows a listing. Zero-value fields pass everything.
type Filter struct {
	Name     string
	Reading  *bool
	Finished *bool
}

// Match reports whether b satisfies every set criterion.
func (f Filter) Match(b Book) bool {
	if strings.TrimSpace(f.Name) != "" {
		if !strings.Contains(strings.ToLower(b.Name), strings.ToLower(f.Name)) {
			return false
		}
	}
	if f.Reading != nil {
		if b.Reading == nil || *b.Reading != *f.Reading {
			return false
		}
	}
	if f.Finished != nil && b.Finished != *f.Finished {
		return false
	}
	return true
}

func (b Book) clone() Book {
	out := b
	out.Year = cloneInt(b.Year)
	out.PageCount = cloneInt(b.PageCount)
	out.ReadPage = cloneInt(b.ReadPage)
	out.Reading = cloneBool(b.Reading)
	return out
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}

func cloneBool(v *bool) *bool {
	if v == nil {
		return nil
	}
	b := *v
	return &b
}
