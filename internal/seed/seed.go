// Package seed imports book fixtures into a running registry.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"bookshelf/internal/book"

	"gopkg.in/yaml.v3"
)

// Creator is the part of book.Service used for seeding.
type Creator interface {
	Create(ctx context.Context, p book.Payload) (string, error)
}

// Fixture is the on-disk seed document.
type Fixture struct {
	Books []book.Payload `yaml:"books"`
}

// Result summarises an Apply run.
type Result struct {
	Created  []string
	Rejected int
}

// LoadFile reads a YAML fixture from path.
func LoadFile(path string) ([]book.Payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML fixture.
func Parse(data []byte) ([]book.Payload, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return f.Books, nil
}

// Apply creates every payload through c. Payloads that fail validation are
// logged and skipped; any other error stops the run.
func Apply(ctx context.Context, c Creator, payloads []book.Payload, logger *slog.Logger) (Result, error) {
	var res Result
	for i, p := range payloads {
		id, err := c.Create(ctx, p)
		if err != nil {
			if ve, ok := book.IsValidation(err); ok {
				res.Rejected++
				logger.Warn("seed entry rejected", slog.Int("index", i), slog.String("name", p.Name), slog.String("reason", ve.Error()))
				continue
			}
			return res, fmt.Errorf("seed entry %d: %w", i, err)
		}
		res.Created = append(res.Created, id)
	}
	return res, nil
}
