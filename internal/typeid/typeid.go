package typeid

import (
	"fmt"

	"go.jetify.com/typeid/v2"

	"github.com/EvegeniyNekrasov/Nexo/internal/document"
)

const (
	PrefixRect    = "rect"
	PrefixSession = "sess"
)

func New(prefix string) string {
	id := typeid.MustGenerate(prefix)
	return id.String()
}

func NewSessionID() string { return New(PrefixSession) }

// NewShapeID returns a fresh id whose prefix names the shape kind.
func NewShapeID(kind document.ShapeKind) string {
	switch kind {
	case document.ShapeKindRect:
		return New(PrefixRect)
	default:
		return New(string(kind))
	}
}

func Validate(id, expectedPrefix string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid typeid %q: %w", id, err)
	}
	if parsed.Prefix() != expectedPrefix {
		return fmt.Errorf("expected prefix %q but got %q in id %q", expectedPrefix, parsed.Prefix(), id)
	}
	return nil
}
