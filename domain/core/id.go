package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// DrawID identifies one materialized draw.
type DrawID ID

func (id DrawID) String() string { return ID(id).String() }

// NewDrawID creates an identifier for one materialized draw.
func NewDrawID() DrawID {
	return DrawID(NewID())
}

// ParseDrawID parses a string into DrawID
func ParseDrawID(s string) (DrawID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("draw ID cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("draw ID %q is not a UUID: %w", s, err)
	}
	return DrawID(s), nil
}
