package model

import (
	"fmt"

	"github.com/google/uuid"
)

// ErrInvalidID is returned for identifiers that are not well-formed.
var ErrInvalidID = fmt.Errorf("%w: malformed identifier", ErrInvalidArgument)

// ParseID parses a client-supplied identifier. The nil UUID is rejected.
func ParseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return id, nil
}
