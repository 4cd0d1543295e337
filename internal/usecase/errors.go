package usecase

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/hszk-dev/vidvault/internal/domain/model"
)

// ErrSignInRequired is returned when an operation needs a viewer identity
// and the request is anonymous.
var ErrSignInRequired = fmt.Errorf("%w: sign in required", model.ErrUnauthenticated)

func requireViewer(id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrSignInRequired
	}
	return nil
}
