package auth

import (
	"context"

	"github.com/Matheesha-Abiman/EasyInvoice/internal/models"
)

// Authenticator defines the interface for identity-provider implementations.
// This abstraction allows swapping between different auth methods (password,
// OAuth, a hosted identity service, etc.) without changing the session layer.
type Authenticator interface {
	// Register creates a new user account with the given email and credential.
	// Returns the created user or an error if registration fails.
	Register(ctx context.Context, email, credential string) (*models.User, error)

	// Authenticate verifies the user's credentials and returns the user if successful.
	// Returns an error if authentication fails.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}
