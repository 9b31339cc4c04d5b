package identity

import (
	"context"
)

// Identity is what the identity provider knows about a subject.
type Identity struct {
	UID         string
	DisplayName string
	Email       string
}

type IProvider interface {
	// VerifyToken returns the subject of a valid bearer token, or an error wrapping ierr.Unauthorized.
	VerifyToken(ctx context.Context, token string) (string, error)
	// LookupUser returns an error wrapping ierr.NotFound for unknown subjects.
	LookupUser(ctx context.Context, uid string) (*Identity, error)
}
