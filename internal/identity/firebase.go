package identity

import (
	"context"
	"fmt"

	ierr "restaurant-reviews/internal/errors"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/rs/zerolog/log"
)

type FirebaseProvider struct {
	client *auth.Client
}

var _ IProvider = (*FirebaseProvider)(nil)

func NewFirebase(ctx context.Context, app *firebase.App) (*FirebaseProvider, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth client: %w", err)
	}
	return &FirebaseProvider{client: client}, nil
}

func (p *FirebaseProvider) VerifyToken(ctx context.Context, token string) (string, error) {
	decoded, err := p.client.VerifyIDTokenAndCheckRevoked(ctx, token)
	if err != nil {
		log.Debug().Err(err).Msg("identity: rejected id token")
		return "", fmt.Errorf("%w: invalid token", ierr.Unauthorized)
	}
	return decoded.UID, nil
}

func (p *FirebaseProvider) LookupUser(ctx context.Context, uid string) (*Identity, error) {
	record, err := p.client.GetUser(ctx, uid)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return nil, fmt.Errorf("lookup user: %w, uid: %s", ierr.NotFound, uid)
		}
		return nil, fmt.Errorf("lookup user: %w, uid: %s", err, uid)
	}

	return &Identity{
		UID:         record.UID,
		DisplayName: record.DisplayName,
		Email:       record.Email,
	}, nil
}
