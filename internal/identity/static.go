package identity

import (
	"context"
	"fmt"
	"strings"

	ierr "restaurant-reviews/internal/errors"
)

const DemoUserId = "demo_user"

// StaticProvider is used without Firebase: every non-empty token belongs to
// DemoUserId and only the configured users exist.
type StaticProvider struct {
	users map[string]Identity
}

var _ IProvider = (*StaticProvider)(nil)

func NewStatic(users ...Identity) *StaticProvider {
	p := &StaticProvider{users: make(map[string]Identity, len(users)+1)}
	p.users[DemoUserId] = Identity{UID: DemoUserId, DisplayName: "Demo User", Email: "demo@example.com"}
	for _, u := range users {
		p.users[u.UID] = u
	}
	return p
}

func (p *StaticProvider) VerifyToken(ctx context.Context, token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", fmt.Errorf("%w: missing token", ierr.Unauthorized)
	}
	return DemoUserId, nil
}

func (p *StaticProvider) LookupUser(ctx context.Context, uid string) (*Identity, error) {
	u, ok := p.users[uid]
	if !ok {
		return nil, fmt.Errorf("lookup user: %w, uid: %s", ierr.NotFound, uid)
	}
	return &u, nil
}
