package identity

import (
	"context"
	"testing"

	ierr "restaurant-reviews/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticProvider(t *testing.T) {
	ctx := context.Background()
	p := NewStatic(Identity{UID: "user1", DisplayName: "John Doe", Email: "john@example.com"})

	uid, err := p.VerifyToken(ctx, "anything")
	require.NoError(t, err)
	assert.Equal(t, DemoUserId, uid)

	_, err = p.VerifyToken(ctx, " ")
	assert.ErrorIs(t, err, ierr.Unauthorized)

	u, err := p.LookupUser(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, "John Doe", u.DisplayName)

	_, err = p.LookupUser(ctx, DemoUserId)
	assert.NoError(t, err)

	_, err = p.LookupUser(ctx, "ghost")
	assert.ErrorIs(t, err, ierr.NotFound)
}
