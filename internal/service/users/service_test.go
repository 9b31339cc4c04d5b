package users

import (
	"context"
	"errors"
	"testing"

	ierr "restaurant-reviews/internal/errors"
	"restaurant-reviews/internal/identity"
	"restaurant-reviews/internal/model"
	userRepository "restaurant-reviews/internal/repository/user"
	"restaurant-reviews/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUserRepo struct {
	mock.Mock
}

var _ userRepository.IRepository = (*mockUserRepo)(nil)

func (m *mockUserRepo) GetById(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *mockUserRepo) Create(ctx context.Context, id string, data model.User) error {
	return m.Called(ctx, id, data).Error(0)
}

func (m *mockUserRepo) Merge(ctx context.Context, id string, data model.User) error {
	return m.Called(ctx, id, data).Error(0)
}

func (m *mockUserRepo) IncrementReviewCount(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockUserRepo) AddFavorite(ctx context.Context, id string, reviewId string) error {
	return m.Called(ctx, id, reviewId).Error(0)
}

func (m *mockUserRepo) RemoveFavorite(ctx context.Context, id string, reviewId string) error {
	return m.Called(ctx, id, reviewId).Error(0)
}

func TestService_GetOrCreate(t *testing.T) {
	ctx := context.Background()
	provider := identity.NewStatic(
		identity.Identity{UID: "user1", DisplayName: "John Doe", Email: "john@example.com"},
		identity.Identity{UID: "nameless", Email: "x@example.com"},
	)

	tests := []struct {
		name          string
		userId        string
		prepareMocks  func(repo *mockUserRepo)
		expectedName  string
		expectedError error
	}{
		{
			name:   "stored_user",
			userId: "user1",
			prepareMocks: func(repo *mockUserRepo) {
				repo.On("GetById", ctx, "user1").Return(&model.User{Id: utils.Ptr("user1"), Name: utils.Ptr("Stored")}, nil)
			},
			expectedName: "Stored",
		},
		{
			name:   "known_to_identity_provider",
			userId: "user1",
			prepareMocks: func(repo *mockUserRepo) {
				repo.On("GetById", ctx, "user1").Return(nil, ierr.NotFound)
				repo.On("Create", ctx, "user1", mock.MatchedBy(func(u model.User) bool {
					return *u.Name == "John Doe" && *u.Email == "john@example.com" &&
						len(u.Favorites) == 0 && u.Favorites != nil && *u.ReviewCount == 0 && !u.CreatedAt.IsZero()
				})).Return(nil)
			},
			expectedName: "John Doe",
		},
		{
			name:   "provider_without_display_name",
			userId: "nameless",
			prepareMocks: func(repo *mockUserRepo) {
				repo.On("GetById", ctx, "nameless").Return(nil, ierr.NotFound)
				repo.On("Create", ctx, "nameless", mock.Anything).Return(nil)
			},
			expectedName: defaultUserName,
		},
		{
			name:   "unknown_everywhere",
			userId: "ghost",
			prepareMocks: func(repo *mockUserRepo) {
				repo.On("GetById", ctx, "ghost").Return(nil, ierr.NotFound)
			},
			expectedError: ierr.NotFound,
		},
		{
			name:   "store_failure",
			userId: "user1",
			prepareMocks: func(repo *mockUserRepo) {
				repo.On("GetById", ctx, "user1").Return(nil, errors.New("unavailable"))
			},
			expectedError: errors.New("unavailable"),
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			repo := &mockUserRepo{}
			testCase.prepareMocks(repo)
			service := New(repo, provider)

			user, err := service.GetOrCreate(ctx, testCase.userId)
			if testCase.expectedError != nil {
				require.Error(t, err)
				if errors.Is(testCase.expectedError, ierr.NotFound) {
					assert.ErrorIs(t, err, ierr.NotFound)
				} else {
					assert.EqualError(t, err, testCase.expectedError.Error())
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, testCase.expectedName, *user.Name)
				assert.Equal(t, testCase.userId, *user.Id)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestService_UpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("other_user_is_forbidden", func(t *testing.T) {
		repo := &mockUserRepo{}
		service := New(repo, identity.NewStatic())

		err := service.UpdateProfile(ctx, "u1", "u2", model.User{Name: utils.Ptr("Mallory")})
		assert.ErrorIs(t, err, ierr.Forbidden)
		repo.AssertNotCalled(t, "Merge", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("strips_owned_fields", func(t *testing.T) {
		repo := &mockUserRepo{}
		repo.On("Merge", ctx, "u1", model.User{Name: utils.Ptr("John")}).Return(nil)
		service := New(repo, identity.NewStatic())

		err := service.UpdateProfile(ctx, "u1", "u1", model.User{
			Name:        utils.Ptr("John"),
			Email:       utils.Ptr("spoof@example.com"),
			ReviewCount: utils.Ptr(999),
		})
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})
}

func TestService_Favorites(t *testing.T) {
	ctx := context.Background()
	repo := userRepository.NewMemory()
	service := New(repo, identity.NewStatic())

	assert.ErrorIs(t, service.AddFavorite(ctx, "u1", ""), ierr.InvalidArgument)

	// no caller check on add
	require.NoError(t, service.AddFavorite(ctx, "u1", "r1"))
	require.NoError(t, service.AddFavorite(ctx, "u1", "r1"))
	require.NoError(t, service.AddFavorite(ctx, "u1", "r2"))

	user, err := repo.GetById(ctx, "u1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"r1", "r2"}, user.Favorites)

	assert.ErrorIs(t, service.RemoveFavorite(ctx, "u1", "u2", "r1"), ierr.Forbidden)

	require.NoError(t, service.RemoveFavorite(ctx, "u1", "u1", "r1"))
	require.NoError(t, service.RemoveFavorite(ctx, "u1", "u1", "absent"))

	user, err = repo.GetById(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"r2"}, user.Favorites)

	assert.ErrorIs(t, service.RemoveFavorite(ctx, "ghost", "ghost", "r1"), ierr.NotFound)
}
