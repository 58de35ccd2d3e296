package auth

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rechargehub/cardflow/internal/domain"
)

type fakeUserRepo struct {
	users  map[string]*domain.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	user, ok := r.users[email]
	if !ok {
		return nil, sql.ErrNoRows
	}

	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (int64, error) {
	r.nextID++
	copied := *user
	copied.ID = r.nextID
	r.users[user.Email] = &copied
	return r.nextID, nil
}

func testService() *Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(newFakeUserRepo(), "test-secret", log)
}

func TestService_RegisterAndLogin(t *testing.T) {
	svc := testService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, "user@example.com", "s3cret-pass", "Marie")
	require.NoError(t, err)
	assert.NotEmpty(t, registered.Token)
	assert.Equal(t, "user@example.com", registered.User.Email)
	assert.Equal(t, "Marie", registered.User.Name)
	assert.NotZero(t, registered.User.ID)

	loggedIn, err := svc.Login(ctx, "user@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)
	assert.NotEmpty(t, loggedIn.Token)
}

func TestService_RegisterDuplicate(t *testing.T) {
	svc := testService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "user@example.com", "s3cret-pass", "")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "user@example.com", "other-pass", "")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestService_LoginFailures(t *testing.T) {
	svc := testService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "user@example.com", "s3cret-pass", "")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "user@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "unknown@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_ParseToken(t *testing.T) {
	svc := testService()
	ctx := context.Background()

	result, err := svc.Register(ctx, "user@example.com", "s3cret-pass", "Marie")
	require.NoError(t, err)

	claims, err := svc.ParseToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, "Marie", claims.Name)

	_, err = svc.ParseToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// A token signed with a different secret is rejected.
	other := NewService(newFakeUserRepo(), "other-secret", nil)
	otherResult, err := other.Register(ctx, "x@example.com", "pass-123", "")
	require.NoError(t, err)

	_, err = svc.ParseToken(otherResult.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
