package service_test

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/virendrasuryawanshi09/ratings-website/internal/model"
	"github.com/virendrasuryawanshi09/ratings-website/internal/repository"
	"github.com/virendrasuryawanshi09/ratings-website/internal/service"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]*model.User{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) (uuid.UUID, error) {
	id := uuid.New()
	stored := *user
	stored.ID = id
	f.users[id] = &stored
	return id, nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	u, ok := f.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeUserRepo) Count(ctx context.Context) (int, error) {
	return len(f.users), nil
}

func (f *fakeUserRepo) CountByRole(ctx context.Context, role string) (int, error) {
	count := 0
	for _, u := range f.users {
		if u.Role == role {
			count++
		}
	}
	return count, nil
}

func (f *fakeUserRepo) List(ctx context.Context, params repository.ListUsersParams) (*repository.UserPage, error) {
	users := []model.User{}
	for _, u := range f.users {
		users = append(users, *u)
	}
	return &repository.UserPage{Data: users, Total: len(users), Limit: params.Limit, Offset: params.Offset}, nil
}

func newAuthService(repo repository.UserRepository) service.AuthService {
	return service.NewAuthService(repo, noopPublisher{})
}

func TestAuthService_RegisterUser_DefaultsToUserRole(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	svc := newAuthService(newFakeUserRepo())
	user, err := svc.RegisterUser(context.Background(), "Alice", "alice@test.com", "GoodPass1!", "1 Main St")
	require.NoError(t, err)
	require.Equal(t, model.RoleUser, user.Role)
	require.NotEqual(t, uuid.Nil, user.ID)

	// Plaintext never stored
	require.NotEqual(t, "GoodPass1!", user.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("GoodPass1!")))
}

func TestAuthService_Login_UniformInvalidCredentials(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	repo := newFakeUserRepo()
	svc := newAuthService(repo)
	_, err := svc.RegisterUser(context.Background(), "Alice", "alice@test.com", "GoodPass1!", "")
	require.NoError(t, err)

	// Wrong password and unknown email fail identically
	_, _, err = svc.LoginUser(context.Background(), "alice@test.com", "WrongPass1!")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, _, err = svc.LoginUser(context.Background(), "nobody@test.com", "GoodPass1!")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestAuthService_Login_IssuesToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	svc := newAuthService(newFakeUserRepo())
	_, err := svc.RegisterUser(context.Background(), "Alice", "alice@test.com", "GoodPass1!", "")
	require.NoError(t, err)

	token, user, err := svc.LoginUser(context.Background(), "Alice@Test.com", "GoodPass1!")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, "alice@test.com", user.Email)
}

func TestAuthService_BootstrapAdmin_OneShot(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ADMIN_BOOTSTRAP_SECRET", "launch-code")

	svc := newAuthService(newFakeUserRepo())

	_, err := svc.BootstrapAdmin(context.Background(), "Root", "root@test.com", "GoodPass1!", "", "wrong-code")
	require.ErrorIs(t, err, service.ErrBadBootstrapSecret)

	admin, err := svc.BootstrapAdmin(context.Background(), "Root", "root@test.com", "GoodPass1!", "", "launch-code")
	require.NoError(t, err)
	require.Equal(t, model.RoleAdmin, admin.Role)

	// Second attempt fails even with the correct secret
	_, err = svc.BootstrapAdmin(context.Background(), "Root2", "root2@test.com", "GoodPass1!", "", "launch-code")
	require.ErrorIs(t, err, service.ErrAdminAlreadyExists)
}

func TestAuthService_UpdatePassword(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ADMIN_BOOTSTRAP_SECRET", "launch-code")

	repo := newFakeUserRepo()
	svc := newAuthService(repo)

	user, err := svc.RegisterUser(context.Background(), "Alice", "alice@test.com", "GoodPass1!", "")
	require.NoError(t, err)

	err = svc.UpdatePassword(context.Background(), user.ID, "WrongPass1!", "NextPass1!")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)

	err = svc.UpdatePassword(context.Background(), user.ID, "GoodPass1!", "NextPass1!")
	require.NoError(t, err)

	_, _, err = svc.LoginUser(context.Background(), "alice@test.com", "NextPass1!")
	require.NoError(t, err)

	// Admins are excluded from self-service password change
	admin, err := svc.BootstrapAdmin(context.Background(), "Root", "root@test.com", "GoodPass1!", "", "launch-code")
	require.NoError(t, err)

	err = svc.UpdatePassword(context.Background(), admin.ID, "GoodPass1!", "NextPass1!")
	require.ErrorIs(t, err, service.ErrAdminPasswordChange)
}
