package tests

import (
	"context"
	"testing"

	"fixflow/internal/config"
	"fixflow/internal/dto"
	"fixflow/internal/model"
	"fixflow/internal/repository"
	"fixflow/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type stubUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	copied := *u
	r.users[u.ID] = &copied
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		// Inactive users cannot log in, mirroring the SQL filter.
		if u.Username == username && u.Active {
			copied := *u
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) ListForOrg(_ context.Context, orgID uuid.UUID, includeInactive bool) ([]model.User, error) {
	var result []model.User
	for _, u := range r.users {
		if u.OrganizationID != orgID {
			continue
		}
		if !u.Active && !includeInactive {
			continue
		}
		result = append(result, *u)
	}
	return result, nil
}

func (r *stubUserRepo) Update(_ context.Context, u *model.User) error {
	stored, ok := r.users[u.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	*stored = *u
	return nil
}

func (r *stubUserRepo) SoftDelete(_ context.Context, orgID, id uuid.UUID) error {
	u, ok := r.users[id]
	if !ok || u.OrganizationID != orgID {
		return gorm.ErrRecordNotFound
	}
	u.Active = false
	return nil
}

func (r *stubUserRepo) Reactivate(_ context.Context, orgID, id uuid.UUID) error {
	u, ok := r.users[id]
	if !ok || u.OrganizationID != orgID {
		return gorm.ErrRecordNotFound
	}
	u.Active = true
	return nil
}

var _ repository.UserRepository = (*stubUserRepo)(nil)

func authConfig() *config.Config {
	return &config.Config{
		JWTSecret:          "unit-test-secret",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
	}
}

func seedUser(t *testing.T, repo *stubUserRepo, username, password string, active bool) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &model.User{
		OrganizationID: uuid.New(),
		BranchID:       uuid.New(),
		Username:       username,
		Name:           "Test User",
		PasswordHash:   string(hash),
		Role:           "technician",
		Active:         active,
	}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestLoginIssuesTokens(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "tech@shop.test", "s3cret", true)
	svc := service.NewAuthService(repo, authConfig())

	resp, err := svc.Login(context.Background(), dto.LoginRequest{
		Username: "tech@shop.test",
		Password: "s3cret",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "tech@shop.test", resp.User.Username)
}

func TestLoginWrongPasswordFails(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "tech@shop.test", "s3cret", true)
	svc := service.NewAuthService(repo, authConfig())

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Username: "tech@shop.test",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestLoginUnknownUserSameError(t *testing.T) {
	repo := newStubUserRepo()
	svc := service.NewAuthService(repo, authConfig())

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Username: "nobody@shop.test",
		Password: "whatever",
	})
	// Unknown user and bad password are indistinguishable to the caller.
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestLoginInactiveUserFails(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "gone@shop.test", "s3cret", false)
	svc := service.NewAuthService(repo, authConfig())

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Username: "gone@shop.test",
		Password: "s3cret",
	})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestRefreshRoundTrip(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "tech@shop.test", "s3cret", true)
	svc := service.NewAuthService(repo, authConfig())

	login, err := svc.Login(context.Background(), dto.LoginRequest{
		Username: "tech@shop.test",
		Password: "s3cret",
	})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Equal(t, "tech@shop.test", refreshed.User.Username)
}

func TestRefreshGarbageTokenFails(t *testing.T) {
	repo := newStubUserRepo()
	svc := service.NewAuthService(repo, authConfig())

	_, err := svc.Refresh(context.Background(), "not-a-jwt")
	assert.Error(t, err)
}

func TestRefreshDeactivatedUserFails(t *testing.T) {
	repo := newStubUserRepo()
	u := seedUser(t, repo, "tech@shop.test", "s3cret", true)
	svc := service.NewAuthService(repo, authConfig())

	login, err := svc.Login(context.Background(), dto.LoginRequest{
		Username: "tech@shop.test",
		Password: "s3cret",
	})
	require.NoError(t, err)

	// Deactivation between issue and refresh invalidates the token.
	require.NoError(t, repo.SoftDelete(context.Background(), u.OrganizationID, u.ID))
	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	assert.Error(t, err)
}
