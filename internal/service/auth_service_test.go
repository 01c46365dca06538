package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/flexfit/gym-api/internal/models"
)

type mockAuthRepo struct {
	users   map[string]*models.User
	byEmail map[string]string
	tokens  map[string]*models.RefreshToken
	revoked []string
}

func newMockAuthRepo(t *testing.T) *mockAuthRepo {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	owner := &models.User{
		ID: "u1", GymID: "gym-1", Email: "owner@flexfit.test",
		PasswordHash: string(hash), FullName: "Owner", Role: models.RoleOwner, Active: true,
	}
	return &mockAuthRepo{
		users:   map[string]*models.User{"u1": owner},
		byEmail: map[string]string{owner.Email: "u1"},
		tokens:  map[string]*models.RefreshToken{},
	}
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if id, ok := m.byEmail[email]; ok {
		cp := *m.users[id]
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := m.users[id]; ok {
		cp := *user
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	return nil
}

func (m *mockAuthRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	return nil
}

func (m *mockAuthRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	cp := *token
	m.tokens[token.Token] = &cp
	return nil
}

func (m *mockAuthRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if rt, ok := m.tokens[token]; ok {
		cp := *rt
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	m.revoked = append(m.revoked, id)
	for _, rt := range m.tokens {
		if rt.ID == id {
			rt.Revoked = true
		}
	}
	return nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "gym-api-test",
	}
}

func TestAuthLoginIssuesTokens(t *testing.T) {
	repo := newMockAuthRepo(t)
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "owner@flexfit.test", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "gym-1", resp.User.GymID)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "gym-1", claims.GymID)
	assert.Equal(t, models.RoleOwner, claims.Role)
}

func TestAuthLoginRejectsBadPassword(t *testing.T) {
	repo := newMockAuthRepo(t)
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "owner@flexfit.test", Password: "wrong"})
	require.Error(t, err)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "nobody@flexfit.test", Password: "secret123"})
	require.Error(t, err)
}

func TestAuthRefreshRotatesToken(t *testing.T) {
	repo := newMockAuthRepo(t)
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "owner@flexfit.test", Password: "secret123"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)
	assert.NotEmpty(t, repo.revoked, "used refresh token must be revoked")

	// The revoked token cannot be replayed.
	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
}

func TestAuthValidateTokenRejectsGarbage(t *testing.T) {
	svc := NewAuthService(newMockAuthRepo(t), nil, nil, testAuthConfig())
	_, err := svc.ValidateToken("not-a-jwt")
	require.Error(t, err)
}
