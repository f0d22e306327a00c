package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sarisari/backoffice/internal/memberships"
	pkgAuth "github.com/sarisari/backoffice/pkg/auth"
	"github.com/sarisari/backoffice/pkg/config"
	"github.com/sarisari/backoffice/pkg/db/models"
	"github.com/sarisari/backoffice/pkg/enums"
	pkgerrors "github.com/sarisari/backoffice/pkg/errors"
	"github.com/sarisari/backoffice/pkg/security"
	"gorm.io/gorm"
)

var testJWTConfig = config.JWTConfig{
	Secret:                 "secret",
	Issuer:                 "sarisari",
	ExpirationMinutes:      30,
	RefreshTokenTTLMinutes: 60,
}

func TestServiceLoginUsesCurrentStore(t *testing.T) {
	password := "tindahan-123"
	storeA, storeB := uuid.New(), uuid.New()
	user := activeUser(t, password)
	user.CurrentStoreID = &storeB

	svc, deps := buildTestService(t, user, []memberships.MembershipWithStore{
		{StoreID: storeA, StoreName: "A", Role: enums.MemberRoleMember, Status: enums.MembershipStatusActive},
		{StoreID: storeB, StoreName: "B", Role: enums.MemberRoleOwner, Status: enums.MembershipStatusActive},
	})

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "  Nena@Example.com ", Password: password})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.ActiveStoreID == nil || *claims.ActiveStoreID != storeB {
		t.Fatalf("expected active store %s, got %v", storeB, claims.ActiveStoreID)
	}
	if claims.Role != enums.MemberRoleOwner {
		t.Fatalf("expected owner role claim, got %s", claims.Role)
	}
	if claims.ID != deps.session.lastAccessID {
		t.Fatalf("expected refresh token bound to jti %s, got %s", claims.ID, deps.session.lastAccessID)
	}
	if resp.RefreshToken != "refresh-token" {
		t.Fatalf("unexpected refresh token %q", resp.RefreshToken)
	}
	if len(resp.Stores) != 2 {
		t.Fatalf("expected 2 stores, got %d", len(resp.Stores))
	}
	if deps.users.lookedUp != "nena@example.com" {
		t.Fatalf("expected normalized email lookup, got %q", deps.users.lookedUp)
	}
	if deps.users.currentStoreUpdates != 0 {
		t.Fatalf("current store already valid, expected no update")
	}
	if user.LastLoginAt == nil {
		t.Fatal("expected last login recorded")
	}
}

func TestServiceLoginFallsBackToFirstMembership(t *testing.T) {
	password := "tindahan-123"
	store := uuid.New()
	user := activeUser(t, password)

	svc, deps := buildTestService(t, user, []memberships.MembershipWithStore{
		{StoreID: store, StoreName: "Only", Role: enums.MemberRoleAdmin, Status: enums.MembershipStatusActive},
	})

	resp, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: password})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.ActiveStoreID == nil || *resp.ActiveStoreID != store {
		t.Fatalf("expected active store %s, got %v", store, resp.ActiveStoreID)
	}
	if deps.users.currentStoreUpdates != 1 {
		t.Fatalf("expected current store persisted once, got %d", deps.users.currentStoreUpdates)
	}
	if resp.User.CurrentStoreID == nil || *resp.User.CurrentStoreID != store {
		t.Fatalf("expected user dto to carry the current store")
	}
}

func TestServiceLoginWithoutStore(t *testing.T) {
	password := "tindahan-123"
	user := activeUser(t, password)
	svc, _ := buildTestService(t, user, nil)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: password})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.ActiveStoreID != nil || claims.Role != "" {
		t.Fatalf("expected no store claims, got %v/%s", claims.ActiveStoreID, claims.Role)
	}
}

func TestServiceLoginRejectsBadCredentials(t *testing.T) {
	password := "tindahan-123"

	cases := map[string]func(*models.User) (string, string){
		"wrong password": func(u *models.User) (string, string) { return u.Email, "nope" },
		"blank email":    func(u *models.User) (string, string) { return "  ", password },
		"inactive user": func(u *models.User) (string, string) {
			u.IsActive = false
			return u.Email, password
		},
	}
	for name, prepare := range cases {
		t.Run(name, func(t *testing.T) {
			user := activeUser(t, password)
			email, pw := prepare(user)
			svc, _ := buildTestService(t, user, nil)
			_, err := svc.Login(context.Background(), LoginRequest{Email: email, Password: pw})
			if !pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized) {
				t.Fatalf("expected unauthorized, got %v", err)
			}
			if typed := pkgerrors.As(err); typed.Message() != invalidCredentialsMessage {
				t.Fatalf("unexpected message %q", typed.Message())
			}
		})
	}
}

func TestServiceLoginUnknownEmail(t *testing.T) {
	svc, deps := buildTestService(t, nil, nil)
	deps.users.err = gorm.ErrRecordNotFound

	_, err := svc.Login(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "whatever1"})
	if !pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	deps.users.err = errors.New("db down")
	_, err = svc.Login(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "whatever1"})
	if !pkgerrors.HasCode(err, pkgerrors.CodeInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	if _, err := NewService(ServiceParams{}); err == nil {
		t.Fatal("expected error without dependencies")
	}
}

type testDeps struct {
	users   *stubUserRepo
	session *stubSessionManager
}

func buildTestService(t *testing.T, user *models.User, stores []memberships.MembershipWithStore) (Service, testDeps) {
	t.Helper()
	deps := testDeps{
		users:   &stubUserRepo{user: user},
		session: &stubSessionManager{refreshToken: "refresh-token"},
	}
	svc, err := NewService(ServiceParams{
		UserRepo:        deps.users,
		MembershipsRepo: stubMembershipsRepo{stores: stores},
		SessionManager:  deps.session,
		JWTConfig:       testJWTConfig,
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, deps
}

func activeUser(t *testing.T, password string) *models.User {
	t.Helper()
	return &models.User{
		ID:           uuid.New(),
		Email:        "nena@example.com",
		PasswordHash: mustHashPassword(t, password),
		FirstName:    "Nena",
		LastName:     "Reyes",
		IsActive:     true,
	}
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

type stubUserRepo struct {
	user                *models.User
	err                 error
	lookedUp            string
	currentStoreUpdates int
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	s.lookedUp = email
	if s.err != nil {
		return nil, s.err
	}
	if s.user == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

func (s *stubUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if s.user != nil && s.user.ID == id {
		s.user.LastLoginAt = &at
	}
	return nil
}

func (s *stubUserRepo) UpdateCurrentStore(ctx context.Context, id, storeID uuid.UUID) error {
	s.currentStoreUpdates++
	return nil
}

type stubMembershipsRepo struct {
	stores []memberships.MembershipWithStore
	err    error
}

func (s stubMembershipsRepo) ListUserStores(ctx context.Context, userID uuid.UUID) ([]memberships.MembershipWithStore, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.stores, nil
}

type stubSessionManager struct {
	refreshToken string
	lastAccessID string
}

func (s *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	s.lastAccessID = accessID
	return s.refreshToken, nil
}
