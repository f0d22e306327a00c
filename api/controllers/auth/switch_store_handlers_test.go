package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/sarisari/backoffice/internal/auth"
	authpkg "github.com/sarisari/backoffice/pkg/auth"
	"github.com/sarisari/backoffice/pkg/enums"
	pkgerrors "github.com/sarisari/backoffice/pkg/errors"
)

type stubSwitchService struct {
	lastInput auth.SwitchStoreInput
	result    *auth.SwitchStoreResult
	err       error
}

func (s *stubSwitchService) Switch(ctx context.Context, input auth.SwitchStoreInput) (*auth.SwitchStoreResult, error) {
	s.lastInput = input
	return s.result, s.err
}

func authenticated(req *http.Request, userID uuid.UUID, accessID string) *http.Request {
	return req.WithContext(authpkg.WithIdentity(req.Context(), authpkg.Identity{
		UserID:   userID,
		Role:     enums.MemberRoleOwner,
		AccessID: accessID,
	}))
}

func TestAuthSwitchStoreSuccess(t *testing.T) {
	userID := uuid.New()
	storeID := uuid.New()
	service := &stubSwitchService{
		result: &auth.SwitchStoreResult{
			AccessToken:  "new-token",
			RefreshToken: "new-refresh",
			Store: auth.StoreSummary{
				ID:   storeID,
				Name: "Aling Nena Store",
				Role: enums.MemberRoleOwner,
			},
		},
	}

	body := []byte(`{"store_id":"` + storeID.String() + `"}`)
	req := authenticated(httptest.NewRequest(http.MethodPost, "/switch-store", bytes.NewReader(body)), userID, "old-jti")
	rec := httptest.NewRecorder()

	AuthSwitchStore(service, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if service.lastInput.UserID != userID || service.lastInput.StoreID != storeID || service.lastInput.AccessTokenID != "old-jti" {
		t.Fatalf("unexpected input %+v", service.lastInput)
	}
	var envelope struct {
		Success bool                   `json:"success"`
		Data    auth.SwitchStoreResult `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Success || envelope.Data.AccessToken != "new-token" || envelope.Data.RefreshToken != "new-refresh" {
		t.Fatalf("unexpected envelope %+v", envelope)
	}
}

func TestAuthSwitchStoreForbidden(t *testing.T) {
	service := &stubSwitchService{err: pkgerrors.New(pkgerrors.CodeForbidden, "no membership")}

	body := []byte(`{"store_id":"` + uuid.NewString() + `"}`)
	req := authenticated(httptest.NewRequest(http.MethodPost, "/switch-store", bytes.NewReader(body)), uuid.New(), "jti")
	rec := httptest.NewRecorder()

	AuthSwitchStore(service, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}
}

func TestAuthSwitchStoreRejectsBadStoreID(t *testing.T) {
	service := &stubSwitchService{}
	req := authenticated(httptest.NewRequest(http.MethodPost, "/switch-store", bytes.NewReader([]byte(`{"store_id":"nope"}`))), uuid.New(), "jti")
	rec := httptest.NewRecorder()

	AuthSwitchStore(service, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if service.lastInput.UserID != uuid.Nil {
		t.Fatalf("service must not be called")
	}
}

func TestAuthSwitchStoreRequiresIdentity(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/switch-store", bytes.NewReader([]byte(`{"store_id":"`+uuid.NewString()+`"}`)))
	rec := httptest.NewRecorder()

	AuthSwitchStore(&stubSwitchService{}, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}
