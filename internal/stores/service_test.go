package stores

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sarisari/backoffice/pkg/db/models"
	"github.com/sarisari/backoffice/pkg/enums"
	pkgerrors "github.com/sarisari/backoffice/pkg/errors"
	"gorm.io/gorm"
)

func TestNewServiceRequiresRepo(t *testing.T) {
	_, err := NewService(nil, stubMembershipsRepo{})
	if err == nil {
		t.Fatal("expected error creating service without repo")
	}
}

func TestNewServiceRequiresMembershipRepo(t *testing.T) {
	_, err := NewService(&stubStoreRepo{}, nil)
	if err == nil {
		t.Fatal("expected error creating service without memberships repo")
	}
}

func TestServiceGetByIDSuccess(t *testing.T) {
	store := baseStore()
	svc, err := NewService(&stubStoreRepo{store: store}, stubMembershipsRepo{allowed: true})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	dto, err := svc.GetByID(context.Background(), store.ID)
	if err != nil {
		t.Fatalf("get store: %v", err)
	}
	if dto.ID != store.ID {
		t.Fatalf("expected id %s got %s", store.ID, dto.ID)
	}
	if dto.Name != store.Name {
		t.Fatalf("expected name %s got %s", store.Name, dto.Name)
	}
	if dto.OwnerID != store.OwnerID {
		t.Fatalf("expected owner %s got %s", store.OwnerID, dto.OwnerID)
	}
}

func TestServiceGetByIDNotFound(t *testing.T) {
	svc, err := NewService(&stubStoreRepo{err: gorm.ErrRecordNotFound}, stubMembershipsRepo{allowed: true})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, gotErr := svc.GetByID(context.Background(), uuid.New())
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found code, got %v", gotErr)
	}
}

func TestServiceGetByIDDependencyError(t *testing.T) {
	svc, err := NewService(&stubStoreRepo{err: errors.New("boom")}, stubMembershipsRepo{allowed: true})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, gotErr := svc.GetByID(context.Background(), uuid.New())
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", gotErr)
	}
}

func TestServiceUpdateSuccess(t *testing.T) {
	store := baseStore()
	repo := &stubStoreRepo{store: store}
	svc, err := NewService(repo, stubMembershipsRepo{allowed: true})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	dto, err := svc.Update(context.Background(), uuid.New(), store.ID, UpdateStoreInput{Name: stringPtr("  Sari-Sari ni Ka Pedring ")})
	if err != nil {
		t.Fatalf("update store: %v", err)
	}
	if dto.Name != "Sari-Sari ni Ka Pedring" {
		t.Fatalf("expected trimmed name, got %q", dto.Name)
	}
	if repo.updated == nil || repo.updated.Name != dto.Name {
		t.Fatalf("expected store persisted, got %+v", repo.updated)
	}
}

func TestServiceUpdateValidation(t *testing.T) {
	for _, name := range []string{"   ", strings.Repeat("x", maxStoreNameLength+1)} {
		svc, err := NewService(&stubStoreRepo{store: baseStore()}, stubMembershipsRepo{allowed: true})
		if err != nil {
			t.Fatalf("new service: %v", err)
		}
		_, gotErr := svc.Update(context.Background(), uuid.New(), uuid.New(), UpdateStoreInput{Name: stringPtr(name)})
		if !pkgerrors.HasCode(gotErr, pkgerrors.CodeValidation) {
			t.Fatalf("expected validation error for %q, got %v", name, gotErr)
		}
	}
}

func TestServiceUpdateForbidden(t *testing.T) {
	svc, err := NewService(&stubStoreRepo{store: baseStore()}, stubMembershipsRepo{allowed: false})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, gotErr := svc.Update(context.Background(), uuid.New(), uuid.New(), UpdateStoreInput{})
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden code, got %v", gotErr)
	}
}

func TestServiceUpdatePersistFailure(t *testing.T) {
	repo := &stubStoreRepo{store: baseStore(), updateErr: errors.New("db down")}
	svc, err := NewService(repo, stubMembershipsRepo{allowed: true})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, gotErr := svc.Update(context.Background(), uuid.New(), uuid.New(), UpdateStoreInput{Name: stringPtr("x")})
	if !pkgerrors.HasCode(gotErr, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", gotErr)
	}
}

func baseStore() *models.Store {
	return &models.Store{
		ID:        uuid.New(),
		Name:      "Tindahan ni Aling Nena",
		OwnerID:   uuid.New(),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

type stubStoreRepo struct {
	store     *models.Store
	err       error
	updateErr error
	updated   *models.Store
}

func (s *stubStoreRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	return s.store, s.err
}

func (s *stubStoreRepo) Update(ctx context.Context, store *models.Store) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updated = store
	return nil
}

type stubMembershipsRepo struct {
	allowed bool
	err     error
}

func (s stubMembershipsRepo) UserHasRole(ctx context.Context, userID, storeID uuid.UUID, roles ...enums.MemberRole) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.allowed, nil
}

func stringPtr(s string) *string { return &s }
