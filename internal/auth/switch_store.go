package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sarisari/backoffice/internal/memberships"
	pkgAuth "github.com/sarisari/backoffice/pkg/auth"
	"github.com/sarisari/backoffice/pkg/auth/session"
	"github.com/sarisari/backoffice/pkg/config"
	pkgerrors "github.com/sarisari/backoffice/pkg/errors"
	"gorm.io/gorm"
)

// SwitchStoreInput captures the data required to switch stores.
type SwitchStoreInput struct {
	UserID        uuid.UUID
	StoreID       uuid.UUID
	AccessTokenID string
}

// SwitchStoreResult returns the tokens issued after switching stores.
type SwitchStoreResult struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	Store        StoreSummary `json:"store"`
}

type storeLastLoginUpdater interface {
	UpdateLastLoggedInAt(ctx context.Context, storeID uuid.UUID) error
}

type currentStoreUpdater interface {
	UpdateCurrentStore(ctx context.Context, id, storeID uuid.UUID) error
}

type currentUserInvalidator interface {
	Invalidate(ctx context.Context, userID uuid.UUID)
}

type switchMembershipsRepository interface {
	GetMembershipWithStore(ctx context.Context, userID, storeID uuid.UUID) (*memberships.MembershipWithStore, error)
}

type switchSessionRotator interface {
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	RefreshToken(ctx context.Context, accessID string) (string, error)
}

type switchStoreService struct {
	memberships  switchMembershipsRepository
	session      switchSessionRotator
	jwtCfg       config.JWTConfig
	storeUpdater storeLastLoginUpdater
	userUpdater  currentStoreUpdater
	currentUsers currentUserInvalidator
}

// SwitchStoreServiceParams bundles dependencies for the switch flow.
// CurrentUsers is optional.
type SwitchStoreServiceParams struct {
	MembershipsRepo switchMembershipsRepository
	SessionManager  switchSessionRotator
	JWTConfig       config.JWTConfig
	StoreRepo       storeLastLoginUpdater
	UserRepo        currentStoreUpdater
	CurrentUsers    currentUserInvalidator
}

// SwitchStoreService is the interface exposed to the controller.
type SwitchStoreService interface {
	Switch(ctx context.Context, input SwitchStoreInput) (*SwitchStoreResult, error)
}

// NewSwitchStoreService constructs the service.
func NewSwitchStoreService(params SwitchStoreServiceParams) (SwitchStoreService, error) {
	if params.MembershipsRepo == nil {
		return nil, errors.New("memberships repository required")
	}
	if params.SessionManager == nil {
		return nil, errors.New("session manager required")
	}
	if params.StoreRepo == nil {
		return nil, errors.New("store repository required")
	}
	if params.UserRepo == nil {
		return nil, errors.New("user repository required")
	}
	return &switchStoreService{
		memberships:  params.MembershipsRepo,
		session:      params.SessionManager,
		jwtCfg:       params.JWTConfig,
		storeUpdater: params.StoreRepo,
		userUpdater:  params.UserRepo,
		currentUsers: params.CurrentUsers,
	}, nil
}

func (s *switchStoreService) Switch(ctx context.Context, input SwitchStoreInput) (*SwitchStoreResult, error) {
	membership, err := s.memberships.GetMembershipWithStore(ctx, input.UserID, input.StoreID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "store membership required")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup membership")
	}
	if !membership.Status.GrantsAccess() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "store membership inactive")
	}

	refreshToken, err := s.session.RefreshToken(ctx, input.AccessTokenID)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid session")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load refresh token")
	}

	if err := s.userUpdater.UpdateCurrentStore(ctx, input.UserID, input.StoreID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update current store")
	}
	if s.currentUsers != nil {
		s.currentUsers.Invalidate(ctx, input.UserID)
	}
	if err := s.storeUpdater.UpdateLastLoggedInAt(ctx, input.StoreID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update store last login")
	}

	newAccessID, newRefreshToken, err := s.session.Rotate(ctx, input.AccessTokenID, refreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rotate session")
	}

	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID:        input.UserID,
		ActiveStoreID: &input.StoreID,
		Role:          membership.Role,
		JTI:           newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	return &SwitchStoreResult{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		Store: StoreSummary{
			ID:   membership.StoreID,
			Name: membership.StoreName,
			Role: membership.Role,
		},
	}, nil
}
