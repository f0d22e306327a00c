package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	pkgAuth "github.com/sarisari/backoffice/pkg/auth"
	"github.com/sarisari/backoffice/pkg/cache"
	"github.com/sarisari/backoffice/pkg/db/models"
	pkgerrors "github.com/sarisari/backoffice/pkg/errors"
	"github.com/sarisari/backoffice/pkg/logger"
	"github.com/sarisari/backoffice/pkg/metrics"
	redisclient "github.com/sarisari/backoffice/pkg/redis"
	"gorm.io/gorm"
)

const (
	currentUserCacheName  = "current_user"
	defaultCurrentUserTTL = 60 * time.Second
)

// CurrentUser is the authenticated user as the rest of the API sees it.
type CurrentUser struct {
	ID             uuid.UUID  `json:"id"`
	Email          string     `json:"email"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	CurrentStoreID *uuid.UUID `json:"current_store_id"`
}

type userLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// CurrentUserResolver loads the caller named by the request's access token,
// reading through a short-lived Redis copy.
type CurrentUserResolver struct {
	users userLookup
	cache *cache.JSON[CurrentUser]
}

// CurrentUserResolverParams bundles the resolver dependencies. KV may be nil
// to disable caching.
type CurrentUserResolverParams struct {
	Users   userLookup
	KV      redisclient.KV
	TTL     time.Duration
	Metrics *metrics.CacheMetrics
	Logger  *logger.Logger
}

func NewCurrentUserResolver(params CurrentUserResolverParams) (*CurrentUserResolver, error) {
	if params.Users == nil {
		return nil, fmt.Errorf("user repository required")
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = defaultCurrentUserTTL
	}
	resolver := &CurrentUserResolver{users: params.Users}
	if params.KV != nil {
		resolver.cache = cache.NewJSON[CurrentUser](params.KV, currentUserCacheName, ttl, params.Metrics, params.Logger)
	}
	return resolver, nil
}

// CurrentUserKey is the Redis key of userID's cached profile.
func CurrentUserKey(userID uuid.UUID) string {
	return redisclient.BuildKey(currentUserCacheName, userID.String())
}

// CurrentUser returns the authenticated user. Anonymous requests and
// unknown or deactivated users are unauthorized.
func (r *CurrentUserResolver) CurrentUser(ctx context.Context) (*CurrentUser, error) {
	identity, ok := pkgAuth.IdentityFromContext(ctx)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	key := CurrentUserKey(identity.UserID)
	if cached, hit := r.cache.Get(ctx, key); hit {
		return cached, nil
	}

	user, err := r.users.FindByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load current user")
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user is inactive")
	}

	current := &CurrentUser{
		ID:             user.ID,
		Email:          user.Email,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		CurrentStoreID: user.CurrentStoreID,
	}
	r.cache.Set(ctx, key, current)
	return current, nil
}

// Invalidate drops userID's cached profile.
func (r *CurrentUserResolver) Invalidate(ctx context.Context, userID uuid.UUID) {
	r.cache.Del(ctx, CurrentUserKey(userID))
}
