package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarisari/backoffice/api/controllers"
	"github.com/sarisari/backoffice/internal/auth"
	"github.com/sarisari/backoffice/internal/earnings"
	"github.com/sarisari/backoffice/internal/stores"
	pkgAuth "github.com/sarisari/backoffice/pkg/auth"
	"github.com/sarisari/backoffice/pkg/config"
	"github.com/sarisari/backoffice/pkg/db/dbtest"
	"github.com/sarisari/backoffice/pkg/enums"
	"github.com/sarisari/backoffice/pkg/metrics"
	pkgredis "github.com/sarisari/backoffice/pkg/redis"
)

var manila = time.FixedZone("PHT", 8*60*60)

type fakeRedis struct {
	data     map[string]string
	counters map[string]int64
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, counters: map[string]int64{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) (string, error) {
	v, ok := f.data[key]
	if !ok {
		return "", pkgredis.Nil
	}
	return v, nil
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.data[key] = fmt.Sprint(value)
	return nil
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeRedis) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	f.data[key] = fmt.Sprint(value)
	return true, nil
}

func (f *fakeRedis) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	f.counters[key]++
	return f.counters[key], nil
}

func (f *fakeRedis) IdempotencyKey(scope, id string) string {
	return pkgredis.BuildKey("idem", scope, id)
}

type stubSessions struct{}

func (stubSessions) HasSession(context.Context, string) (bool, error) { return true, nil }

func (stubSessions) Rotate(context.Context, string, string) (string, string, error) {
	return "", "", nil
}

func (stubSessions) Revoke(context.Context, string) error { return nil }

// identityResolver mirrors the token's active store, like the real resolver
// does for a user whose current store matches the token.
type identityResolver struct{}

func (identityResolver) CurrentUser(ctx context.Context) (*auth.CurrentUser, error) {
	id, ok := pkgAuth.IdentityFromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("no identity")
	}
	return &auth.CurrentUser{ID: id.UserID, CurrentStoreID: id.ActiveStoreID}, nil
}

// stubMemberships holds the caller's live role; empty means no membership.
type stubMemberships struct{ role enums.MemberRole }

func (s stubMemberships) UserHasRole(_ context.Context, _, _ uuid.UUID, roles ...enums.MemberRole) (bool, error) {
	for _, r := range roles {
		if s.role != "" && r == s.role {
			return true, nil
		}
	}
	return false, nil
}

type stubStores struct{}

func (stubStores) GetByID(_ context.Context, id uuid.UUID) (*stores.StoreDTO, error) {
	return &stores.StoreDTO{ID: id, Name: "Aling Nena Store"}, nil
}

func (stubStores) Update(_ context.Context, _ uuid.UUID, storeID uuid.UUID, in stores.UpdateStoreInput) (*stores.StoreDTO, error) {
	return &stores.StoreDTO{ID: storeID, Name: *in.Name}, nil
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return fmt.Errorf("connection refused") }

type testEnv struct {
	handler http.Handler
	cfg     *config.Config
	redis   *fakeRedis
	reg     *prometheus.Registry
}

func newTestEnv(t *testing.T, liveRole enums.MemberRole) *testEnv {
	t.Helper()
	cfg := &config.Config{
		App: config.AppConfig{Env: "dev", CORSAllowedOrigins: []string{"http://localhost:3000"}},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "sarisari", ExpirationMinutes: 15},
	}
	kv := newFakeRedis()
	reg := prometheus.NewRegistry()

	svc, err := earnings.NewService(earnings.NewRepository(dbtest.Open(t), manila), identityResolver{}, nil)
	require.NoError(t, err)

	handler := NewRouter(Deps{
		Config:        cfg,
		Location:      manila,
		Gatherer:      reg,
		HTTPMetrics:   metrics.NewHTTPMetrics(reg),
		Readiness:     map[string]controllers.Pinger{"redis": failingPinger{}},
		Redis:         kv,
		Sessions:      stubSessions{},
		CurrentUser:   identityResolver{},
		StoreService:  stubStores{},
		Memberships:   stubMemberships{role: liveRole},
		Earnings:      svc,
		EarningsCache: earnings.NewCache(kv, earnings.CacheOptions{}, nil, nil),
	})
	return &testEnv{handler: handler, cfg: cfg, redis: kv, reg: reg}
}

func (e *testEnv) token(t *testing.T, storeID *uuid.UUID, role enums.MemberRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(e.cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:        uuid.New(),
		ActiveStoreID: storeID,
		Role:          role,
	})
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(method, target, token, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Code       string          `json:"code"`
	Data       json.RawMessage `json:"data"`
	Pagination *struct {
		Total int64 `json:"total"`
	} `json:"pagination"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestHealthRoutes(t *testing.T) {
	env := newTestEnv(t, enums.MemberRoleOwner)

	rec := env.do(http.MethodGet, "/health/live", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dev", rec.Header().Get("X-Sarisari-Env"))

	rec = env.do(http.MethodGet, "/health/ready", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.False(t, decode(t, rec).Success)
}

func TestMetricsEndpointExportsRequestDurations(t *testing.T) {
	env := newTestEnv(t, enums.MemberRoleOwner)
	env.do(http.MethodGet, "/health/live", "", "")

	rec := env.do(http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_request_duration_seconds")
	assert.Contains(t, rec.Body.String(), `route="/health/live"`)
}

func TestEarningRoutesRequireAuth(t *testing.T) {
	env := newTestEnv(t, enums.MemberRoleOwner)
	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete} {
		rec := env.do(method, "/api/v1/gcash-earning", "", `{}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, method)
	}
}

func TestEarningFlowThroughRouter(t *testing.T) {
	env := newTestEnv(t, enums.MemberRoleOwner)
	storeID := uuid.New()
	token := env.token(t, &storeID, enums.MemberRoleOwner)

	rec := env.do(http.MethodPost, "/api/v1/gcash-earning", token, `{"amount":250.50}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(http.MethodPost, "/api/v1/gcash-earning", token, `{"amount":100}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, earnings.MsgDuplicateCreate, decode(t, rec).Message)

	rec = env.do(http.MethodGet, "/api/v1/gcash-earning?page=1&limit=15", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	require.NotNil(t, decode(t, rec).Pagination)
	assert.Equal(t, int64(1), decode(t, rec).Pagination.Total)

	rec = env.do(http.MethodGet, "/api/v1/gcash-earning?page=1&limit=15", token, "")
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))

	other := uuid.New()
	rec = env.do(http.MethodGet, "/api/v1/gcash-earning", env.token(t, &other, enums.MemberRoleOwner), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(0), decode(t, rec).Pagination.Total, "stores never see each other's records")
}

func TestEarningWithoutStore(t *testing.T) {
	env := newTestEnv(t, enums.MemberRoleOwner)
	rec := env.do(http.MethodGet, "/api/v1/gcash-earning", env.token(t, nil, ""), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, earnings.MsgNoStore, decode(t, rec).Message)
}

func TestEarningCreateReplaysIdempotentRequest(t *testing.T) {
	env := newTestEnv(t, enums.MemberRoleOwner)
	storeID := uuid.New()
	token := env.token(t, &storeID, enums.MemberRoleOwner)

	first := env.do(http.MethodPost, "/api/v1/gcash-earning", token, `{"amount":50}`, "Idempotency-Key", "abc-123")
	require.Equal(t, http.StatusCreated, first.Code)

	replay := env.do(http.MethodPost, "/api/v1/gcash-earning", token, `{"amount":50}`, "Idempotency-Key", "abc-123")
	assert.Equal(t, http.StatusCreated, replay.Code, "replayed instead of hitting the one-per-day rule")
	assert.JSONEq(t, first.Body.String(), replay.Body.String())

	changed := env.do(http.MethodPost, "/api/v1/gcash-earning", token, `{"amount":60}`, "Idempotency-Key", "abc-123")
	assert.Equal(t, http.StatusConflict, changed.Code)
}

func TestStoreUpdateRequiresManagerRole(t *testing.T) {
	storeID := uuid.New()

	env := newTestEnv(t, enums.MemberRoleMember)
	rec := env.do(http.MethodPut, "/api/v1/stores/me", env.token(t, &storeID, enums.MemberRoleMember), `{"name":"New Name"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(http.MethodGet, "/api/v1/stores/me", env.token(t, &storeID, enums.MemberRoleMember), "")
	assert.Equal(t, http.StatusOK, rec.Code)

	env = newTestEnv(t, enums.MemberRoleOwner)
	rec = env.do(http.MethodPut, "/api/v1/stores/me", env.token(t, &storeID, enums.MemberRoleOwner), `{"name":"New Name"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStoreRoutesRefuseRemovedMembership(t *testing.T) {
	storeID := uuid.New()
	env := newTestEnv(t, "")

	rec := env.do(http.MethodGet, "/api/v1/stores/me", env.token(t, &storeID, enums.MemberRoleOwner), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "store membership inactive", decode(t, rec).Message)
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t, enums.MemberRoleOwner)
	rec := env.do(http.MethodOptions, "/api/v1/gcash-earning", "", "",
		"Origin", "http://localhost:3000",
		"Access-Control-Request-Method", http.MethodPost,
	)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
