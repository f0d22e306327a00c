package auth

import (
	"context"
	"testing"

	"github.com/sarisari/backoffice/internal/memberships"
	"github.com/sarisari/backoffice/internal/users"
	"github.com/sarisari/backoffice/pkg/config"
	"github.com/sarisari/backoffice/pkg/db"
	"github.com/sarisari/backoffice/pkg/db/dbtest"
	"github.com/sarisari/backoffice/pkg/db/models"
	"github.com/sarisari/backoffice/pkg/enums"
	pkgerrors "github.com/sarisari/backoffice/pkg/errors"
	"github.com/sarisari/backoffice/pkg/security"
	"github.com/stretchr/testify/require"
)

func validRegisterRequest() RegisterRequest {
	return RegisterRequest{
		FirstName: "Nena",
		LastName:  "Reyes",
		Email:     "Nena@Example.com",
		Password:  "tindahan-123",
		StoreName: "  Tindahan ni Aling Nena ",
	}
}

func TestRegisterCreatesUserStoreAndOwnerMembership(t *testing.T) {
	conn := dbtest.Open(t)
	svc, err := NewRegisterService(RegisterServiceParams{DB: db.FromGorm(conn), PasswordConfig: config.PasswordConfig{}})
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, validRegisterRequest()))

	user, err := users.NewRepository(conn).FindByEmail(ctx, "nena@example.com")
	require.NoError(t, err)
	require.True(t, user.IsActive)
	require.NotNil(t, user.CurrentStoreID)

	ok, err := security.VerifyPassword("tindahan-123", user.PasswordHash)
	require.NoError(t, err)
	require.True(t, ok)

	var store models.Store
	require.NoError(t, conn.First(&store, "id = ?", *user.CurrentStoreID).Error)
	require.Equal(t, "Tindahan ni Aling Nena", store.Name)
	require.Equal(t, user.ID, store.OwnerID)

	membership, err := memberships.NewRepository(conn).GetMembership(ctx, user.ID, store.ID)
	require.NoError(t, err)
	require.Equal(t, enums.MemberRoleOwner, membership.Role)
	require.Equal(t, enums.MembershipStatusActive, membership.Status)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	conn := dbtest.Open(t)
	svc, err := NewRegisterService(RegisterServiceParams{DB: db.FromGorm(conn)})
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, validRegisterRequest()))

	again := validRegisterRequest()
	again.Email = "nena@example.com"
	again.StoreName = "Second"
	err = svc.Register(ctx, again)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict), "got %v", err)

	var storeCount int64
	require.NoError(t, conn.Model(&models.Store{}).Count(&storeCount).Error)
	require.Equal(t, int64(1), storeCount, "rolled back")
}

func TestRegisterValidation(t *testing.T) {
	svc, err := NewRegisterService(RegisterServiceParams{DB: db.FromGorm(dbtest.Open(t))})
	require.NoError(t, err)

	req := validRegisterRequest()
	req.Email = "   "
	require.True(t, pkgerrors.HasCode(svc.Register(context.Background(), req), pkgerrors.CodeValidation))

	req = validRegisterRequest()
	req.StoreName = " "
	require.True(t, pkgerrors.HasCode(svc.Register(context.Background(), req), pkgerrors.CodeValidation))

	_, err = NewRegisterService(RegisterServiceParams{})
	require.Error(t, err)
}
