package mechanics

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mechanix-app/mechanix-backend/internal/permissions"
	"github.com/mechanix-app/mechanix-backend/internal/users"
	"github.com/mechanix-app/mechanix-backend/pkg/db/models"
	"github.com/mechanix-app/mechanix-backend/pkg/enums"
	pkgerrors "github.com/mechanix-app/mechanix-backend/pkg/errors"
)

func setupMechanicsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS users (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  phone_number TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  avatar TEXT,
  role TEXT NOT NULL DEFAULT 'user',
  is_active INTEGER NOT NULL DEFAULT 0,
  is_deleted INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME, updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS mechanics (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  description TEXT,
  location TEXT,
  user_id INTEGER NOT NULL UNIQUE,
  created_at DATETIME
);
CREATE TABLE IF NOT EXISTS mechanic_permissions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  key TEXT NOT NULL UNIQUE,
  user_id INTEGER NOT NULL,
  is_used INTEGER NOT NULL DEFAULT 0,
  used_at DATETIME,
  expires_at DATETIME,
  created_at DATETIME
);
`
	require.NoError(t, conn.Exec(schema).Error)

	t.Cleanup(func() {
		conn.Exec("DELETE FROM mechanic_permissions")
		conn.Exec("DELETE FROM mechanics")
		conn.Exec("DELETE FROM users")
	})

	return conn
}

type txConn struct {
	conn *gorm.DB
}

func (c *txConn) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tx := c.conn.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

type fixture struct {
	conn  *gorm.DB
	svc   Service
	users *users.Repository
	perms *permissions.Repository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn := setupMechanicsTestDB(t)
	repo := NewRepository(conn)
	perms := permissions.NewRepository(conn)
	userRepo := users.NewRepository(conn)

	svc, err := NewService(repo, perms, userRepo, &txConn{conn: conn})
	require.NoError(t, err)

	return &fixture{conn: conn, svc: svc, users: userRepo, perms: perms}
}

func (f *fixture) seedUser(t *testing.T, role enums.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		PhoneNumber:  fmt.Sprintf("+1555%07d", time.Now().UnixNano()%10000000),
		PasswordHash: "hash",
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, f.conn.Create(user).Error)
	return user
}

func (f *fixture) seedKey(t *testing.T, userID int64, key string, expiresAt *time.Time) *models.MechanicPermission {
	t.Helper()
	perm := &models.MechanicPermission{Key: key, UserID: userID, ExpiresAt: expiresAt}
	require.NoError(t, f.conn.Create(perm).Error)
	return perm
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	require.Equal(t, code, typed.Code(), "unexpected code for %v", err)
}

func TestCreateMechanicRedeemsKeyAndPromotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user := f.seedUser(t, enums.UserRoleUser)
	perm := f.seedKey(t, user.ID, "valid-key", nil)

	created, err := f.svc.Create(ctx, Actor{UserID: user.ID, Role: user.Role}, CreateInput{
		Name:          "Downtown Garage",
		PermissionKey: "valid-key",
	})
	require.NoError(t, err)
	require.Equal(t, user.ID, created.UserID)

	// Key is burned.
	redeemed, err := f.perms.FindByKey(ctx, "valid-key")
	require.NoError(t, err)
	require.True(t, redeemed.IsUsed)
	require.NotNil(t, redeemed.UsedAt)
	require.Equal(t, perm.ID, redeemed.ID)

	// Account holds the mechanic role.
	promoted, err := f.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, enums.UserRoleMechanic, promoted.Role)

	// The key cannot be redeemed twice.
	other := f.seedUser(t, enums.UserRoleUser)
	_, err = f.svc.Create(ctx, Actor{UserID: other.ID, Role: other.Role}, CreateInput{
		Name:          "Copy Garage",
		PermissionKey: "valid-key",
	})
	requireCode(t, err, pkgerrors.CodeForbidden)
}

func TestCreateMechanicRejectsForeignAndExpiredKeys(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user := f.seedUser(t, enums.UserRoleUser)
	stranger := f.seedUser(t, enums.UserRoleUser)

	f.seedKey(t, stranger.ID, "foreign-key", nil)
	_, err := f.svc.Create(ctx, Actor{UserID: user.ID, Role: user.Role}, CreateInput{
		Name:          "Garage",
		PermissionKey: "foreign-key",
	})
	requireCode(t, err, pkgerrors.CodeForbidden)

	expired := time.Now().Add(-time.Hour)
	f.seedKey(t, user.ID, "expired-key", &expired)
	_, err = f.svc.Create(ctx, Actor{UserID: user.ID, Role: user.Role}, CreateInput{
		Name:          "Garage",
		PermissionKey: "expired-key",
	})
	requireCode(t, err, pkgerrors.CodeForbidden)

	_, err = f.svc.Create(ctx, Actor{UserID: user.ID, Role: user.Role}, CreateInput{
		Name:          "Garage",
		PermissionKey: "no-such-key",
	})
	requireCode(t, err, pkgerrors.CodeForbidden)
}

func TestCreateMechanicOnePerUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user := f.seedUser(t, enums.UserRoleUser)
	f.seedKey(t, user.ID, "first-key", nil)

	_, err := f.svc.Create(ctx, Actor{UserID: user.ID, Role: user.Role}, CreateInput{
		Name:          "Garage",
		PermissionKey: "first-key",
	})
	require.NoError(t, err)

	// Even with a fresh key, a second profile is refused. The account also
	// holds the mechanic role by now, which fails the role guard first.
	f.seedKey(t, user.ID, "second-key", nil)
	_, err = f.svc.Create(ctx, Actor{UserID: user.ID, Role: enums.UserRoleMechanic}, CreateInput{
		Name:          "Second Garage",
		PermissionKey: "second-key",
	})
	requireCode(t, err, pkgerrors.CodeForbidden)
}

func TestDeleteMechanicDemotesOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user := f.seedUser(t, enums.UserRoleUser)
	f.seedKey(t, user.ID, "key", nil)

	created, err := f.svc.Create(ctx, Actor{UserID: user.ID, Role: user.Role}, CreateInput{
		Name:          "Garage",
		PermissionKey: "key",
	})
	require.NoError(t, err)

	// A stranger sees not-found.
	stranger := f.seedUser(t, enums.UserRoleUser)
	err = f.svc.Delete(ctx, Actor{UserID: stranger.ID, Role: stranger.Role}, created.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)

	require.NoError(t, f.svc.Delete(ctx, Actor{UserID: user.ID, Role: enums.UserRoleMechanic}, created.ID))

	demoted, err := f.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, enums.UserRoleUser, demoted.Role)

	_, err = f.svc.Get(ctx, created.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestUpdateMechanicProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user := f.seedUser(t, enums.UserRoleUser)
	f.seedKey(t, user.ID, "key", nil)

	_, err := f.svc.Create(ctx, Actor{UserID: user.ID, Role: user.Role}, CreateInput{
		Name:          "Garage",
		PermissionKey: "key",
	})
	require.NoError(t, err)

	name := "Renamed Garage"
	updated, err := f.svc.Update(ctx, Actor{UserID: user.ID, Role: enums.UserRoleMechanic}, UpdateInput{Name: &name})
	require.NoError(t, err)
	require.Equal(t, name, updated.Name)

	empty := " "
	_, err = f.svc.Update(ctx, Actor{UserID: user.ID, Role: enums.UserRoleMechanic}, UpdateInput{Name: &empty})
	requireCode(t, err, pkgerrors.CodeValidation)
}
