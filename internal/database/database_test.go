package database

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"floryn/internal/models"
)

func openTestDB(t *testing.T) Options {
	t.Helper()
	return Options{
		Driver:       "sqlite",
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", t.Name()),
		MaxOpenConns: 1,
	}
}

func TestOpenAndMigrate(t *testing.T) {
	db, err := Open(openTestDB(t))
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, Migrate(db))

	for _, table := range []string{"users", "products", "reviews", "carts", "orders", "order_items"} {
		assert.True(t, db.Migrator().HasTable(table), "table %s should exist", table)
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(Options{Driver: "oracle", DSN: "x"})
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestDialectorFor_MySQLForcesFoundRows(t *testing.T) {
	dialector, err := dialectorFor("mysql", "floryn:secret@tcp(127.0.0.1:3306)/floryn")
	require.NoError(t, err)
	assert.Equal(t, "mysql", dialector.Name())

	_, err = dialectorFor("mysql", "not a dsn")
	assert.ErrorContains(t, err, "invalid mysql DSN")
}

func TestEnsureAdmin(t *testing.T) {
	db, err := Open(openTestDB(t))
	require.NoError(t, err)
	defer Close(db)
	require.NoError(t, Migrate(db))

	created, err := EnsureAdmin(db, "Admin", "admin@floryn.test", "rahasia1")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = EnsureAdmin(db, "Admin", "admin@floryn.test", "rahasia1")
	require.NoError(t, err)
	assert.False(t, created)

	var admin models.User
	require.NoError(t, db.First(&admin, "email = ?", "admin@floryn.test").Error)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.NotEqual(t, "rahasia1", admin.PasswordHash)

	created, err = EnsureAdmin(db, "Admin", "", "")
	require.NoError(t, err)
	assert.False(t, created)
}
