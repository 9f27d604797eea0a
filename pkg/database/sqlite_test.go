package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/staffplan-api/pkg/config"
)

func TestOpenSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.db")
	db, err := Open(config.DatabaseConfig{Driver: config.DriverSQLite, SQLitePath: path})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE people (id TEXT PRIMARY KEY, name TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(db.Rebind(`INSERT INTO people (id, name) VALUES (?, ?)`), "p1", "Ana")
	require.NoError(t, err)

	var name string
	require.NoError(t, db.Get(&name, db.Rebind(`SELECT name FROM people WHERE id = ?`), "p1"))
	assert.Equal(t, "Ana", name)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestNewSQLiteRequiresPath(t *testing.T) {
	_, err := NewSQLite(config.DatabaseConfig{Driver: config.DriverSQLite})
	assert.Error(t, err)
}
