package main

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wfmuser/internal/config"
	"wfmuser/internal/hashing"
	"wfmuser/internal/models"
	"wfmuser/internal/repositories"
	"wfmuser/internal/services"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func testConfig(t *testing.T) config.Config {
	t.Helper()

	seedFile := filepath.Join(t.TempDir(), "users.json")
	fixtures := `[
		{"id": "rJeXyfdrH", "username": "daisy", "name": "Daisy Dialer", "password": "Password1"},
		{"id": "B1r71fOBr", "username": "trever", "name": "Trever Smith", "password": "Password1"}
	]`
	require.NoError(t, os.WriteFile(seedFile, []byte(fixtures), 0o600))

	return config.Config{
		AppPort:                   ":0",
		APIPath:                   "/api/wfm/user",
		SeedFile:                  seedFile,
		HashAlgorithm:             "bcrypt",
		BcryptCost:                4,
		BackoffBaseDelay:          time.Millisecond,
		AuthResponseExclusionList: []string{"password"},
	}
}

func TestBuildStore_SeedsFromFile(t *testing.T) {
	cfg := testConfig(t)

	store, err := buildStore(cfg)
	require.NoError(t, err)

	users := store.List()
	require.Len(t, users, 2)
	assert.Equal(t, "daisy", users[0].Username)
	assert.Empty(t, users[0].PasswordHash)

	ok, err := store.VerifyPassword("trever", "Password1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestBuildStore_Errors(t *testing.T) {
	cfg := testConfig(t)
	cfg.HashAlgorithm = "md5"
	_, err := buildStore(cfg)
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.SeedFile = filepath.Join(t.TempDir(), "missing.json")
	_, err = buildStore(cfg)
	assert.Error(t, err)
}

func TestBuildStore_SeedsFromDatabase(t *testing.T) {
	cfg := testConfig(t)
	cfg.SeedFile = ""
	cfg.SeedDatabaseDriver = "sqlite"
	cfg.SeedDatabaseDSN = filepath.Join(t.TempDir(), "seed.db")

	db, err := repositories.OpenDatabase(cfg.SeedDatabaseDriver, cfg.SeedDatabaseDSN)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.SeedUser{}))
	hashed, err := hashing.NewBcrypt(cfg.BcryptCost).Hash("Password1")
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.SeedUser{ID: "SyVXyMuSr", Username: "max", Name: "Max Power", PasswordHash: hashed}).Error)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	store, err := buildStore(cfg)
	require.NoError(t, err)
	users := store.List()
	require.Len(t, users, 1)
	assert.Equal(t, "max", users[0].Username)

	ok, err := store.VerifyPassword("max", "Password1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewApp_Routes(t *testing.T) {
	cfg := testConfig(t)
	store, err := buildStore(cfg)
	require.NoError(t, err)
	app := newApp(cfg, store, services.NewAuthService(store, cfg.AuthResponseExclusionList))

	// --- Health ---
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var health map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	resp.Body.Close()
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, false, health["rabbitMQ"])

	// --- Auth is not shadowed by /:id ---
	req := httptest.NewRequest(http.MethodPost, cfg.APIPath+"/auth",
		strings.NewReader(`{"username":"daisy","password":"Password1"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// --- Users ---
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, cfg.APIPath+"/rJeXyfdrH", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Contains(t, string(raw), `"username":"daisy"`)
	assert.NotContains(t, string(raw), "$2a$")

	// Routes live under the API path only.
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/rJeXyfdrH", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
