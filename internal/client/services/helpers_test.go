package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/authdesk/internal/client/client"
	"github.com/dmitrijs2005/authdesk/internal/client/client/clienttest"
	"github.com/dmitrijs2005/authdesk/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/authdesk/internal/common"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// ---- helpers ----

type env struct {
	srv     *clienttest.Server
	api     *client.HTTPClient
	store   metadata.Repository
	session *SessionManager
}

func setupStore(t *testing.T) metadata.Repository {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, client.RunMigrations(context.Background(), db))
	return metadata.NewSQLiteRepository(db)
}

func newEnv(t *testing.T) *env {
	t.Helper()
	return newEnvWithStore(t, setupStore(t))
}

func newEnvWithStore(t *testing.T, store metadata.Repository) *env {
	t.Helper()
	srv := clienttest.NewServer(t)
	api, err := client.NewHTTPClient(srv.URL, client.WithTimeout(5*time.Second))
	require.NoError(t, err)
	t.Cleanup(func() { _ = api.Close() })

	return &env{
		srv:     srv,
		api:     api,
		store:   store,
		session: NewSessionManager(api, store, nil),
	}
}

func storedCredential(t *testing.T, store metadata.Repository) string {
	t.Helper()
	v, err := store.Get(context.Background(), common.CredentialKey)
	require.NoError(t, err)
	return string(v)
}

// interceptorActive reports whether the API client still attaches a
// credential on its own.
func (e *env) interceptorActive(t *testing.T) bool {
	t.Helper()
	_, err := e.api.Me(context.Background())
	if err == nil {
		return true
	}
	require.ErrorIs(t, err, client.ErrUnauthorized)
	return false
}

// ---- fake store ----

// faultyStore wraps a Repository and fails selected operations.
type faultyStore struct {
	metadata.Repository
	GetErr    error
	SetErr    error
	DeleteErr error
}

func (f *faultyStore) Get(ctx context.Context, key string) ([]byte, error) {
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	return f.Repository.Get(ctx, key)
}

func (f *faultyStore) Set(ctx context.Context, key string, value []byte) error {
	if f.SetErr != nil {
		return f.SetErr
	}
	return f.Repository.Set(ctx, key, value)
}

func (f *faultyStore) Delete(ctx context.Context, key string) error {
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	return f.Repository.Delete(ctx, key)
}

var errDisk = errors.New("disk I/O error")
