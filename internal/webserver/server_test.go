package webserver

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mangleddev/behaviorlab/internal/orchestration"
	"github.com/mangleddev/behaviorlab/internal/store"
	"github.com/mangleddev/behaviorlab/internal/webapi"
)

func TestNew_DefaultsAndRoutes(t *testing.T) {
	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	orch := orchestration.New(st, nil, nil, nil)
	handlers := webapi.NewHandlers(st, orch, nil)

	srv := New(Config{}, handlers)
	require.Equal(t, "127.0.0.1:3000", srv.srv.Addr)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/health", nil)
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, 200, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestNew_CustomPort(t *testing.T) {
	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	handlers := webapi.NewHandlers(st, orchestration.New(st, nil, nil, nil), nil)
	srv := New(Config{Port: 4242}, handlers)
	require.Equal(t, "127.0.0.1:4242", srv.srv.Addr)
}
