package cli

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/codalotl/checkdeck/internal/backend"
	"github.com/stretchr/testify/require"
)

func healthServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/health", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestValidateStartupHealthy(t *testing.T) {
	srv := healthServer(t, `{"ok":true,"temp_dir":"/tmp/x","version":"0.5.0"}`)
	cfg := Config{BackendURL: srv.URL}
	require.NoError(t, validateStartup(backend.NewClient(srv.URL), cfg))
}

func TestValidateStartupVersionlessServiceIsAccepted(t *testing.T) {
	srv := healthServer(t, `{"ok":true,"temp_dir":"/tmp/x"}`)
	cfg := Config{BackendURL: srv.URL}
	require.NoError(t, validateStartup(backend.NewClient(srv.URL), cfg))
}

func TestValidateStartupNonSemverVersionIsAccepted(t *testing.T) {
	srv := healthServer(t, `{"ok":true,"version":"nightly"}`)
	cfg := Config{BackendURL: srv.URL}
	require.NoError(t, validateStartup(backend.NewClient(srv.URL), cfg))
}

func TestValidateStartupOldServiceIsRejected(t *testing.T) {
	srv := healthServer(t, `{"ok":true,"version":"0.1.0"}`)
	cfg := Config{BackendURL: srv.URL}

	err := validateStartup(backend.NewClient(srv.URL), cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "reports version 0.1.0")
	require.Contains(t, err.Error(), "requires >= "+minBackendVersion)
}

func TestValidateStartupUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	cfg := Config{BackendURL: baseURL}
	err := validateStartup(backend.NewClient(baseURL), cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Cannot reach the checker service at "+baseURL)
	require.Contains(t, err.Error(), "CHECKDECK_BACKEND")
}
