package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/opsdeck/opsdeck/internal/errors"
	"github.com/opsdeck/opsdeck/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticTokens is a TokenSource with a fixed token.
type staticTokens struct {
	token string
}

func (s staticTokens) Token() (string, bool) {
	return s.token, s.token != ""
}

func newTestClient(url string) *Client {
	return NewClient(url, 5*time.Second, logger.Noop())
}

func TestLoginSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		// Login must never carry a bearer token.
		assert.Empty(t, r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-123","token_type":"bearer","expires_in":1800}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	c.SetTokenSource(staticTokens{token: "stale-token"})

	tokens, err := c.Login(context.Background(), "admin", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", tokens.AccessToken)
	assert.Equal(t, "bearer", tokens.TokenType)
}

func TestLoginRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Incorrect username or password"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Login(context.Background(), "admin", "wrong")
	require.Error(t, err)
	assert.True(t, errors.IsAuth(err))
}

func TestLoginMissingToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"token_type":"bearer"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Login(context.Background(), "admin", "hunter2")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrAPI))
}

func TestBearerTokenAttached(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id":1,"username":"admin","is_admin":true,"is_active":true}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	c.SetTokenSource(staticTokens{token: "tok-123"})

	user, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Username)
	assert.True(t, user.IsAdmin)
}

func TestNoTokenSendsNoHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	c.SetTokenSource(staticTokens{})

	_, err := c.Me(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsAuth(err))
}

func TestUnauthorizedMapsToAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Could not validate credentials"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Overview(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsAuth(err))
}

func TestServerDetailSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"Failed to restart service: unit not found"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).ServiceAction(context.Background(), "nginx", ActionRestart)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrAction))
	assert.Contains(t, err.Error(), "unit not found")
}

func TestServerErrorWithoutDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<html>gateway exploded</html>`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Services(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrAPI))
	assert.Contains(t, err.Error(), "500")
}

func TestOverviewNullMetrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"system_info": {"hostname": "web-01"},
			"current_metrics": null,
			"metrics_history": [],
			"active_alerts": 0
		}`))
	}))
	defer srv.Close()

	overview, err := newTestClient(srv.URL).Overview(context.Background())
	require.NoError(t, err)
	assert.Nil(t, overview.CurrentMetrics)
	assert.Equal(t, "web-01", overview.SystemInfo.Hostname)
}

func TestHistoryEntryMissingFieldsDecodeToZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"metrics_history": [
				{"timestamp": "2026-08-31T10:00:00", "cpu": 42.5},
				{"timestamp": "2026-08-31T10:00:05", "cpu": 40.1, "memory": 61.2, "disk": 70.0}
			]
		}`))
	}))
	defer srv.Close()

	overview, err := newTestClient(srv.URL).Overview(context.Background())
	require.NoError(t, err)
	require.Len(t, overview.MetricsHistory, 2)

	// Absent readings decode to zero; the sample itself survives.
	assert.Equal(t, 42.5, overview.MetricsHistory[0].CPU)
	assert.Zero(t, overview.MetricsHistory[0].Memory)
	assert.Zero(t, overview.MetricsHistory[0].Disk)
	assert.Equal(t, 61.2, overview.MetricsHistory[1].Memory)
}

func TestServicesList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/services/list", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"services": [
				{"name": "nginx", "full_name": "nginx.service", "load_state": "loaded", "active_state": "active", "sub_state": "running", "description": "nginx web server"},
				{"name": "postgresql", "full_name": "postgresql.service", "load_state": "loaded", "active_state": "inactive", "sub_state": "dead", "description": "PostgreSQL database"}
			],
			"count": 2
		}`))
	}))
	defer srv.Close()

	services, err := newTestClient(srv.URL).Services(context.Background())
	require.NoError(t, err)
	require.Len(t, services, 2)
	assert.Equal(t, "nginx", services[0].Name)
	assert.Equal(t, "active", services[0].ActiveState)
	assert.Equal(t, "dead", services[1].SubState)
}

func TestServiceActionPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/services/nginx/restart", r.URL.Path)
		_, _ = w.Write([]byte(`{"message":"Service nginx restart completed successfully","service":"nginx","action":"restart","success":true}`))
	}))
	defer srv.Close()

	result, err := newTestClient(srv.URL).ServiceAction(context.Background(), "nginx", ActionRestart)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "restart", result.Action)
}

func TestPowerCommands(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"message":"System restart initiated","warning":"System will restart in 2 seconds"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)

	msg, err := c.RestartSystem(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/api/system/restart", gotPath)
	assert.Contains(t, msg.Warning, "restart")

	_, err = c.ShutdownSystem(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/api/system/shutdown", gotPath)
}

func TestUnreachableServer(t *testing.T) {
	c := newTestClient("http://127.0.0.1:1")

	_, err := c.Services(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrAPI))
}

func TestContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(srv.URL).Overview(ctx)
	require.Error(t, err)
}
