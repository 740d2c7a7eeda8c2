package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lkral/courier/internal/repository/sqlite"
	"github.com/lkral/courier/internal/service"
)

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()

	ctx := context.Background()
	db, err := sqlite.NewDB(ctx, sqlite.DefaultConfig(":memory:"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(ctx))

	userRepo := sqlite.NewUserRepository(db)
	msgRepo := sqlite.NewMessageRepository(db)

	userService := service.NewUserService(userRepo, zerolog.Nop())
	messageService := service.NewMessageService(userRepo, msgRepo, zerolog.Nop())

	router := NewRouter(RouterConfig{
		AccountHandler: NewAccountHandler(userService, zerolog.Nop()),
		MessageHandler: NewMessageHandler(messageService, zerolog.Nop()),
		Metrics:        NewMetrics(),
		DB:             db,
		Logger:         zerolog.Nop(),
	})

	srv := httptest.NewServer(router.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, srv *httptest.Server, method, path string, body interface{}, user, pass string) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.SetBasicAuth(user, pass)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func createAccount(t *testing.T, srv *httptest.Server, username, password string) {
	t.Helper()
	resp := doJSON(t, srv, http.MethodPost, "/api/accounts", map[string]string{
		"username": username,
		"password": password,
	}, "", "")
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestAccountAPI(t *testing.T) {
	srv := setupServer(t)

	t.Run("create", func(t *testing.T) {
		resp := doJSON(t, srv, http.MethodPost, "/api/accounts", map[string]string{
			"username": "alice",
			"password": "pw12345678",
		}, "", "")
		defer resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var account struct {
			ID       int64  `json:"id"`
			Username string `json:"username"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&account))
		assert.Equal(t, "alice", account.Username)
		assert.Greater(t, account.ID, int64(0))
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		resp := doJSON(t, srv, http.MethodPost, "/api/accounts", map[string]string{
			"username": "alice",
			"password": "pw12345678",
		}, "", "")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("short password rejected", func(t *testing.T) {
		resp := doJSON(t, srv, http.MethodPost, "/api/accounts", map[string]string{
			"username": "bob",
			"password": "short",
		}, "", "")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("edit password", func(t *testing.T) {
		resp := doJSON(t, srv, http.MethodPut, "/api/accounts/alice/password", map[string]string{
			"password": "pw99999999",
		}, "", "")
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		// Old password must no longer open the inbox.
		old := doJSON(t, srv, http.MethodGet, "/api/messages", nil, "alice", "pw12345678")
		defer old.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, old.StatusCode)

		fresh := doJSON(t, srv, http.MethodGet, "/api/messages", nil, "alice", "pw99999999")
		defer fresh.Body.Close()
		assert.Equal(t, http.StatusOK, fresh.StatusCode)
	})

	t.Run("list", func(t *testing.T) {
		resp := doJSON(t, srv, http.MethodGet, "/api/accounts", nil, "", "")
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var accounts []struct {
			Username string `json:"username"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&accounts))
		require.Len(t, accounts, 1)
		assert.Equal(t, "alice", accounts[0].Username)
	})
}

func TestAccountAPI_Delete(t *testing.T) {
	srv := setupServer(t)
	createAccount(t, srv, "alice", "pw12345678")
	createAccount(t, srv, "mallory", "pw12345678")

	t.Run("wrong password", func(t *testing.T) {
		resp := doJSON(t, srv, http.MethodDelete, "/api/accounts/alice", nil, "alice", "wrongpass")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("missing credentials", func(t *testing.T) {
		resp := doJSON(t, srv, http.MethodDelete, "/api/accounts/alice", nil, "", "")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("other account's credentials", func(t *testing.T) {
		resp := doJSON(t, srv, http.MethodDelete, "/api/accounts/alice", nil, "mallory", "pw12345678")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("success", func(t *testing.T) {
		resp := doJSON(t, srv, http.MethodDelete, "/api/accounts/alice", nil, "alice", "pw12345678")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		gone := doJSON(t, srv, http.MethodGet, "/api/messages", nil, "alice", "pw12345678")
		defer gone.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, gone.StatusCode)
	})
}

func TestMessageAPI(t *testing.T) {
	srv := setupServer(t)
	createAccount(t, srv, "alice", "pw12345678")
	createAccount(t, srv, "bob", "pw87654321")

	t.Run("send requires valid credentials", func(t *testing.T) {
		resp := doJSON(t, srv, http.MethodPost, "/api/messages", map[string]string{
			"to": "bob", "text": "hello",
		}, "alice", "wrongpass")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unknown sender is indistinguishable from bad password", func(t *testing.T) {
		resp := doJSON(t, srv, http.MethodPost, "/api/messages", map[string]string{
			"to": "bob", "text": "hello",
		}, "ghost", "pw12345678")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unknown recipient", func(t *testing.T) {
		resp := doJSON(t, srv, http.MethodPost, "/api/messages", map[string]string{
			"to": "ghost", "text": "hello",
		}, "alice", "pw12345678")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("send and read", func(t *testing.T) {
		resp := doJSON(t, srv, http.MethodPost, "/api/messages", map[string]string{
			"to": "bob", "text": "hello bob",
		}, "alice", "pw12345678")
		defer resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		inbox := doJSON(t, srv, http.MethodGet, "/api/messages", nil, "bob", "pw87654321")
		defer inbox.Body.Close()
		require.Equal(t, http.StatusOK, inbox.StatusCode)

		var messages []struct {
			From string `json:"from"`
			Text string `json:"text"`
		}
		require.NoError(t, json.NewDecoder(inbox.Body).Decode(&messages))
		require.Len(t, messages, 1)
		assert.Equal(t, "alice", messages[0].From)
		assert.Equal(t, "hello bob", messages[0].Text)

		// The sender's inbox stays empty.
		own := doJSON(t, srv, http.MethodGet, "/api/messages", nil, "alice", "pw12345678")
		defer own.Body.Close()
		require.Equal(t, http.StatusOK, own.StatusCode)

		var ownMessages []json.RawMessage
		require.NoError(t, json.NewDecoder(own.Body).Decode(&ownMessages))
		assert.Empty(t, ownMessages)
	})
}

func TestHealthAndMetrics(t *testing.T) {
	srv := setupServer(t)

	resp, err := srv.Client().Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	metrics, err := srv.Client().Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer metrics.Body.Close()
	assert.Equal(t, http.StatusOK, metrics.StatusCode)
}
