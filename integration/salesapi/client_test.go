package salesapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fieldkit/core/autologout"
	"github.com/dmitrymomot/fieldkit/core/session"
	"github.com/dmitrymomot/fieldkit/integration/salesapi"
)

func newClient(t *testing.T, baseURL string, opts ...salesapi.ClientOption) *salesapi.Client {
	t.Helper()
	client, err := salesapi.New(salesapi.Config{
		BaseURL:        baseURL,
		RequestTimeout: 5 * time.Second,
	}, opts...)
	require.NoError(t, err)
	return client
}

func envelopeOK(data string) string {
	return `{"meta":{"code":200,"status":"success","message":"OK"},"data":` + data + `}`
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("rejects an empty base URL", func(t *testing.T) {
		t.Parallel()

		_, err := salesapi.New(salesapi.Config{})
		assert.ErrorIs(t, err, salesapi.ErrEmptyBaseURL)
	})

	t.Run("trims a trailing slash", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/user", r.URL.Path)
			_, _ = w.Write([]byte(envelopeOK(`{"id":"1"}`)))
		}))
		t.Cleanup(srv.Close)

		client := newClient(t, srv.URL+"/")
		_, err := client.CurrentUser(context.Background(), "tok")
		require.NoError(t, err)
	})
}

func TestClient_Login(t *testing.T) {
	t.Parallel()

	t.Run("sends the login payload and decodes the auth result", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/user/login", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "2.3.0", body["version"])
			assert.Equal(t, "appdev", body["username"])
			assert.Equal(t, "password", body["password"])
			assert.Equal(t, "notif-1", body["notif_id"])

			_, _ = w.Write([]byte(envelopeOK(`{
				"access_token": "tok1",
				"token_type": "bearer",
				"user": {"id":"1","username":"appdev","role":{"id":"r1","permissions":[{"name":"visit:create"}]}}
			}`)))
		}))
		t.Cleanup(srv.Close)

		client := newClient(t, srv.URL)
		res, err := client.Login(context.Background(), session.LoginRequest{
			Version:  "2.3.0",
			Username: "appdev",
			Password: "password",
			NotifID:  "notif-1",
		})
		require.NoError(t, err)

		assert.Equal(t, "tok1", res.AccessToken)
		assert.Equal(t, "bearer", res.TokenType)
		require.NotNil(t, res.User)
		assert.Equal(t, "appdev", res.User.Username)
		require.NotNil(t, res.User.Role)
		assert.Equal(t, "visit:create", res.User.Role.Permissions[0].Name)
		assert.NotEmpty(t, res.Raw)
	})

	t.Run("backend rejection carries the message verbatim", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"meta":{"code":422,"status":"error","message":"These credentials do not match our records."}}`))
		}))
		t.Cleanup(srv.Close)

		client := newClient(t, srv.URL)
		_, err := client.Login(context.Background(), session.LoginRequest{Username: "appdev"})
		require.Error(t, err)

		var apiErr *salesapi.Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 422, apiErr.Code)
		assert.Equal(t, "These credentials do not match our records.", apiErr.Error())
		assert.False(t, apiErr.IsUnauthorized())
	})

	t.Run("rejection without a message falls back to a generic one", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"meta":{"code":500,"status":"error"}}`))
		}))
		t.Cleanup(srv.Close)

		client := newClient(t, srv.URL)
		_, err := client.Login(context.Background(), session.LoginRequest{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "500")
	})

	t.Run("transport failures are wrapped with ErrRequestFailed", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close() // connection refused from now on

		client := newClient(t, srv.URL)
		_, err := client.Login(context.Background(), session.LoginRequest{})
		assert.ErrorIs(t, err, salesapi.ErrRequestFailed)
	})
}

func TestClient_AutoLogout(t *testing.T) {
	t.Parallel()

	t.Run("meta code 401 invokes the bridge before returning", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"meta":{"code":401,"status":"error","message":"Unauthenticated."}}`))
		}))
		t.Cleanup(srv.Close)

		var invoked atomic.Int32
		bridge := autologout.New()
		bridge.Set(func(ctx context.Context) { invoked.Add(1) })

		client := newClient(t, srv.URL, salesapi.WithBridge(bridge))
		_, err := client.CurrentUser(context.Background(), "stale-token")
		require.Error(t, err)

		var apiErr *salesapi.Error
		require.ErrorAs(t, err, &apiErr)
		assert.True(t, apiErr.IsUnauthorized())
		assert.Equal(t, int32(1), invoked.Load())
	})

	t.Run("bare HTTP 401 without an envelope also invokes the bridge", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
		}))
		t.Cleanup(srv.Close)

		var invoked atomic.Int32
		bridge := autologout.New()
		bridge.Set(func(ctx context.Context) { invoked.Add(1) })

		client := newClient(t, srv.URL, salesapi.WithBridge(bridge))
		_, err := client.CurrentUser(context.Background(), "stale-token")
		require.Error(t, err)
		assert.Equal(t, int32(1), invoked.Load())
	})

	t.Run("the logout request never invokes the bridge", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"meta":{"code":401,"status":"error","message":"Unauthenticated."}}`))
		}))
		t.Cleanup(srv.Close)

		var invoked atomic.Int32
		bridge := autologout.New()
		bridge.Set(func(ctx context.Context) { invoked.Add(1) })

		client := newClient(t, srv.URL, salesapi.WithBridge(bridge))
		err := client.Logout(context.Background(), "stale-token")
		require.Error(t, err)
		assert.Equal(t, int32(0), invoked.Load())
	})

	t.Run("works without a bridge configured", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"meta":{"code":401,"status":"error","message":"Unauthenticated."}}`))
		}))
		t.Cleanup(srv.Close)

		client := newClient(t, srv.URL)
		_, err := client.CurrentUser(context.Background(), "stale-token")
		require.Error(t, err)
	})
}

func TestClient_Logout(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/logout", r.URL.Path)
		assert.Equal(t, "Bearer tok1", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(envelopeOK(`null`)))
	}))
	t.Cleanup(srv.Close)

	client := newClient(t, srv.URL)
	require.NoError(t, client.Logout(context.Background(), "tok1"))
}

func TestClient_CurrentUser(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/user", r.URL.Path)
		assert.Equal(t, "Bearer tok1", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(envelopeOK(`{"id":"1","username":"appdev","phone":"+620000000001"}`)))
	}))
	t.Cleanup(srv.Close)

	client := newClient(t, srv.URL)
	user, err := client.CurrentUser(context.Background(), "tok1")
	require.NoError(t, err)
	assert.Equal(t, "appdev", user.Username)
	assert.Equal(t, "+620000000001", user.Phone)
}

func TestClient_OTP(t *testing.T) {
	t.Parallel()

	t.Run("request passes the ack payload through untouched", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/user/send-otp", r.URL.Path)
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "+620000000001", body["phone"])
			_, _ = w.Write([]byte(envelopeOK(`{"expires_in":300,"channel":"sms"}`)))
		}))
		t.Cleanup(srv.Close)

		client := newClient(t, srv.URL)
		ack, err := client.RequestOTP(context.Background(), "+620000000001")
		require.NoError(t, err)
		assert.JSONEq(t, `{"expires_in":300,"channel":"sms"}`, string(ack))
	})

	t.Run("verification sends phone, otp, and notif_id", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/user/verify-otp", r.URL.Path)
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "+620000000001", body["phone"])
			assert.Equal(t, "123456", body["otp"])
			assert.Equal(t, "notif-1", body["notif_id"])
			_, _ = w.Write([]byte(envelopeOK(`{"access_token":"tok-otp","token_type":"bearer","user":{"id":"1"}}`)))
		}))
		t.Cleanup(srv.Close)

		client := newClient(t, srv.URL)
		res, err := client.VerifyOTP(context.Background(), session.VerifyOTPRequest{
			Phone:   "+620000000001",
			OTP:     "123456",
			NotifID: "notif-1",
		})
		require.NoError(t, err)
		assert.Equal(t, "tok-otp", res.AccessToken)
		require.NotNil(t, res.User)
	})
}
