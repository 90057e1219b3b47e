package bot

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/j0lvera/roastbot/internal/server"
	"github.com/stretchr/testify/require"
)

const testToken = "123456:ABC-secret"

func TestWebhookGuard(t *testing.T) {
	calls := 0
	mux := server.NewMux()
	mux.Handle(WebhookPattern, guardToken(testToken, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	})))

	secret := webhookSecret(testToken)
	tests := []struct {
		name   string
		method string
		path   string
		secret string
		status int
	}{
		{name: "matching token", method: http.MethodPost, path: "/webhook/" + testToken, secret: secret, status: http.StatusOK},
		{name: "wrong token", method: http.MethodPost, path: "/webhook/123456:ABC-guess", secret: secret, status: http.StatusNotFound},
		{name: "missing token", method: http.MethodPost, path: "/webhook/", secret: secret, status: http.StatusNotFound},
		{name: "bare token path", method: http.MethodPost, path: "/" + testToken, secret: secret, status: http.StatusNotFound},
		{name: "get on callback", method: http.MethodGet, path: "/webhook/" + testToken, secret: secret, status: http.StatusMethodNotAllowed},
		{name: "missing secret header", method: http.MethodPost, path: "/webhook/" + testToken, status: http.StatusUnauthorized},
		{name: "wrong secret header", method: http.MethodPost, path: "/webhook/" + testToken, secret: "nope", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := calls
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader("{}"))
			if tt.secret != "" {
				req.Header.Set(secretHeader, tt.secret)
			}
			rr := httptest.NewRecorder()
			mux.ServeHTTP(rr, req)

			require.Equal(t, tt.status, rr.Code)
			if tt.status == http.StatusOK {
				require.Equal(t, before+1, calls)
			} else {
				require.Equal(t, before, calls)
			}
		})
	}
}

func TestWebhookSecretIsTelegramSafe(t *testing.T) {
	secret := webhookSecret(testToken)
	require.Regexp(t, regexp.MustCompile(`^[A-Za-z0-9_-]{1,256}$`), secret)
	require.NotContains(t, secret, testToken)
	require.Equal(t, secret, webhookSecret(testToken))
}
