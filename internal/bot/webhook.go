package bot

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
)

// WebhookPattern is the callback route; the path segment must equal the bot token.
const WebhookPattern = "POST /webhook/{token}"

const secretHeader = "X-Telegram-Bot-Api-Secret-Token"

// webhookSecret derives the X-Telegram-Bot-Api-Secret-Token value. Bot
// tokens contain ':' which Telegram does not accept in secret tokens.
func webhookSecret(token string) string {
	sum := sha256.Sum256([]byte("roastbot-webhook:" + token))
	return hex.EncodeToString(sum[:16])
}

// guardToken rejects callback requests whose path token or secret header
// does not match. Neither case reaches next.
func guardToken(token string, next http.Handler) http.Handler {
	secret := []byte(webhookSecret(token))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if subtle.ConstantTimeCompare([]byte(r.PathValue("token")), []byte(token)) != 1 {
			http.NotFound(w, r)
			return
		}
		if subtle.ConstantTimeCompare([]byte(r.Header.Get(secretHeader)), secret) != 1 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
