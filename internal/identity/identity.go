// Package identity resolves caller identity and derives ledger keys.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/moonuidesign/quotagate/internal/model"
)

// HashKey returns a stable hash for a visitor key or network address
// to avoid storing raw fingerprints in the ledger.
func HashKey(key string) []byte {
	h := sha256.Sum256([]byte(key))
	return h[:]
}

// LedgerKey derives the counter key for an identity. Authenticated users are
// keyed by their account ID, anonymous visitors by a hash of their key.
func LedgerKey(id model.Identity) string {
	if id.Authenticated() {
		return "u:" + id.UserID.String()
	}
	return "v:" + hex.EncodeToString(HashKey(id.VisitorKey))
}

// UserIDFromToken verifies an HS256 access token and returns its subject.
func UserIDFromToken(token string, signKey []byte) (uuid.UUID, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return signKey, nil
	})
	if err != nil || !parsed.Valid {
		return uuid.Nil, errors.New("invalid token")
	}

	v := jwt.NewValidator(jwt.WithLeeway(30 * time.Second))
	if err := v.Validate(&claims); err != nil {
		return uuid.Nil, errors.New("token expired or not valid yet")
	}

	id, err := uuid.FromString(claims.Subject)
	if err != nil {
		return uuid.Nil, errors.New("bad subject")
	}
	return id, nil
}

// BearerToken extracts "Authorization: Bearer <token>" from a request.
func BearerToken(r *http.Request) (string, bool) {
	v := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(v) >= 7 && strings.EqualFold(v[:7], "bearer ") {
		if t := strings.TrimSpace(v[7:]); t != "" {
			return t, true
		}
	}
	return "", false
}

// ClientAddr returns the caller's network address for fallback identification
// when fingerprinting failed. The first X-Forwarded-For entry wins when the
// deployment fronts the service with a trusted proxy.
func ClientAddr(r *http.Request, trustXFF bool) string {
	if trustXFF {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			parts := strings.Split(xff, ",")
			if ip := strings.TrimSpace(parts[0]); ip != "" {
				return ip
			}
		}
	}
	return r.RemoteAddr
}
