package identity

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/moonuidesign/quotagate/internal/model"
)

func signToken(t *testing.T, key []byte, sub string, ttl time.Duration) string {
	t.Helper()
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   sub,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestHashKey_Determinism(t *testing.T) {
	a := HashKey("fp-abc")
	b := HashKey("fp-abc")
	c := HashKey("fp-xyz")
	if string(a) != string(b) || string(a) == string(c) || len(a) != 32 {
		t.Fatalf("hash mismatch/len: %d", len(a))
	}
}

func TestLedgerKey_UserWinsOverVisitor(t *testing.T) {
	uid := uuid.Must(uuid.NewV4())
	k := LedgerKey(model.Identity{UserID: uid, VisitorKey: "fp-abc"})
	require.Equal(t, "u:"+uid.String(), k)
}

func TestLedgerKey_VisitorHashed(t *testing.T) {
	k := LedgerKey(model.Identity{VisitorKey: "fp-abc"})
	require.True(t, strings.HasPrefix(k, "v:"))
	require.NotContains(t, k, "fp-abc")
	// stable across calls
	require.Equal(t, k, LedgerKey(model.Identity{VisitorKey: "fp-abc"}))
}

func TestUserIDFromToken_OK(t *testing.T) {
	key := []byte("test-key")
	uid := uuid.Must(uuid.NewV4())
	tok := signToken(t, key, uid.String(), time.Minute)

	got, err := UserIDFromToken(tok, key)
	require.NoError(t, err)
	require.Equal(t, uid, got)
}

func TestUserIDFromToken_Expired(t *testing.T) {
	key := []byte("test-key")
	uid := uuid.Must(uuid.NewV4())
	tok := signToken(t, key, uid.String(), -2*time.Minute)

	_, err := UserIDFromToken(tok, key)
	require.Error(t, err)
}

func TestUserIDFromToken_WrongKey(t *testing.T) {
	uid := uuid.Must(uuid.NewV4())
	tok := signToken(t, []byte("key-a"), uid.String(), time.Minute)

	_, err := UserIDFromToken(tok, []byte("key-b"))
	require.Error(t, err)
}

func TestUserIDFromToken_BadSubject(t *testing.T) {
	key := []byte("test-key")
	tok := signToken(t, key, "not-a-uuid", time.Minute)

	_, err := UserIDFromToken(tok, key)
	require.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	r := httptest.NewRequest("POST", "/v1/quota/check", nil)
	if _, ok := BearerToken(r); ok {
		t.Fatalf("no header must yield no token")
	}

	r.Header.Set("Authorization", "Bearer abc.def.ghi")
	tok, ok := BearerToken(r)
	require.True(t, ok)
	require.Equal(t, "abc.def.ghi", tok)

	r.Header.Set("Authorization", "bearer   spaced ")
	tok, ok = BearerToken(r)
	require.True(t, ok)
	require.Equal(t, "spaced", tok)

	r.Header.Set("Authorization", "Basic abc")
	if _, ok := BearerToken(r); ok {
		t.Fatalf("basic auth must not parse as bearer")
	}
}

func TestClientAddr(t *testing.T) {
	r := httptest.NewRequest("POST", "/", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.2")

	require.Equal(t, "203.0.113.7", ClientAddr(r, true))
	require.Equal(t, "10.0.0.1:1234", ClientAddr(r, false))
}
