package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

var ErrInvalidToken = errors.New("invalid session token")

// SessionClaims are the parts of a Shopify embedded-app session token the
// admin API cares about. Dest carries the shop the token was minted for.
type SessionClaims struct {
	Iss  string `json:"iss"`
	Dest string `json:"dest"`
	Aud  string `json:"aud"`
	Sub  string `json:"sub"`
	Exp  int64  `json:"exp"`
	Nbf  int64  `json:"nbf"`
}

// Shop extracts the shop domain from the dest claim
// (e.g. "https://example.myshopify.com").
func (c *SessionClaims) Shop() string {
	dest := strings.TrimPrefix(strings.TrimPrefix(c.Dest, "https://"), "http://")
	dest = strings.TrimSuffix(dest, "/")
	return strings.ToLower(dest)
}

// VerifySessionToken validates an HS256 session token signed with the app's
// API secret and returns its claims. Expiry and not-before are enforced
// against the supplied now.
func VerifySessionToken(token, secret string, now time.Time) (*SessionClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, ErrInvalidToken
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(parts[0] + "." + parts[1]))
	expected := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(parts[2])) {
		return nil, ErrInvalidToken
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, ErrInvalidToken
	}
	var claims SessionClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, ErrInvalidToken
	}
	if claims.Exp > 0 && now.Unix() > claims.Exp {
		return nil, ErrInvalidToken
	}
	if claims.Nbf > 0 && now.Unix() < claims.Nbf {
		return nil, ErrInvalidToken
	}
	if claims.Dest == "" {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

// SignSessionToken mints an HS256 token for the given claims. Production
// tokens come from Shopify; this exists for local development and tests.
func SignSessionToken(claims SessionClaims, secret string) (string, error) {
	headerJSON, err := json.Marshal(map[string]string{"alg": "HS256", "typ": "JWT"})
	if err != nil {
		return "", err
	}
	payloadJSON, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	signingInput := base64.RawURLEncoding.EncodeToString(headerJSON) + "." + base64.RawURLEncoding.EncodeToString(payloadJSON)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signingInput))
	return signingInput + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil)), nil
}
