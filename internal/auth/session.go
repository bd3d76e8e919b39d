// internal/auth/session.go
package auth

import (
	"crypto/ed25519"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CookieName carries the signed player token.
const CookieName = "tankard_session"

// Signer mints and verifies player session tokens. Keys are generated fresh
// at startup: a restart signs everyone out, which is fine for a tavern.
type Signer struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey

	// expire of 0 means tokens never expire.
	expire time.Duration
}

// NewSigner generates an ed25519 key pair. expire accepts "never", "0", ""
// or a Go duration string.
func NewSigner(expire string) (*Signer, error) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, fmt.Errorf("generate ed25519 key pair: %w", err)
	}
	s := &Signer{privateKey: priv, publicKey: pub}
	if expire != "never" && expire != "0" && expire != "" {
		d, err := time.ParseDuration(expire)
		if err != nil {
			return nil, fmt.Errorf("parse token expire time: %w", err)
		}
		s.expire = d
	}
	return s, nil
}

// CreateToken signs a JWT with "sub" = the player id.
func (s *Signer) CreateToken(player uuid.UUID) (string, error) {
	claims := jwt.MapClaims{
		"sub": player.String(),
	}
	if s.expire > 0 {
		claims["exp"] = time.Now().Add(s.expire).Unix()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(s.privateKey)
}

// Authenticate verifies a token string and returns the player id.
func (s *Signer) Authenticate(tokenString string) (uuid.UUID, error) {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.publicKey, nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("jwt parse error: %w", err)
	}
	if !t.Valid {
		return uuid.Nil, fmt.Errorf("invalid token")
	}
	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, fmt.Errorf("invalid jwt claims")
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("missing sub in jwt")
	}
	player, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, fmt.Errorf("bad sub in jwt: %w", err)
	}
	return player, nil
}

// SetCookie writes the session cookie on a response.
func (s *Signer) SetCookie(w http.ResponseWriter, token string) {
	cookie := &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if s.expire > 0 {
		cookie.Expires = time.Now().Add(s.expire)
	}
	http.SetCookie(w, cookie)
}

// ClearCookie expires the session cookie.
func ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// PlayerFromRequest authenticates the request's session cookie.
func (s *Signer) PlayerFromRequest(r *http.Request) (uuid.UUID, error) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return uuid.Nil, fmt.Errorf("no session cookie")
	}
	return s.Authenticate(c.Value)
}
