package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrBadCookie covers every way a cookie can fail to decode: bad
// signature, expiry, malformed token. Callers treat all of them as
// "no session".
var ErrBadCookie = errors.New("unable to decode session cookie")

// Codec signs and verifies the cookie that carries a session id. The
// payload stays server-side; the cookie is only a compact HS256 token
// wrapping the id, so a forged or tampered cookie never reaches the
// store.
type Codec struct {
	key    []byte
	issuer string
}

// NewCodec builds a codec from the process cookie key.
func NewCodec(key []byte, issuer string) (*Codec, error) {
	if len(key) == 0 {
		return nil, errors.New("codec requires a non empty key")
	}
	return &Codec{key: key, issuer: issuer}, nil
}

// Encode wraps a session id into a signed cookie value expiring with
// the session.
func (c *Codec) Encode(sessionID string, expiresAt time.Time) (string, error) {
	now := time.Now()
	claims := &jwt.RegisteredClaims{
		Issuer:    c.issuer,
		Subject:   sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
}

// Decode validates a cookie value and returns the session id it wraps.
func (c *Codec) Decode(cookie string) (string, error) {
	if cookie == "" {
		return "", ErrBadCookie
	}

	parserOptions := []jwt.ParserOption{}
	if c.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(c.issuer))
	}

	token, err := jwt.ParseWithClaims(cookie, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.key, nil
	}, parserOptions...)
	if err != nil {
		return "", ErrBadCookie
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", ErrBadCookie
	}

	return claims.Subject, nil
}
