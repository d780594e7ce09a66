package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// SessionCookie is the name of the cookie carrying the signed session token.
	SessionCookie = "reflect_session"

	sessionTTL = 365 * 24 * time.Hour
)

// SessionMiddleware ensures every request carries a session identifier before
// any handler reads or writes session-scoped storage. The identifier is a
// random UUID wrapped in an HMAC-signed token; it partitions storage and
// carries no other semantics. A missing, expired, or tampered cookie gets a
// fresh identity rather than an error.
func SessionMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := c.Cookie(SessionCookie); err == nil {
			if sid, err := verifySessionToken(token, secret); err == nil {
				c.Set("sid", sid)
				c.Next()
				return
			}
		}

		sid := uuid.New().String()
		token, err := signSessionToken(sid, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.SetCookie(SessionCookie, token, int(sessionTTL.Seconds()), "/", "", false, true)
		c.Set("sid", sid)
		c.Next()
	}
}

func signSessionToken(sid string, secret []byte) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:  sid,
		IssuedAt: jwt.NewNumericDate(time.Now()),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func verifySessionToken(token string, secret []byte) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", fmt.Errorf("session token has no subject")
	}
	return claims.Subject, nil
}
