package middleware

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/interviewpro/backend/internal/utils"
)

const sessionCookie = "interview_session"

type apiError struct {
	Success bool       `json:"success"`
	Code    utils.Code `json:"code"`
	Message string     `json:"message"`
}

type sessionClaims struct {
	jwt.RegisteredClaims
	UniqueID string `json:"uid"`
}

func sessionSecret() string {
	return os.Getenv("SESSION_SECRET")
}

// IssueSessionCookie signs a session token for uniqueID and sets it as an
// http-only cookie. The token outlives browser restarts so a student can
// come back to their session later.
func IssueSessionCookie(c *gin.Context, uniqueID string) error {
	secret := sessionSecret()
	if secret == "" {
		return utils.E(utils.CodeInternal, "middleware.IssueSessionCookie", "SESSION_SECRET is not set", nil)
	}

	now := time.Now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(30 * 24 * time.Hour)),
		},
		UniqueID: uniqueID,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return utils.E(utils.CodeInternal, "middleware.IssueSessionCookie", "failed to sign session token", err)
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, signed, int((30 * 24 * time.Hour).Seconds()), "/", "", secureCookies(), true)
	return nil
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, "", -1, "/", "", secureCookies(), true)
}

func secureCookies() bool {
	return os.Getenv("COOKIE_SECURE") != "false"
}

// SessionAuth validates the session cookie and puts the session's unique id
// on the request context as "unique_id".
func SessionAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := sessionSecret()
		if secret == "" {
			c.AbortWithStatusJSON(http.StatusInternalServerError, apiError{
				Code:    utils.CodeInternal,
				Message: "SESSION_SECRET is not set",
			})
			return
		}

		raw, err := c.Cookie(sessionCookie)
		if err != nil || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiError{
				Code:    utils.CodeUnauthorized,
				Message: "missing session",
			})
			return
		}

		claims := &sessionClaims{}
		tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, jwt.ErrTokenSignatureInvalid
			}
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

		if err != nil || tok == nil || !tok.Valid || claims.UniqueID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiError{
				Code:    utils.CodeUnauthorized,
				Message: "invalid session",
			})
			return
		}

		c.Set("unique_id", claims.UniqueID)
		c.Next()
	}
}
