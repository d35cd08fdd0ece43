// Package middleware holds the gin middlewares shared by the API routes.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/livestock/internal/service/records"
)

const ctxOwnerKey = "owner"

// TokenVerifier resolves a bearer token to the owner it identifies.
type TokenVerifier interface {
	Verify(token string) (records.Owner, error)
}

// Authenticate rejects requests without a valid bearer token and stores the
// owner on the context for the handlers.
func Authenticate(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "No token, authorization denied"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authorization header must be 'Bearer <token>'"})
			return
		}

		owner, err := verifier.Verify(strings.TrimSpace(parts[1]))
		if err != nil || owner.IsZero() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token is not valid"})
			return
		}

		c.Set(ctxOwnerKey, owner)
		c.Next()
	}
}

// OwnerFrom returns the owner stored by Authenticate.
func OwnerFrom(c *gin.Context) (records.Owner, bool) {
	v, ok := c.Get(ctxOwnerKey)
	if !ok {
		return records.Owner{}, false
	}
	owner, ok := v.(records.Owner)
	return owner, ok && !owner.IsZero()
}
