package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

var (
	ErrMissingHeader = errors.New("missing_authorization_header")
	ErrInvalidFormat = errors.New("invalid_authorization_header")
	ErrEmptyToken    = errors.New("empty_token")
	ErrInvalidToken  = errors.New("invalid_token")
	ErrUnknownUser   = errors.New("user_not_found")
)

// ExtractBearerToken extracts the Bearer token from the Authorization header.
func ExtractBearerToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", ErrMissingHeader
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", ErrInvalidFormat
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", ErrEmptyToken
	}

	return token, nil
}

// AbortWithUnauthorized aborts the request with 401 status. The body carries a
// human readable message and the error code.
func AbortWithUnauthorized(c *gin.Context, err error) {
	message := "Unauthorized. Invalid token."
	switch {
	case errors.Is(err, ErrMissingHeader):
		message = "Unauthorized HTTP, Token not provided"
	case errors.Is(err, ErrUnknownUser):
		message = "Unauthorized. User not found."
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": message, "error": err.Error()})
}
