package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hinglish-snaps/api/auth"
	"hinglish-snaps/api/dto"
	"hinglish-snaps/api/services"
	"hinglish-snaps/internal/logger"
)

const contextUserKey = "user"

// RequireUser 는 요청 헤더의 JWT를 검증하고, 토큰의 email 로 사용자를 조회해 컨텍스트에 저장한다.
func RequireUser(authSvc *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractBearerToken(c)
		if err != nil {
			auth.AbortWithUnauthorized(c, err)
			return
		}

		claims, err := authSvc.ParseAccessToken(token)
		if err != nil {
			logger.DebugWithFields("token parse error", logger.Fields{"error": err.Error()})
			auth.AbortWithUnauthorized(c, auth.ErrInvalidToken)
			return
		}

		user, err := authSvc.GetUser(c.Request.Context(), claims.Email)
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				auth.AbortWithUnauthorized(c, auth.ErrUnknownUser)
				return
			}
			logger.ErrorWithFields("failed to load user", logger.Fields{"email": claims.Email, "error": err.Error()})
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponseDTO{Message: "Internal server error"})
			return
		}

		c.Set(contextUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user stored by RequireUser.
func CurrentUser(c *gin.Context) (*dto.UserDTO, bool) {
	v, ok := c.Get(contextUserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*dto.UserDTO)
	return u, ok
}
