package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hinglish-snaps/api/dto"
	"hinglish-snaps/api/middleware"
	"hinglish-snaps/api/services"
	"hinglish-snaps/api/validation"
	"hinglish-snaps/internal/logger"
)

// HomeHandler godoc
// @Summary      Auth home
// @Tags         auth
// @Produce      json
// @Success      200  {object}  dto.MessageResponseDTO
// @Router       /auth [get]
func HomeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.MessageResponseDTO{Msg: "Welcome to our home page"})
	}
}

// RegisterHandler godoc
// @Summary      회원가입
// @Description  사용자를 생성하고 30일짜리 세션 토큰을 발급합니다.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.RegisterRequestDTO  true  "회원 정보"
// @Success      201   {object}  dto.AuthResponseDTO
// @Failure      400   {object}  dto.ErrorResponseDTO
// @Failure      500   {object}  dto.ErrorResponseDTO
// @Router       /auth/register [post]
func RegisterHandler(authSvc *services.AuthService, v *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.RegisterRequestDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Message: "Validation failed", Errors: []string{"Invalid request body"}})
			return
		}
		req.Username = strings.TrimSpace(req.Username)
		req.Email = strings.TrimSpace(req.Email)
		req.Phone = strings.TrimSpace(req.Phone)
		if !validateOrAbort(c, v, req, "Validation failed") {
			return
		}

		res, err := authSvc.Register(c.Request.Context(), req)
		if err != nil {
			if errors.Is(err, services.ErrEmailTaken) {
				c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Message: "Email already exists"})
				return
			}
			logger.ErrorWithFields("register failed", logger.Fields{
				"error":      err.Error(),
				"request_id": c.Request.Header.Get("X-Request-Id"),
			})
			c.JSON(http.StatusInternalServerError, dto.ErrorResponseDTO{Message: "Internal server error"})
			return
		}
		c.JSON(http.StatusCreated, res)
	}
}

// LoginHandler godoc
// @Summary      로그인
// @Description  이메일/비밀번호를 검증하고 세션 토큰을 발급합니다. 실패 사유는 구분하지 않습니다.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.LoginRequestDTO  true  "로그인 정보"
// @Success      200   {object}  dto.AuthResponseDTO
// @Failure      400   {object}  dto.ErrorResponseDTO
// @Failure      401   {object}  dto.ErrorResponseDTO
// @Router       /auth/login [post]
func LoginHandler(authSvc *services.AuthService, v *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.LoginRequestDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Message: "Validation failed", Errors: []string{"Invalid request body"}})
			return
		}
		req.Email = strings.TrimSpace(req.Email)
		if !validateOrAbort(c, v, req, "Validation failed") {
			return
		}

		res, err := authSvc.Login(c.Request.Context(), req)
		if err != nil {
			if errors.Is(err, services.ErrInvalidCredentials) {
				c.JSON(http.StatusUnauthorized, dto.ErrorResponseDTO{Message: "Invalid email or password"})
				return
			}
			logger.ErrorWithFields("login failed", logger.Fields{
				"error":      err.Error(),
				"request_id": c.Request.Header.Get("X-Request-Id"),
			})
			c.JSON(http.StatusInternalServerError, dto.ErrorResponseDTO{Message: "Internal server error"})
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// GetUserHandler godoc
// @Summary      현재 로그인한 사용자 조회
// @Description  RequireUser 미들웨어가 검증한 사용자 정보를 반환합니다. 비밀번호는 포함하지 않습니다.
// @Tags         auth
// @Param        Authorization  header  string  true  "Bearer 액세스 토큰 (예: Bearer eyJ...)"
// @Produce      json
// @Success      200  {object}  dto.UserDTO
// @Failure      401  {object}  dto.ErrorResponseDTO
// @Router       /auth/user [get]
func GetUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponseDTO{Message: "Unauthorized. User not found."})
			return
		}
		c.JSON(http.StatusOK, user)
	}
}
