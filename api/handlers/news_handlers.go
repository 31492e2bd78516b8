package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"hinglish-snaps/api/dto"
	"hinglish-snaps/api/services"
	"hinglish-snaps/api/validation"
	"hinglish-snaps/internal/logger"
)

// ListNewsHandler godoc
// @Summary      List news
// @Description  Paginated Hinglish news, optionally filtered by category or search term. convert=true converts fallback items before responding.
// @Tags         news
// @Param        category  query  string  false  "Category (default finance, 'all' for every category)"
// @Param        page      query  int     false  "Page number (1-based)"
// @Param        limit     query  int     false  "Page size (1-50, default 6)"
// @Param        search    query  string  false  "Search term"
// @Param        convert   query  bool    false  "Convert fallback summaries synchronously"
// @Produce      json
// @Success      200  {object}  dto.NewsPageDTO
// @Failure      500  {object}  dto.ErrorResponseDTO
// @Router       /news [get]
func ListNewsHandler(svc *services.NewsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in services.ListNewsInput
		in.Category = c.Query("category")
		in.Search = c.Query("search")
		in.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
		in.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "0"))
		in.Convert = parseBool(c.Query("convert"))

		page, err := svc.List(c.Request.Context(), in)
		if err != nil {
			logger.ErrorWithFields("list news failed", logger.Fields{
				"error":      err.Error(),
				"request_id": c.Request.Header.Get("X-Request-Id"),
			})
			c.JSON(http.StatusInternalServerError, dto.ErrorResponseDTO{Message: "Failed to fetch news from database."})
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// ConvertNewsHandler godoc
// @Summary      Convert one article
// @Description  Returns the cached Hinglish summary for url or converts and stores a new one.
// @Tags         news
// @Accept       json
// @Produce      json
// @Param        body  body      dto.ConvertRequestDTO  true  "Article"
// @Success      200   {object}  dto.ConvertResponseDTO
// @Failure      400   {object}  dto.ErrorResponseDTO
// @Failure      502   {object}  dto.ErrorResponseDTO
// @Failure      500   {object}  dto.ErrorResponseDTO
// @Router       /news/convert [post]
func ConvertNewsHandler(svc *services.NewsService, v *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.ConvertRequestDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Message: "url and title are required"})
			return
		}
		req.URL = strings.TrimSpace(req.URL)
		req.Title = strings.TrimSpace(req.Title)
		if !validateOrAbort(c, v, req, "url and title are required") {
			return
		}

		res, err := svc.Convert(c.Request.Context(), req)
		if err != nil {
			fields := logger.Fields{
				"url":        req.URL,
				"error":      err.Error(),
				"request_id": c.Request.Header.Get("X-Request-Id"),
			}
			if errors.Is(err, services.ErrSummaryUnavailable) {
				logger.WarnWithFields("convert failed upstream", fields)
				c.JSON(http.StatusBadGateway, dto.ErrorResponseDTO{Message: "Hinglish conversion failed, please try again later"})
				return
			}
			logger.ErrorWithFields("convert failed", fields)
			c.JSON(http.StatusInternalServerError, dto.ErrorResponseDTO{Message: "Failed to save converted article"})
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1":
		return true
	}
	return false
}

// validateOrAbort writes a 400 with itemised messages when req is invalid.
func validateOrAbort(c *gin.Context, v *validation.Validator, req any, message string) bool {
	err := v.Struct(req)
	if err == nil {
		return true
	}
	var ve *validation.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Message: message, Errors: ve.Messages})
		return false
	}
	c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Message: message})
	return false
}
