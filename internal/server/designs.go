package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	designdomain "github.com/inkhaus/studio/internal/design/domain"
)

func (s *Server) CreateDesign(c *gin.Context) {
	var req designdomain.CreateDesignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	created, err := s.designSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (s *Server) UpdateDesign(c *gin.Context) {
	var req designdomain.UpdateDesignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	updated, err := s.designSvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (s *Server) ListDesigns(c *gin.Context) {
	var req designdomain.ListDesignRequest

	req.Style = strings.TrimSpace(c.Query("style"))
	active, err := parseOptionalBool(c.Query("active"))
	if err != nil {
		AbortWithError(c, newValidationError("active", "invalid_bool", "invalid active flag"))
		return
	}
	req.Active = active

	req.Pagination, err = parsePagination(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.designSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
