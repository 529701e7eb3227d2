package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	bookingdomain "github.com/inkhaus/studio/internal/booking/domain"
)

func (s *Server) ListBookings(c *gin.Context) {
	var req bookingdomain.ListBookingRequest

	req.Status = strings.TrimSpace(c.Query("status"))

	from, err := parseOptionalTime(c.Query("from"), false)
	if err != nil {
		AbortWithError(c, newValidationError("from", "invalid_time", "invalid from date"))
		return
	}
	to, err := parseOptionalTime(c.Query("to"), true)
	if err != nil {
		AbortWithError(c, newValidationError("to", "invalid_time", "invalid to date"))
		return
	}
	req.From = from
	req.To = to

	req.Pagination, err = parsePagination(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.bookingSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
