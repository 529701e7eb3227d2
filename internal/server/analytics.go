package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	analyticsdomain "github.com/inkhaus/studio/internal/analytics/domain"
	"github.com/inkhaus/studio/pkg/db/pagination"
)

func (s *Server) IngestEvent(c *gin.Context) {
	var req analyticsdomain.IngestEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if s.ingestLimiter.Enabled() {
		allowed, err := s.ingestLimiter.Allow(c.Request.Context(), req.SessionID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if !allowed {
			s.metrics.RecordRateLimit(false)
			AbortWithError(c, ErrRateLimited)
			return
		}
		s.metrics.RecordRateLimit(true)
	}

	event, err := s.analyticsSvc.Ingest(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

func (s *Server) QueryEvents(c *gin.Context) {
	req, err := parseQueryEventsRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.analyticsSvc.Query(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func parseQueryEventsRequest(c *gin.Context) (analyticsdomain.QueryEventsRequest, error) {
	var req analyticsdomain.QueryEventsRequest

	start, err := parseOptionalTime(c.Query("start_date"), false)
	if err != nil {
		return req, newValidationError("start_date", "invalid_time", "invalid start date")
	}
	end, err := parseOptionalTime(c.Query("end_date"), true)
	if err != nil {
		return req, newValidationError("end_date", "invalid_time", "invalid end date")
	}

	req.StartDate = start
	req.EndDate = end
	for _, cat := range splitCSV(c.Query("category")) {
		req.Categories = append(req.Categories, analyticsdomain.EventCategory(cat))
	}
	req.Actions = splitCSV(c.Query("action"))
	req.UserID = strings.TrimSpace(c.Query("user_id"))
	req.Path = strings.TrimSpace(c.Query("path"))
	req.DeviceType = strings.TrimSpace(c.Query("device_type"))
	req.SortBy = strings.TrimSpace(c.Query("sort_by"))
	req.SortDir = strings.TrimSpace(c.Query("sort_dir"))

	req.Pagination, err = parsePagination(c)
	if err != nil {
		return req, err
	}
	return req, nil
}

func parsePagination(c *gin.Context) (pagination.Pagination, error) {
	var p pagination.Pagination

	page, err := parseOptionalInt(c.Query("page"))
	if err != nil {
		return p, newValidationError("page", "invalid_int", "invalid page")
	}
	limit, err := parseOptionalInt(c.Query("limit"))
	if err != nil {
		return p, newValidationError("limit", "invalid_int", "invalid limit")
	}

	p.Page = page
	p.Limit = limit
	return p, nil
}

func parseDateRange(c *gin.Context) (analyticsdomain.DateRange, error) {
	var r analyticsdomain.DateRange

	start, err := parseOptionalTime(c.Query("start_date"), false)
	if err != nil {
		return r, newValidationError("start_date", "invalid_time", "invalid start date")
	}
	end, err := parseOptionalTime(c.Query("end_date"), true)
	if err != nil {
		return r, newValidationError("end_date", "invalid_time", "invalid end date")
	}

	r.Start = start
	r.End = end
	return r, nil
}

func (s *Server) GetSummary(c *gin.Context) {
	r, err := parseDateRange(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	summary, err := s.analyticsSvc.Summary(c.Request.Context(), r)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (s *Server) GetDailyTrend(c *gin.Context) {
	r, err := parseDateRange(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	trend, err := s.analyticsSvc.DailyTrend(c.Request.Context(), r)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"trend": trend})
}

func (s *Server) GetTopDesigns(c *gin.Context) {
	r, err := parseDateRange(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	limit, err := parseOptionalInt(c.Query("limit"))
	if err != nil {
		AbortWithError(c, newValidationError("limit", "invalid_int", "invalid limit"))
		return
	}

	designs, err := s.analyticsSvc.TopDesigns(c.Request.Context(), r, limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"designs": designs})
}

func (s *Server) GetBookingFunnel(c *gin.Context) {
	r, err := parseDateRange(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	funnel, err := s.analyticsSvc.BookingFunnel(c.Request.Context(), r)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, funnel)
}
