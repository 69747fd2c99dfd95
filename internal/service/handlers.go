package service

import (
	"cursedcompass-backend/internal/availability"
	"cursedcompass-backend/internal/history"
	"cursedcompass-backend/internal/scrapers/ipms"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

type CheckRequest struct {
	// HotelId defaults to the service's default hotel.
	HotelId  string `json:"hotelId"`
	CheckIn  string `json:"checkIn" binding:"required"`
	CheckOut string `json:"checkOut" binding:"required"`
	Guests   int    `json:"guests" binding:"required"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func abortWithError(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, errorResponse{Error: err.Error()})
}

func (s AvailabilityService) Welcome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Welcome to Cursed Compass API!"})
}

func (s AvailabilityService) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Check runs an availability check. Scrape failures are not http errors,
// they come back as a 200 with `success: false`.
func (s AvailabilityService) Check(c *gin.Context) {
	var body CheckRequest
	err := c.ShouldBindJSON(&body)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	req, err := ipms.NewAvailabilityRequest(body.CheckIn, body.CheckOut, body.Guests)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	hotelId := strings.TrimSpace(body.HotelId)
	if hotelId == "" {
		hotelId = s.defaultHotel
	}
	checker, err := s.checkers.Get(hotelId)
	if errors.Is(err, availability.ErrUnknownHotel) {
		abortWithError(c, http.StatusNotFound, err)
		return
	}
	if err != nil {
		s.tel.ReportBroken(report_availability_check, err)
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}

	ctx := c.Request.Context()
	res := checker.CheckAvailability(ctx, req)
	if !res.Success {
		s.tel.ReportWarning(report_availability_check, hotelId, res.Error)
	}

	if s.history != nil {
		_, err := s.history.Record(ctx, req, res)
		if err != nil {
			s.tel.ReportBroken(report_history_record, err)
		}
	}

	c.JSON(http.StatusOK, res)
}

var errHistoryDisabled = errors.New("check history is disabled")

// History lists recorded checks, most recent first.
func (s AvailabilityService) History(c *gin.Context) {
	if s.history == nil {
		abortWithError(c, http.StatusServiceUnavailable, errHistoryDisabled)
		return
	}

	limit := history.DefaultListLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			abortWithError(c, http.StatusBadRequest, errors.New("limit must be a positive integer"))
			return
		}
		limit = history.ClampLimit(parsed)
	}

	records, err := s.history.List(c.Request.Context(), limit)
	if err != nil {
		s.tel.ReportBroken(report_history_list, err)
		abortWithError(c, http.StatusInternalServerError, errors.New("failed to list check history"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"checks": records})
}

// HistoryEntry returns a single recorded check by id.
func (s AvailabilityService) HistoryEntry(c *gin.Context) {
	if s.history == nil {
		abortWithError(c, http.StatusServiceUnavailable, errHistoryDisabled)
		return
	}

	record, err := s.history.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, history.ErrNotFound) {
		abortWithError(c, http.StatusNotFound, err)
		return
	}
	if err != nil {
		s.tel.ReportBroken(report_history_get, err)
		abortWithError(c, http.StatusInternalServerError, errors.New("failed to get check"))
		return
	}
	c.JSON(http.StatusOK, record)
}
