package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

type triggerBetweenDatesRequest struct {
	FromDate  string   `json:"fromDate"`
	ToDate    string   `json:"toDate"`
	FamilyIDs []string `json:"familyIds"`
}

// TriggerEvent re-runs collection for a single flow instance. Acceptance is
// immediate; the outcome lands in histories or fallouts.
func (s *Server) TriggerEvent(c *gin.Context) {
	flowInstanceID := strings.TrimSpace(c.Param("flowInstanceId"))
	if flowInstanceID == "" {
		AbortWithError(c, newValidationError("flowInstanceId", "required", "flow instance id is required"))
		return
	}

	if err := s.collectorSvc.Trigger(c.Request.Context(), flowInstanceID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

// TriggerBetweenDates re-runs collection for an explicit window, bypassing the
// persisted job state.
func (s *Server) TriggerBetweenDates(c *gin.Context) {
	var req triggerBetweenDatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	from, err := time.Parse("2006-01-02", strings.TrimSpace(req.FromDate))
	if err != nil {
		AbortWithError(c, newValidationError("fromDate", "invalid_date", "expected YYYY-MM-DD"))
		return
	}
	to, err := time.Parse("2006-01-02", strings.TrimSpace(req.ToDate))
	if err != nil {
		AbortWithError(c, newValidationError("toDate", "invalid_date", "expected YYYY-MM-DD"))
		return
	}

	if err := s.collectorSvc.TriggerBetweenDates(c.Request.Context(), from, to, req.FamilyIDs); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}
