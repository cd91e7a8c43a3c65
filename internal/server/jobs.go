package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// GetLatestJob exposes the resume point the next scheduled run will use.
func (s *Server) GetLatestJob(c *gin.Context) {
	job, err := s.jobStore.Latest(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if job == nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"id":          job.ID.String(),
		"fromDate":    job.FromDate.Format("2006-01-02"),
		"toDate":      job.ToDate.Format("2006-01-02"),
		"triggeredAt": job.TriggeredAt,
	}})
}

// ListFallouts returns fallout rows for a comma separated flow instance id set.
func (s *Server) ListFallouts(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("flowInstanceIds"))
	if raw == "" {
		AbortWithError(c, newValidationError("flowInstanceIds", "required", "flow instance ids are required"))
		return
	}

	ids := make([]string, 0)
	for _, id := range strings.Split(raw, ",") {
		id = strings.TrimSpace(id)
		if id != "" {
			ids = append(ids, id)
		}
	}

	fallouts, err := s.jobStore.FalloutsFor(c.Request.Context(), ids)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": fallouts})
}
