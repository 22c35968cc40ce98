package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// StatusResponse is the body of GET /api/v1/status
type StatusResponse struct {
	State   string      `json:"state"`
	Sources []string    `json:"sources"`
	Stats   interface{} `json:"stats"`
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks": gin.H{
			"orchestrator": string(s.driver.Orchestrator().State()),
		},
	})
}

// handleStatus returns the run state and cumulative statistics
func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{
		State:   string(s.driver.Orchestrator().State()),
		Sources: s.driver.Orchestrator().SourceIDs(),
		Stats:   s.driver.Stats().Summary(),
	})
}

// handleLastReport returns the most recent cycle report
func (s *Server) handleLastReport(c *gin.Context) {
	report := s.driver.Stats().LastReport()
	if report == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "no cycle has completed yet",
		})
		return
	}

	c.JSON(http.StatusOK, report)
}

// handleReports returns retained cycle reports, newest last
func (s *Server) handleReports(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}

	reports := s.history.Recent(limit)
	c.JSON(http.StatusOK, gin.H{
		"count":   len(reports),
		"reports": reports,
	})
}

// handleReportBySeq returns one retained cycle report by sequence number
func (s *Server) handleReportBySeq(c *gin.Context) {
	seq, err := strconv.ParseUint(c.Param("seq"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cycle sequence"})
		return
	}

	report, ok := s.history.Get(seq)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not retained"})
		return
	}

	c.JSON(http.StatusOK, report)
}

// handleEvents returns recently buffered events, newest last
func (s *Server) handleEvents(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}

	events := s.events.Recent(limit)
	c.JSON(http.StatusOK, gin.H{
		"count":  len(events),
		"events": events,
	})
}
