package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/plantaest/citronspam/internal/config"
	"github.com/plantaest/citronspam/internal/model"
	"github.com/plantaest/citronspam/internal/spam"
)

// ReportResponse is the body of GET /api/wikis/:wiki/reports/:date.
type ReportResponse struct {
	Wiki   string        `json:"wiki"`
	Title  string        `json:"title"`
	Report *model.Report `json:"report"`
}

// FeedbackRequest is the body of POST .../feedbacks. Statuses are "good"
// or "bad".
type FeedbackRequest struct {
	Decisions map[string]string `json:"decisions" binding:"required"`
}

// FeedbackResponse is the body returned after feedback is saved.
type FeedbackResponse struct {
	Title     string           `json:"title"`
	NewRevID  int64            `json:"newrevid"`
	NoChange  bool             `json:"nochange"`
	Feedbacks []model.Feedback `json:"feedbacks"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// target resolves the wiki and report title of the request. It writes the
// error response and returns false when it cannot.
func (s *Server) target(c *gin.Context) (*Wiki, string, bool) {
	day, err := time.Parse(time.DateOnly, c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
		return nil, "", false
	}

	w, err := s.resolve(c.Request.Context(), c.Param("wiki"))
	if err != nil {
		if errors.Is(err, config.ErrUnknownWiki) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		}
		return nil, "", false
	}
	return w, model.ReportTitle(w.ReportPrefix, day), true
}

func (s *Server) getReport(c *gin.Context) {
	w, title, ok := s.target(c)
	if !ok {
		return
	}

	report, err := w.Backend.FetchReport(c.Request.Context(), title)
	if err != nil {
		s.metrics.recordFetch(w.ID, "error")
		s.writeError(c, err)
		return
	}
	s.metrics.recordFetch(w.ID, "ok")

	c.JSON(http.StatusOK, ReportResponse{Wiki: w.ID, Title: title, Report: report})
}

func (s *Server) postFeedbacks(c *gin.Context) {
	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "decisions are required"})
		return
	}

	decisions := make(map[string]model.FeedbackStatus, len(req.Decisions))
	for hostname, raw := range req.Decisions {
		status, err := model.ParseFeedbackStatus(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		decisions[hostname] = status
	}

	w, title, ok := s.target(c)
	if !ok {
		return
	}

	result, err := w.Backend.SubmitFeedback(c.Request.Context(), title, w.User, decisions)
	if err != nil {
		s.writeError(c, err)
		return
	}
	for _, f := range result.Feedbacks {
		s.metrics.recordFeedback(w.ID, f.Status.String())
	}

	c.JSON(http.StatusOK, FeedbackResponse{
		Title:     title,
		NewRevID:  result.Edit.Edit.NewRevID,
		NoChange:  result.Edit.Edit.NoChange,
		Feedbacks: result.Feedbacks,
	})
}

// writeError maps service errors to status codes. Anything not recognised
// is an upstream failure.
func (s *Server) writeError(c *gin.Context, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, spam.ErrPageMissing):
		status = http.StatusNotFound
	case errors.Is(err, spam.ErrUnknownHostname), errors.Is(err, spam.ErrNoDecisions):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, spam.ErrAnonymousUser):
		status = http.StatusForbidden
	}

	if status == http.StatusBadGateway {
		s.logger.Warn("wiki request failed", "path", c.Request.URL.Path, "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
