package server

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/factlens/internal/model"
	"github.com/ppiankov/factlens/internal/pipeline"
	"github.com/ppiankov/factlens/internal/store"
	"github.com/ppiankov/factlens/internal/telemetry"
	"github.com/ppiankov/factlens/internal/validate"
)

type mediaRequest struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"` // base64, optionally as a data URI
	Name     string `json:"name"`
}

type analyzeRequest struct {
	Mode      string         `json:"mode"`
	InputType string         `json:"input_type" binding:"required"`
	Text      string         `json:"text"`
	URL       string         `json:"url"`
	Media     []mediaRequest `json:"media"`
	UserID    string         `json:"user_id"`
	RequestID string         `json:"request_id"`
}

type analyzeResponse struct {
	Result        model.ResultRecord `json:"result"`
	ShareText     string             `json:"share_text"`
	PersonalCount *int64             `json:"personal_count,omitempty"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"provider": s.analyzer.ProviderName(),
		"engine":   model.Profile(),
	})
}

func (s *Server) analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindError(err)})
		return
	}

	mode, ev, err := req.evidence()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validate.Evidence(ev); err != nil {
		s.badEvidence(c, err)
		return
	}

	requestID := strings.TrimSpace(req.RequestID)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	userID := strings.TrimSpace(req.UserID)
	ctx := telemetry.WithUserID(c.Request.Context(), userID)

	record, err := s.analyzer.Analyze(ctx, mode, ev, requestID)
	if err != nil {
		s.analysisFailed(c, requestID, err)
		return
	}

	resp := analyzeResponse{Result: record, ShareText: s.renderer.ShareText(record)}
	if s.counters != nil && userID != "" {
		n, err := s.counters.Increment(ctx, userID)
		if err != nil {
			s.logger.Warn("personal count update failed", zap.String("request_id", requestID), zap.Error(err))
		} else {
			resp.PersonalCount = &n
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (r analyzeRequest) evidence() (model.AnalysisMode, model.EvidenceInput, error) {
	mode, err := model.ParseMode(r.Mode)
	if err != nil {
		return "", model.EvidenceInput{}, err
	}
	inputType, err := model.ParseInputType(r.InputType)
	if err != nil {
		return "", model.EvidenceInput{}, err
	}

	ev := model.EvidenceInput{Type: inputType, Text: r.Text, URL: r.URL}
	for i, m := range r.Media {
		data, mime, err := decodeMedia(m)
		if err != nil {
			return "", model.EvidenceInput{}, fmt.Errorf("media[%d]: %w", i, err)
		}
		ev.Media = append(ev.Media, model.MediaPart{Data: data, MIMEType: mime, Name: m.Name})
	}
	return mode, ev, nil
}

// decodeMedia accepts raw base64 or a data URI; a data URI supplies the MIME type
func decodeMedia(m mediaRequest) ([]byte, string, error) {
	payload := strings.TrimSpace(m.Data)
	mime := m.MIMEType

	if strings.HasPrefix(payload, "data:") {
		header, body, ok := strings.Cut(payload, ",")
		if !ok || !strings.HasSuffix(header, ";base64") {
			return nil, "", errors.New("malformed data URI")
		}
		if mime == "" {
			mime = strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
		}
		payload = body
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("invalid base64: %w", err)
	}
	return data, mime, nil
}

func (s *Server) badEvidence(c *gin.Context, err error) {
	var ve *validate.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{"error": pipeline.UserMessage(err, s.analyzer.Locale()), "field": ve.Field})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": pipeline.UserMessage(err, s.analyzer.Locale())})
}

func (s *Server) analysisFailed(c *gin.Context, requestID string, err error) {
	msg := pipeline.UserMessage(err, s.analyzer.Locale())
	switch {
	case errors.Is(err, pipeline.ErrEmptyEvidence):
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
	case pipeline.IsInvocationError(err):
		c.JSON(http.StatusBadGateway, gin.H{"error": msg, "request_id": requestID})
	default:
		s.logger.Error("analysis failed", zap.String("request_id", requestID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg, "request_id": requestID})
	}
}

type feedbackRequest struct {
	Score     *int   `json:"score" binding:"required"`
	Comment   string `json:"comment"`
	RequestID string `json:"request_id"`
}

func (s *Server) submitFeedback(c *gin.Context) {
	if s.feedback == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "feedback is not configured"})
		return
	}

	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindError(err)})
		return
	}

	fb, err := s.feedback.Submit(c.Request.Context(), *req.Score, req.Comment, req.RequestID)
	switch {
	case errors.Is(err, telemetry.ErrInvalidScore):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		s.logger.Warn("feedback not recorded", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "feedback could not be recorded"})
	default:
		c.JSON(http.StatusOK, fb)
	}
}

func (s *Server) lastFeedback(c *gin.Context) {
	if s.feedback == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "feedback is not configured"})
		return
	}
	fb, err := s.feedback.Last(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if fb == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, fb)
}

type leadRequest struct {
	Email string `json:"email" binding:"required"`
}

func (s *Server) saveLead(c *gin.Context) {
	if s.leads == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "lead capture is not configured"})
		return
	}

	var req leadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindError(err)})
		return
	}

	added, err := s.leads.Save(c.Request.Context(), req.Email)
	switch {
	case errors.Is(err, store.ErrInvalidEmail):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		s.logger.Error("lead not saved", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lead could not be saved"})
	case added:
		c.JSON(http.StatusCreated, gin.H{"saved": true})
	default:
		c.JSON(http.StatusOK, gin.H{"saved": false})
	}
}

func (s *Server) exportLeads(c *gin.Context) {
	if s.leads == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "lead capture is not configured"})
		return
	}

	c.Header("Content-Type", "application/json; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="leads.json"`)
	c.Status(http.StatusOK)
	if err := s.leads.Export(c.Request.Context(), c.Writer); err != nil {
		s.logger.Error("lead export failed", zap.Error(err))
	}
}

func (s *Server) userCount(c *gin.Context) {
	if s.counters == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "counters are not configured"})
		return
	}

	id := c.Param("id")
	n, err := s.counters.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": id, "count": n})
}

// bindError hides validator internals behind a short message
func bindError(err error) string {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return "request body too large"
	}
	return "invalid request: " + err.Error()
}
