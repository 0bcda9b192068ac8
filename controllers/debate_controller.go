package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"debatecraft/catalog"
	"debatecraft/models"
	"debatecraft/pkg/logger"
	"debatecraft/services"
	"debatecraft/speech"
	"debatecraft/store"
	"debatecraft/websocket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AIService is what the debate endpoints need from the AI layer: the
// session operations plus runtime credential management.
type AIService interface {
	services.DebateAI
	HealthCheck(ctx context.Context) error
	Reconfigure(ctx context.Context, credential string) error
}

// DebateController wires the debate session machine to HTTP. Session records
// are persisted through the profile store the moment a session completes,
// whether via the end endpoint or the round limit.
type DebateController struct {
	AI       AIService
	Sessions *services.SessionManager
	Store    store.ProfileStore
	Hub      *websocket.ProgressHub
	Speech   speech.Capability
	Policy   services.SessionPolicy
}

func (dc *DebateController) speechCapability() speech.Capability {
	if dc.Speech == nil {
		return speech.Unavailable{}
	}
	return dc.Speech
}

type createSessionRequest struct {
	ProfileID string `json:"profileId" binding:"required"`
}

type selectTopicRequest struct {
	Topic string `json:"topic" binding:"required"`
}

type selectSideRequest struct {
	Side models.Side `json:"side" binding:"required"`
}

type submitArgumentRequest struct {
	Text string `json:"text"`
	// Audio carries a spoken argument (base64 over the wire); it is
	// transcribed through the injected speech capability when Text is empty.
	Audio []byte `json:"audio,omitempty"`
}

type credentialRequest struct {
	ApiKey string `json:"apiKey" binding:"required"`
}

// sessionView is the read model returned for a session.
type sessionView struct {
	ID              string                      `json:"id"`
	ProfileID       string                      `json:"profileId"`
	State           services.SessionState       `json:"state"`
	Topic           string                      `json:"topic,omitempty"`
	Round           int                         `json:"round,omitempty"`
	OpponentTurn    bool                        `json:"opponentTurn"`
	Deadline        *time.Time                  `json:"deadline,omitempty"`
	Transcript      []models.DebateMessage      `json:"transcript"`
	PendingArgument string                      `json:"pendingArgument,omitempty"`
	Record          *models.DebateSessionRecord `json:"record,omitempty"`
}

func viewOf(s *services.Session) sessionView {
	v := sessionView{
		ID:              s.ID,
		ProfileID:       s.ProfileID,
		State:           s.State(),
		Topic:           s.Topic(),
		Round:           s.Round(),
		OpponentTurn:    s.IsOpponentTurn(),
		Transcript:      s.Transcript(),
		PendingArgument: s.PendingArgument(),
		Record:          s.Record(),
	}
	if d := s.Deadline(); !d.IsZero() {
		v.Deadline = &d
	}
	return v
}

// ListTopics returns the curated topic list, or a single random pick when
// the client asks for one.
func (dc *DebateController) ListTopics(c *gin.Context) {
	if c.Query("random") != "" {
		c.JSON(http.StatusOK, gin.H{"topic": catalog.RandomTopic()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"topics": catalog.Topics})
}

// CreateSession starts a new session for an existing profile.
func (dc *DebateController) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if _, err := dc.Store.GetProfile(c.Request.Context(), req.ProfileID); err != nil {
		if errors.Is(err, store.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}

	s := dc.Sessions.Create(dc.AI, req.ProfileID, dc.Policy)
	logger.Log.Info("debate session created",
		zap.String("session", s.ID), zap.String("profileId", req.ProfileID))
	c.JSON(http.StatusCreated, viewOf(s))
}

// GetSession returns the current session view, expiring it first if its
// countdown has run out.
func (dc *DebateController) GetSession(c *gin.Context) {
	s, err := dc.Sessions.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	if s.ExpireIfDue() && s.Record() != nil {
		dc.persistCompleted(c, s)
	}
	c.JSON(http.StatusOK, viewOf(s))
}

// SelectTopic accepts a curated or free-text topic.
func (dc *DebateController) SelectTopic(c *gin.Context) {
	s, err := dc.Sessions.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	var req selectTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if err := s.SelectTopic(req.Topic); err != nil {
		respondSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(s))
}

// SelectSide fixes the user's position. When the user argues con the reply
// carries the opponent's opening statement.
func (dc *DebateController) SelectSide(c *gin.Context) {
	s, err := dc.Sessions.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	var req selectSideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	opening, err := s.SelectSide(c.Request.Context(), req.Side)
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) || errors.Is(err, services.ErrInvalidTransition) {
			respondSessionError(c, err)
			return
		}
		// Opening generation failed but the session moved on; surface the
		// notice alongside the session view.
		c.JSON(http.StatusOK, gin.H{"session": viewOf(s), "opening": opening, "opponentError": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": viewOf(s), "opening": opening})
}

// SubmitArgument plays one round. When the round limit or countdown ends the
// session, the final record is persisted before responding.
func (dc *DebateController) SubmitArgument(c *gin.Context) {
	s, err := dc.Sessions.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	var req submitArgumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	text := req.Text
	if text == "" && len(req.Audio) > 0 {
		transcribed, err := dc.speechCapability().Recognize(c.Request.Context(), req.Audio)
		if err != nil {
			if errors.Is(err, speech.ErrUnavailable) {
				c.JSON(http.StatusNotImplemented, gin.H{"error": "Voice input not available, submit text instead"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "Could not transcribe audio", "details": err.Error()})
			return
		}
		text = transcribed
	}

	result, err := s.SubmitArgument(c.Request.Context(), text)
	if err != nil {
		// The countdown can seal the session during a submission; its record
		// still has to reach the store.
		if errors.Is(err, services.ErrSessionOver) {
			dc.persistCompleted(c, s)
		}
		respondSessionError(c, err)
		return
	}

	resp := gin.H{"result": result, "session": viewOf(s)}
	if result.Ended {
		if profile := dc.persistCompleted(c, s); profile != nil {
			resp["profile"] = profile
			resp["record"] = s.Record()
		}
	}
	c.JSON(http.StatusOK, resp)
}

// EndSession forces the session to its final record and persists it.
func (dc *DebateController) EndSession(c *gin.Context) {
	s, err := dc.Sessions.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	record, err := s.End()
	if err != nil {
		respondSessionError(c, err)
		return
	}

	resp := gin.H{"record": record}
	if profile := dc.persistCompleted(c, s); profile != nil {
		resp["profile"] = profile
	}
	c.JSON(http.StatusOK, resp)
}

// persistCompleted applies the session record to the profile exactly once.
// The session stays registered until the store call succeeds: a failure
// releases the persistence claim so the client can retry via the end
// endpoint, and only a persisted session is removed from the manager.
// Progress events fan out to the profile's websocket subscribers.
func (dc *DebateController) persistCompleted(c *gin.Context, s *services.Session) *models.UserProfile {
	record := s.Record()
	if record == nil || !s.MarkPersisted() {
		return nil
	}

	before, _ := dc.Store.GetProfile(c.Request.Context(), s.ProfileID)
	after, err := dc.Store.ApplyDebateSession(c.Request.Context(), s.ProfileID, *record)
	if err != nil {
		logger.Log.Error("failed to persist debate record",
			zap.String("session", s.ID), zap.String("profileId", s.ProfileID), zap.Error(err))
		s.ClearPersisted()
		return nil
	}
	dc.Sessions.Remove(s.ID)

	if dc.Hub != nil {
		dc.Hub.Broadcast(websocket.ProgressEvent{
			Type:         "debate_completed",
			ProfileID:    after.ID,
			XP:           record.XPGained,
			DebateRecord: record,
		})
	}
	broadcastProgress(dc.Hub, before, after)
	return after
}

// AIHealth reports whether the AI backend is reachable with the active
// credential.
func (dc *DebateController) AIHealth(c *gin.Context) {
	if err := dc.AI.HealthCheck(c.Request.Context()); err != nil {
		status, body := aiErrorResponse(err)
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// SetCredential swaps the AI credential at runtime.
func (dc *DebateController) SetCredential(c *gin.Context) {
	var req credentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if err := dc.AI.Reconfigure(c.Request.Context(), req.ApiKey); err != nil {
		status, body := aiErrorResponse(err)
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "configured"})
}

// respondSessionError maps session machine errors onto HTTP statuses.
func respondSessionError(c *gin.Context, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Reason})
	case errors.Is(err, services.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrOpponentTurn):
		c.JSON(http.StatusConflict, gin.H{"error": "Wait for the opponent to finish"})
	case errors.Is(err, services.ErrSessionOver):
		c.JSON(http.StatusGone, gin.H{"error": "Session has ended"})
	default:
		status, body := aiErrorResponse(err)
		c.JSON(status, body)
	}
}

// aiErrorResponse maps AI client failures onto HTTP statuses the frontend
// can branch on.
func aiErrorResponse(err error) (int, gin.H) {
	switch {
	case errors.Is(err, services.ErrServiceUnavailable):
		return http.StatusServiceUnavailable, gin.H{"error": "AI service not configured", "code": "unavailable"}
	case errors.Is(err, services.ErrInvalidCredential):
		return http.StatusBadGateway, gin.H{"error": "AI credential rejected", "code": "invalid_credential"}
	case errors.Is(err, services.ErrRateLimited):
		return http.StatusTooManyRequests, gin.H{"error": "AI service rate limited", "code": "rate_limited"}
	case errors.Is(err, services.ErrEmptyResponse), errors.Is(err, services.ErrMalformedResponse):
		return http.StatusBadGateway, gin.H{"error": "AI service returned an unusable response", "code": "bad_response"}
	default:
		return http.StatusBadGateway, gin.H{"error": "AI service unreachable", "code": "transport"}
	}
}
