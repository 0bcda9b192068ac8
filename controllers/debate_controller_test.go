package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"debatecraft/models"
	"debatecraft/services"
	"debatecraft/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAIService backs the debate HTTP tests with canned responses.
type fakeAIService struct {
	score     int
	scoreErr  error
	genErr    error
	healthErr error
	reconfErr error
}

func (f *fakeAIService) GenerateOpponentArgument(_ context.Context, _, _ string, _ models.Side, round int, _ []models.DebateMessage) (string, error) {
	if f.genErr != nil {
		return "", f.genErr
	}
	return fmt.Sprintf("rebuttal %d", round), nil
}

func (f *fakeAIService) ScoreArgument(context.Context, string, string, models.Side, int) (*models.Feedback, error) {
	if f.scoreErr != nil {
		return nil, f.scoreErr
	}
	return &models.Feedback{Score: f.score}, nil
}

func (f *fakeAIService) HealthCheck(context.Context) error         { return f.healthErr }
func (f *fakeAIService) Reconfigure(context.Context, string) error { return f.reconfErr }

func debateTestRouter(ai AIService, profiles store.ProfileStore) (*gin.Engine, *services.SessionManager) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	sessions := services.NewSessionManager()
	dc := &DebateController{
		AI:       ai,
		Sessions: sessions,
		Store:    profiles,
		Policy:   services.SessionPolicy{RoundLimit: 2},
	}
	router.GET("/debate/topics", dc.ListTopics)
	router.POST("/debate/session", dc.CreateSession)
	router.GET("/debate/session/:id", dc.GetSession)
	router.POST("/debate/session/:id/topic", dc.SelectTopic)
	router.POST("/debate/session/:id/side", dc.SelectSide)
	router.POST("/debate/session/:id/argument", dc.SubmitArgument)
	router.POST("/debate/session/:id/end", dc.EndSession)
	router.GET("/debate/ai/health", dc.AIHealth)
	router.POST("/debate/ai/credential", dc.SetCredential)
	return router, sessions
}

func TestDebateTopics(t *testing.T) {
	router, _ := debateTestRouter(&fakeAIService{score: 80}, store.NewLocalStore())

	w := doJSON(t, router, http.MethodGet, "/debate/topics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Topics []string `json:"topics"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Topics, 10)

	curated := map[string]bool{}
	for _, topic := range resp.Topics {
		curated[topic] = true
	}
	w = doJSON(t, router, http.MethodGet, "/debate/topics?random=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var pick struct {
		Topic string `json:"topic"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pick))
	assert.True(t, curated[pick.Topic], "random pick comes from the curated list")
}

func TestDebateFullFlowOverHTTP(t *testing.T) {
	profiles := store.NewLocalStore()
	router, _ := debateTestRouter(&fakeAIService{score: 80}, profiles)

	created, err := profiles.CreateProfile(context.Background(), &models.UserProfile{ID: "u1", Name: "Casey"})
	require.NoError(t, err)

	w := doJSON(t, router, http.MethodPost, "/debate/session", gin.H{"profileId": created.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var view struct {
		ID    string `json:"id"`
		State string `json:"state"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "topic_selection", view.State)
	base := "/debate/session/" + view.ID

	w = doJSON(t, router, http.MethodPost, base+"/topic", gin.H{"topic": "School uniforms should be mandatory"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodPost, base+"/side", gin.H{"side": "pro"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodPost, base+"/argument", gin.H{"text": "Uniforms reduce bullying."})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var turn struct {
		Result services.TurnResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &turn))
	assert.False(t, turn.Result.Ended)
	require.NotNil(t, turn.Result.UserMessage.Feedback)
	assert.Equal(t, 80, turn.Result.UserMessage.Feedback.Score)

	// Second argument hits the round limit; record persists to the profile.
	w = doJSON(t, router, http.MethodPost, base+"/argument", gin.H{"text": "They also save families money."})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var final struct {
		Result  services.TurnResult        `json:"result"`
		Profile models.UserProfile         `json:"profile"`
		Record  models.DebateSessionRecord `json:"record"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &final))
	assert.True(t, final.Result.Ended)
	assert.Equal(t, 80, final.Record.FinalScore)
	assert.Equal(t, 2, final.Record.RoundsCompleted)
	assert.Len(t, final.Profile.DebateHistory, 1)
	assert.Equal(t, final.Record.XPGained, final.Profile.XP)

	// Session is gone once persisted; retries cannot double-award.
	w = doJSON(t, router, http.MethodPost, base+"/end", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	p, err := profiles.GetProfile(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Len(t, p.DebateHistory, 1)
}

func TestDebateEndEarlyOverHTTP(t *testing.T) {
	profiles := store.NewLocalStore()
	router, _ := debateTestRouter(&fakeAIService{score: 90}, profiles)
	_, err := profiles.CreateProfile(context.Background(), &models.UserProfile{ID: "u1", Name: "Casey"})
	require.NoError(t, err)

	w := doJSON(t, router, http.MethodPost, "/debate/session", gin.H{"profileId": "u1"})
	require.Equal(t, http.StatusCreated, w.Code)
	var view struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	base := "/debate/session/" + view.ID

	doJSON(t, router, http.MethodPost, base+"/topic", gin.H{"topic": "Fast food restaurants should be banned near schools"})
	doJSON(t, router, http.MethodPost, base+"/side", gin.H{"side": "pro"})
	doJSON(t, router, http.MethodPost, base+"/argument", gin.H{"text": "Proximity drives habitual consumption."})

	w = doJSON(t, router, http.MethodPost, base+"/end", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Record  models.DebateSessionRecord `json:"record"`
		Profile models.UserProfile         `json:"profile"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 90, resp.Record.FinalScore)
	assert.Equal(t, 1, resp.Record.RoundsCompleted)
	assert.Equal(t, resp.Record.XPGained, resp.Profile.XP)
}

func TestDebateSessionErrorsOverHTTP(t *testing.T) {
	profiles := store.NewLocalStore()
	router, _ := debateTestRouter(&fakeAIService{score: 80, scoreErr: services.ErrRateLimited}, profiles)
	_, err := profiles.CreateProfile(context.Background(), &models.UserProfile{ID: "u1", Name: "Casey"})
	require.NoError(t, err)

	w := doJSON(t, router, http.MethodPost, "/debate/session", gin.H{"profileId": "ghost"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodPost, "/debate/session", gin.H{"profileId": "u1"})
	require.Equal(t, http.StatusCreated, w.Code)
	var view struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	base := "/debate/session/" + view.ID

	// Wrong order: side before topic.
	w = doJSON(t, router, http.MethodPost, base+"/side", gin.H{"side": "pro"})
	assert.Equal(t, http.StatusConflict, w.Code)

	doJSON(t, router, http.MethodPost, base+"/topic", gin.H{"topic": "Online learning is better than traditional classroom education"})
	doJSON(t, router, http.MethodPost, base+"/side", gin.H{"side": "pro"})

	// Upstream rate limit surfaces as 429 and the turn stays with the user.
	w = doJSON(t, router, http.MethodPost, base+"/argument", gin.H{"text": "Flexibility beats fixed schedules."})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	w = doJSON(t, router, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var state struct {
		State           string `json:"state"`
		PendingArgument string `json:"pendingArgument"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, "in_progress", state.State)
	assert.Equal(t, "Flexibility beats fixed schedules.", state.PendingArgument)

	w = doJSON(t, router, http.MethodGet, "/debate/session/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

type fakeSpeech struct {
	transcript string
}

func (f fakeSpeech) Recognize(context.Context, []byte) (string, error)      { return f.transcript, nil }
func (f fakeSpeech) Speak(context.Context, string, float64) ([]byte, error) { return nil, nil }

func startSessionOverHTTP(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/debate/session", gin.H{"profileId": "u1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var view struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	base := "/debate/session/" + view.ID
	doJSON(t, router, http.MethodPost, base+"/topic", gin.H{"topic": "Climate change is the most pressing issue of our time"})
	doJSON(t, router, http.MethodPost, base+"/side", gin.H{"side": "pro"})
	return base
}

func TestSpokenArgumentWithoutBackendRefused(t *testing.T) {
	profiles := store.NewLocalStore()
	router, _ := debateTestRouter(&fakeAIService{score: 75}, profiles)
	_, err := profiles.CreateProfile(context.Background(), &models.UserProfile{ID: "u1", Name: "Casey"})
	require.NoError(t, err)
	base := startSessionOverHTTP(t, router)

	w := doJSON(t, router, http.MethodPost, base+"/argument", gin.H{"audio": []byte{1, 2, 3}})
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestSpokenArgumentTranscribed(t *testing.T) {
	profiles := store.NewLocalStore()
	router, sessions := debateTestRouter(&fakeAIService{score: 75}, profiles)
	_, err := profiles.CreateProfile(context.Background(), &models.UserProfile{ID: "u1", Name: "Casey"})
	require.NoError(t, err)
	base := startSessionOverHTTP(t, router)

	// Same session manager, speech capability injected.
	dc := &DebateController{
		AI:       &fakeAIService{score: 75},
		Sessions: sessions,
		Store:    profiles,
		Speech:   fakeSpeech{transcript: "Warming trends are accelerating."},
		Policy:   services.SessionPolicy{RoundLimit: 2},
	}
	spoken := gin.New()
	spoken.POST("/debate/session/:id/argument", dc.SubmitArgument)

	w := doJSON(t, spoken, http.MethodPost, base+"/argument", gin.H{"audio": []byte{1, 2, 3}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var turn struct {
		Result services.TurnResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &turn))
	assert.Equal(t, "Warming trends are accelerating.", turn.Result.UserMessage.Content)
}

// outageStore fails debate persistence on demand while delegating
// everything else.
type outageStore struct {
	store.ProfileStore
	down bool
}

func (o *outageStore) ApplyDebateSession(ctx context.Context, id string, rec models.DebateSessionRecord) (*models.UserProfile, error) {
	if o.down {
		return nil, errors.New("backend down")
	}
	return o.ProfileStore.ApplyDebateSession(ctx, id, rec)
}

func TestDebateRecordSurvivesStoreOutage(t *testing.T) {
	profiles := store.NewLocalStore()
	flaky := &outageStore{ProfileStore: profiles, down: true}
	router, _ := debateTestRouter(&fakeAIService{score: 80}, flaky)
	_, err := profiles.CreateProfile(context.Background(), &models.UserProfile{ID: "u1", Name: "Casey"})
	require.NoError(t, err)
	base := startSessionOverHTTP(t, router)

	doJSON(t, router, http.MethodPost, base+"/argument", gin.H{"text": "First argument."})
	w := doJSON(t, router, http.MethodPost, base+"/argument", gin.H{"text": "Second argument."})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var ended map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ended))
	assert.NotContains(t, ended, "profile", "nothing persisted while the store is down")

	// The session is still addressable, and the record is intact.
	w = doJSON(t, router, http.MethodPost, base+"/end", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	p, err := profiles.GetProfile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Zero(t, p.XP)
	assert.Empty(t, p.DebateHistory)

	// Once the store recovers, retrying the end endpoint lands the record.
	flaky.down = false
	w = doJSON(t, router, http.MethodPost, base+"/end", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Record  models.DebateSessionRecord `json:"record"`
		Profile models.UserProfile         `json:"profile"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 80, resp.Record.FinalScore)
	assert.Equal(t, resp.Record.XPGained, resp.Profile.XP)
	require.Len(t, resp.Profile.DebateHistory, 1)

	// Persisted exactly once: the session is gone and the XP is final.
	w = doJSON(t, router, http.MethodPost, base+"/end", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	p, err = profiles.GetProfile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, resp.Record.XPGained, p.XP)
	assert.Len(t, p.DebateHistory, 1)
}

func TestAIHealthAndCredentialEndpoints(t *testing.T) {
	ai := &fakeAIService{}
	router, _ := debateTestRouter(ai, store.NewLocalStore())

	w := doJSON(t, router, http.MethodGet, "/debate/ai/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	ai.healthErr = services.ErrServiceUnavailable
	w = doJSON(t, router, http.MethodGet, "/debate/ai/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = doJSON(t, router, http.MethodPost, "/debate/ai/credential", gin.H{"apiKey": "AIzaSyA1234567890abcdefghijklmnop"})
	assert.Equal(t, http.StatusOK, w.Code)

	ai.reconfErr = services.ErrInvalidCredential
	w = doJSON(t, router, http.MethodPost, "/debate/ai/credential", gin.H{"apiKey": "AIzaBadKey1234567890abcdefghij"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
}
