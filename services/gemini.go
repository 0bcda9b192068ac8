package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"debatecraft/models"
	"debatecraft/pkg/logger"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	defaultGeminiModel = "gemini-2.5-flash"
	defaultCallTimeout = 30 * time.Second

	// historyWindow bounds how many prior turns go into a prompt.
	historyWindow = 4

	credentialPrefix    = "AIza"
	credentialMinLength = 30
)

// DebateAI is the contract the session machine depends on. The production
// implementation is AIClient; tests inject canned fakes because the model is
// non-deterministic and cannot serve as a correctness oracle.
type DebateAI interface {
	GenerateOpponentArgument(ctx context.Context, topic, lastUserArgument string, opponentSide models.Side, round int, history []models.DebateMessage) (string, error)
	ScoreArgument(ctx context.Context, argument, topic string, userSide models.Side, round int) (*models.Feedback, error)
}

// AIConfig is the explicit configuration handed to NewAIClient. An empty
// ApiKey yields a client that reports ErrServiceUnavailable until
// Reconfigure supplies a credential.
type AIConfig struct {
	ApiKey  string
	Model   string
	Timeout time.Duration
}

// AIClient wraps the Gemini SDK with prompt construction, structured-output
// parsing, and failure classification. Both operations may return different
// results for identical input; that is inherent to the model, not a bug.
type AIClient struct {
	mu      sync.Mutex
	client  *genai.Client
	model   string
	timeout time.Duration
}

// ValidateCredential rejects obviously malformed keys before any network
// call is attempted.
func ValidateCredential(key string) error {
	if !strings.HasPrefix(key, credentialPrefix) || len(key) < credentialMinLength {
		return fmt.Errorf("%w: credential must start with %q and be at least %d characters",
			ErrServiceUnavailable, credentialPrefix, credentialMinLength)
	}
	return nil
}

// NewAIClient builds the client. A missing credential is not an error at
// construction time: AI features stay disabled until one is supplied.
func NewAIClient(ctx context.Context, cfg AIConfig) (*AIClient, error) {
	c := &AIClient{
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}
	if c.model == "" {
		c.model = defaultGeminiModel
	}
	if c.timeout <= 0 {
		c.timeout = defaultCallTimeout
	}
	if cfg.ApiKey != "" {
		if err := c.Reconfigure(ctx, cfg.ApiKey); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Reconfigure validates the credential and swaps in a fresh SDK client.
// This is the only way the client transitions from unconfigured to
// configured.
func (c *AIClient) Reconfigure(ctx context.Context, credential string) error {
	if err := ValidateCredential(credential); err != nil {
		return err
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  credential,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	c.mu.Lock()
	c.client = client
	c.mu.Unlock()
	logger.Log.Info("ai client reconfigured", zap.String("model", c.model))
	return nil
}

// Configured reports whether a credential is currently active.
func (c *AIClient) Configured() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client != nil
}

func (c *AIClient) activeClient() (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		return nil, ErrServiceUnavailable
	}
	return c.client, nil
}

// invalidate drops the SDK client after an upstream credential rejection.
func (c *AIClient) invalidate() {
	c.mu.Lock()
	c.client = nil
	c.mu.Unlock()
}

// GenerateOpponentArgument asks the model for the opposing debater's next
// turn. An empty lastUserArgument requests an opening statement instead of a
// rebuttal.
func (c *AIClient) GenerateOpponentArgument(ctx context.Context, topic, lastUserArgument string, opponentSide models.Side, round int, history []models.DebateMessage) (string, error) {
	client, err := c.activeClient()
	if err != nil {
		return "", err
	}

	prompt := buildOpponentPrompt(topic, lastUserArgument, opponentSide, round, history)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", c.classifyError(err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// ScoreArgument asks the model for a strictly-typed Feedback evaluation of a
// user argument. The score is clamped to [0,100] but never invented: a
// response that cannot be parsed surfaces ErrMalformedResponse to the caller.
func (c *AIClient) ScoreArgument(ctx context.Context, argument, topic string, userSide models.Side, round int) (*models.Feedback, error) {
	client, err := c.activeClient()
	if err != nil {
		return nil, err
	}

	prompt := buildScoringPrompt(argument, topic, userSide, round)
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   feedbackResponseSchema,
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		return nil, c.classifyError(err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, ErrEmptyResponse
	}

	fb, err := parseFeedback(text)
	if err != nil {
		logger.Log.Warn("feedback parse failed", zap.Error(err), zap.String("raw", text))
		return nil, err
	}
	return fb, nil
}

// HealthCheck issues a minimal round-trip to verify the credential and
// connectivity.
func (c *AIClient) HealthCheck(ctx context.Context) error {
	client, err := c.activeClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := client.Models.GenerateContent(ctx, c.model, genai.Text("Reply with the single word: ready"), nil)
	if err != nil {
		return c.classifyError(err)
	}
	if strings.TrimSpace(resp.Text()) == "" {
		return ErrEmptyResponse
	}
	return nil
}

// classifyError maps SDK and transport failures onto the client's error
// kinds. A credential rejection additionally drops the active client so the
// caller knows to prompt for a new key.
func (c *AIClient) classifyError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "API key not valid"),
		strings.Contains(msg, "API_KEY_INVALID"),
		hasAPIErrorCode(err, http.StatusUnauthorized),
		hasAPIErrorCode(err, http.StatusForbidden):
		c.invalidate()
		return fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	case hasAPIErrorCode(err, http.StatusTooManyRequests),
		strings.Contains(msg, "RESOURCE_EXHAUSTED"),
		strings.Contains(msg, "quota"):
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	default:
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
}

func hasAPIErrorCode(err error, code int) bool {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}

// formatHistory renders the recent transcript window as speaker-tagged lines.
func formatHistory(history []models.DebateMessage) string {
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	var sb strings.Builder
	for _, msg := range history {
		label := "Human"
		if msg.Speaker == models.SpeakerAI {
			label = "Opponent"
		}
		sb.WriteString(fmt.Sprintf("%s: %s\n", label, msg.Content))
	}
	return sb.String()
}

func sideDescription(s models.Side) string {
	if s == models.SidePro {
		return "FOR (supporting the topic)"
	}
	return "AGAINST (opposing the topic)"
}

// buildOpponentPrompt builds the generation prompt. Opening statements and
// rebuttals get distinct instructions, mirroring how a structured debate
// phases its turns.
func buildOpponentPrompt(topic, lastUserArgument string, opponentSide models.Side, round int, history []models.DebateMessage) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `You are a skilled debate opponent in a live practice debate with a student.

DEBATE TOPIC: %q
YOUR POSITION: %s
CURRENT ROUND: %d

Guidelines:
- Respond naturally and directly to what the student said.
- Make contextual arguments specific to their points.
- Keep responses to 2-3 sentences for natural conversational flow.
- Provide only your own argument; never simulate the student's dialogue.
`, topic, sideDescription(opponentSide), round)

	if transcript := formatHistory(history); transcript != "" {
		fmt.Fprintf(&sb, "\nRecent transcript:\n%s", transcript)
	}

	if strings.TrimSpace(lastUserArgument) != "" {
		fmt.Fprintf(&sb, "\nThe student just said: %q\n\nCounter their point from your %s position with specific reasoning.", lastUserArgument, opponentSide)
	} else {
		fmt.Fprintf(&sb, "\nThis is your opening statement. Present your %s position on %q with one strong, specific argument.", opponentSide, topic)
	}

	return sb.String()
}

// buildScoringPrompt asks for the fixed feedback schema. The scoring rubric
// is spelled out so scores track content quality rather than a fixed band.
func buildScoringPrompt(argument, topic string, userSide models.Side, round int) string {
	return fmt.Sprintf(`Act as a debate coach evaluating one argument from a student.

DEBATE TOPIC: %q
STUDENT'S POSITION: %s
ROUND: %d
STUDENT'S ARGUMENT: %q

Scoring criteria (0-100 total):
- Relevance to topic (0-25)
- Clarity and structure (0-25)
- Evidence and reasoning (0-25)
- Debate technique and absence of fallacies (0-25)

Be specific and educational. If the argument is off-topic or very weak,
score it accordingly; if it is strong and well reasoned, score it highly.

Respond with ONLY a JSON object in this exact shape:
{
  "score": <integer 0-100>,
  "strengths": ["up to 3 specific strengths"],
  "improvements": ["up to 3 specific improvements"],
  "fallaciesDetected": ["any logical fallacies found"],
  "suggestions": ["up to 3 actionable suggestions"]
}`, topic, sideDescription(userSide), round, argument)
}
