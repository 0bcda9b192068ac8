package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"debatecraft/models"
	"debatecraft/pkg/logger"
	"debatecraft/progression"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionState is the session machine's phase.
type SessionState string

const (
	StateTopicSelection SessionState = "topic_selection"
	StateSideSelection  SessionState = "side_selection"
	StateInProgress     SessionState = "in_progress"
	StateEnding         SessionState = "ending"
	StateCompleted      SessionState = "completed"
)

// Session machine errors. ValidationError covers rejected user input that is
// never sent upstream.
var (
	ErrInvalidTransition = errors.New("operation not allowed in current session state")
	ErrOpponentTurn      = errors.New("opponent turn in progress")
	ErrSessionOver       = errors.New("session has ended")
)

// ValidationError reports user input the session refused. The user corrects
// it and resubmits; no AI call is made for invalid input.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// TopicValidator optionally vets a topic before the machine leaves
// TopicSelection. A non-nil error keeps the session in TopicSelection.
type TopicValidator func(topic string) error

// SessionPolicy configures the end conditions for one session. RoundLimit
// and TimeLimit are alternate exits; either reaching the round limit or the
// countdown hitting zero forces the session to end.
type SessionPolicy struct {
	RoundLimit    int
	TimeLimit     time.Duration // 0 disables the countdown
	ValidateTopic TopicValidator
}

// TurnResult is what one accepted user submission produced. OpponentErr is
// set when the opponent reply failed; the user message and its feedback are
// still committed and the user keeps the next turn.
type TurnResult struct {
	UserMessage     models.DebateMessage `json:"userMessage"`
	OpponentMessage models.DebateMessage `json:"opponentMessage"`
	OpponentErr     string               `json:"opponentError,omitempty"`
	Round           int                  `json:"round"`
	Ended           bool                 `json:"ended"`
}

// Session orchestrates one practice debate: topic and side selection,
// turn-taking against the AI opponent, per-round scoring, and end-of-session
// aggregation. All methods are safe for concurrent use; the mutex is never
// held across an AI call, and an epoch counter discards responses that
// arrive after the session has ended.
type Session struct {
	ID        string
	ProfileID string
	CreatedAt time.Time

	ai     DebateAI
	policy SessionPolicy
	clock  func() time.Time

	mu          sync.Mutex
	state       SessionState
	topic       string
	userSide    models.Side
	round       int
	deadline    time.Time
	transcript  []models.DebateMessage
	roundScores []int
	pendingText string // preserved argument after a scoring failure
	aiBusy      bool
	epoch       uint64
	record      *models.DebateSessionRecord
	persisted   bool
}

// NewSession starts a session in TopicSelection.
func NewSession(ai DebateAI, profileID string, policy SessionPolicy) *Session {
	if policy.RoundLimit <= 0 {
		policy.RoundLimit = progression.DefaultRoundLimit
	}
	return &Session{
		ID:        uuid.NewString(),
		ProfileID: profileID,
		CreatedAt: time.Now(),
		ai:        ai,
		policy:    policy,
		clock:     time.Now,
	}
}

func (s *Session) init() {
	if s.state == "" {
		s.state = StateTopicSelection
	}
}

// State returns the current phase.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.init()
	return s.state
}

// Topic returns the selected topic, empty until one is accepted.
func (s *Session) Topic() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.topic
}

// Round returns the 1-based current round.
func (s *Session) Round() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.round
}

// IsOpponentTurn reports whether an AI call is outstanding; user submissions
// are rejected while it is true.
func (s *Session) IsOpponentTurn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aiBusy
}

// Transcript returns a copy of the committed messages.
func (s *Session) Transcript() []models.DebateMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.DebateMessage(nil), s.transcript...)
}

// PendingArgument returns the argument text preserved after a scoring
// failure so the user can resubmit without retyping.
func (s *Session) PendingArgument() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingText
}

// Record returns the final session record, nil until Completed.
func (s *Session) Record() *models.DebateSessionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record
}

// Deadline returns the countdown expiry, zero when no time limit is active.
func (s *Session) Deadline() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deadline
}

// SelectTopic accepts a curated or free-text topic. An empty or rejected
// topic keeps the machine in TopicSelection and triggers no AI call.
func (s *Session) SelectTopic(topic string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.init()
	if s.state != StateTopicSelection {
		return ErrInvalidTransition
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return &ValidationError{Reason: "topic must not be empty"}
	}
	if s.policy.ValidateTopic != nil {
		if err := s.policy.ValidateTopic(topic); err != nil {
			return &ValidationError{Reason: err.Error()}
		}
	}
	s.topic = topic
	s.state = StateSideSelection
	return nil
}

// SelectSide fixes the user's position and moves to InProgress round 1. When
// the user argues con, the opponent opens the debate: the returned message
// is the AI opening statement (or an inline notice when generation failed —
// the session stays usable either way).
func (s *Session) SelectSide(ctx context.Context, side models.Side) (*models.DebateMessage, error) {
	s.mu.Lock()
	s.init()
	if s.state != StateSideSelection {
		s.mu.Unlock()
		return nil, ErrInvalidTransition
	}
	if !side.Valid() {
		s.mu.Unlock()
		return nil, &ValidationError{Reason: fmt.Sprintf("side must be %q or %q", models.SidePro, models.SideCon)}
	}

	s.userSide = side
	s.state = StateInProgress
	s.round = 1
	if s.policy.TimeLimit > 0 {
		s.deadline = s.clock().Add(s.policy.TimeLimit)
	}

	if side == models.SidePro {
		s.mu.Unlock()
		return nil, nil
	}

	// Con side: the pro opponent delivers the opening statement before the
	// user's first argument.
	epoch := s.epoch
	s.aiBusy = true
	topic := s.topic
	s.mu.Unlock()

	opening, err := s.ai.GenerateOpponentArgument(ctx, topic, "", side.Opposite(), 1, nil)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch || s.state != StateInProgress {
		return nil, ErrSessionOver
	}
	s.aiBusy = false
	if err != nil {
		logger.Log.Warn("opening statement failed",
			zap.String("session", s.ID), zap.Error(err))
		msg := s.appendLocked(models.SpeakerAI, opponentFailureNotice, nil)
		return &msg, err
	}
	msg := s.appendLocked(models.SpeakerAI, opening, nil)
	return &msg, nil
}

const opponentFailureNotice = "(The opponent could not respond this turn. Present your argument to continue.)"

// SubmitArgument runs one full round: score the user's argument, commit it
// with its feedback, ask the opponent for a reply, and commit that. Commit
// order is fixed regardless of call timing. A submission while the opponent
// turn is pending is rejected without touching the transcript or the round
// counter; a scoring failure reverts the turn to the user with the argument
// preserved and the round not consumed.
func (s *Session) SubmitArgument(ctx context.Context, text string) (*TurnResult, error) {
	s.mu.Lock()
	s.init()
	if s.state == StateCompleted || s.state == StateEnding {
		s.mu.Unlock()
		return nil, ErrSessionOver
	}
	if s.state != StateInProgress {
		s.mu.Unlock()
		return nil, ErrInvalidTransition
	}
	if s.aiBusy {
		s.mu.Unlock()
		return nil, ErrOpponentTurn
	}
	text = strings.TrimSpace(text)
	if text == "" {
		s.mu.Unlock()
		return nil, &ValidationError{Reason: "argument must not be empty"}
	}
	if s.deadlineExpiredLocked() {
		s.finishLocked()
		s.mu.Unlock()
		return nil, ErrSessionOver
	}

	epoch := s.epoch
	round := s.round
	topic := s.topic
	side := s.userSide
	s.aiBusy = true
	s.pendingText = text
	s.mu.Unlock()

	feedback, err := s.ai.ScoreArgument(ctx, text, topic, side, round)

	s.mu.Lock()
	if s.epoch != epoch || s.state != StateInProgress {
		s.mu.Unlock()
		return nil, ErrSessionOver
	}
	if err != nil {
		// Turn reverts to the user: round not consumed, argument preserved.
		s.aiBusy = false
		s.mu.Unlock()
		return nil, err
	}

	userMsg := s.appendLocked(models.SpeakerUser, text, feedback)
	s.roundScores = append(s.roundScores, feedback.Score)
	s.pendingText = ""
	history := append([]models.DebateMessage(nil), s.transcript...)
	s.mu.Unlock()

	reply, genErr := s.ai.GenerateOpponentArgument(ctx, topic, text, side.Opposite(), round, history)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch || s.state != StateInProgress {
		return nil, ErrSessionOver
	}
	s.aiBusy = false

	result := &TurnResult{UserMessage: userMsg, Round: round}
	if genErr != nil {
		logger.Log.Warn("opponent reply failed",
			zap.String("session", s.ID), zap.Int("round", round), zap.Error(genErr))
		result.OpponentMessage = s.appendLocked(models.SpeakerAI, opponentFailureNotice, nil)
		result.OpponentErr = genErr.Error()
	} else {
		result.OpponentMessage = s.appendLocked(models.SpeakerAI, reply, nil)
	}

	if round >= s.policy.RoundLimit || s.deadlineExpiredLocked() {
		s.finishLocked()
		result.Ended = true
	} else {
		s.round++
	}
	return result, nil
}

// End forces the Ending transition, e.g. when the countdown expires
// mid-round, and returns the final record. Outstanding AI responses are
// discarded when they arrive.
func (s *Session) End() (*models.DebateSessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.init()
	switch s.state {
	case StateCompleted:
		return s.record, nil
	case StateInProgress:
		s.finishLocked()
		return s.record, nil
	default:
		return nil, ErrInvalidTransition
	}
}

// MarkPersisted claims the one-time right to hand the final record to the
// store. It returns false until the session is completed, and false again
// once a claim is outstanding or done, so the record cannot be applied twice.
func (s *Session) MarkPersisted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateCompleted || s.persisted {
		return false
	}
	s.persisted = true
	return true
}

// ClearPersisted releases the claim after a failed store call so a retry can
// persist the record.
func (s *Session) ClearPersisted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persisted = false
}

// ExpireIfDue ends the session if its countdown has run out. Returns true
// when the session is (now) completed.
func (s *Session) ExpireIfDue() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateCompleted {
		return true
	}
	if s.state == StateInProgress && s.deadlineExpiredLocked() {
		s.finishLocked()
		return true
	}
	return false
}

func (s *Session) deadlineExpiredLocked() bool {
	return !s.deadline.IsZero() && s.clock().After(s.deadline)
}

// finishLocked runs Ending → Completed: aggregate the per-round scores,
// derive the XP award, and seal the session. The epoch bump invalidates any
// outstanding AI call.
func (s *Session) finishLocked() {
	s.state = StateEnding
	final := progression.DebateFinalScore(s.roundScores)
	s.record = &models.DebateSessionRecord{
		Topic:           s.topic,
		Side:            s.userSide,
		FinalScore:      final,
		XPGained:        progression.DebateXP(final, len(s.roundScores)),
		RoundsCompleted: len(s.roundScores),
		CompletedAt:     s.clock(),
	}
	s.state = StateCompleted
	s.aiBusy = false
	s.epoch++
	logger.Log.Info("debate session completed",
		zap.String("session", s.ID),
		zap.Int("finalScore", final),
		zap.Int("xp", s.record.XPGained),
		zap.Int("rounds", s.record.RoundsCompleted))
}

func (s *Session) appendLocked(speaker models.Speaker, content string, fb *models.Feedback) models.DebateMessage {
	msg := models.DebateMessage{
		ID:        uuid.NewString(),
		Speaker:   speaker,
		Content:   content,
		Timestamp: s.clock(),
		Feedback:  fb,
	}
	s.transcript = append(s.transcript, msg)
	return msg
}
