package models

import "time"

// Side is the position a debater argues.
type Side string

const (
	SidePro Side = "pro"
	SideCon Side = "con"
)

// Opposite returns the other side of the motion.
func (s Side) Opposite() Side {
	if s == SidePro {
		return SideCon
	}
	return SidePro
}

// Valid reports whether s is one of the two known sides.
func (s Side) Valid() bool {
	return s == SidePro || s == SideCon
}

// Speaker identifies who produced a transcript entry.
type Speaker string

const (
	SpeakerUser Speaker = "user"
	SpeakerAI   Speaker = "ai"
)

// Feedback is the per-argument evaluation returned by the AI client.
// The session machine never computes or fabricates one of these itself.
type Feedback struct {
	Score             int      `json:"score" bson:"score"`
	Strengths         []string `json:"strengths" bson:"strengths"`
	Improvements      []string `json:"improvements" bson:"improvements"`
	FallaciesDetected []string `json:"fallaciesDetected" bson:"fallaciesDetected"`
	Suggestions       []string `json:"suggestions" bson:"suggestions"`
}

// DebateMessage is one entry in a session transcript. Feedback is set only
// on user messages that were scored.
type DebateMessage struct {
	ID        string    `json:"id" bson:"id"`
	Speaker   Speaker   `json:"speaker" bson:"speaker"`
	Content   string    `json:"content" bson:"content"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
	Feedback  *Feedback `json:"feedback,omitempty" bson:"feedback,omitempty"`
}

// DebateSessionRecord is the persisted outcome of a completed session.
// The live session object itself is discarded; only this survives.
type DebateSessionRecord struct {
	Topic           string    `json:"topic" bson:"topic"`
	Side            Side      `json:"side" bson:"side"`
	FinalScore      int       `json:"finalScore" bson:"finalScore"`
	XPGained        int       `json:"xpGained" bson:"xpGained"`
	RoundsCompleted int       `json:"roundsCompleted" bson:"roundsCompleted"`
	CompletedAt     time.Time `json:"completedAt" bson:"completedAt"`
}
