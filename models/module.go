package models

// Difficulty grades a learning module.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Section is one page of instructional content.
type Section struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Examples  []string `json:"examples"`
	KeyPoints []string `json:"keyPoints"`
}

// QuizQuestion has exactly one correct option. FallacyType tags questions
// that test fallacy identification; correct answers to tagged questions
// count toward the fallacy-spotting achievement.
type QuizQuestion struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
	FallacyType   string   `json:"fallacyType,omitempty"`
}

// Quiz is the ordered question set closing a module.
type Quiz struct {
	Questions []QuizQuestion `json:"questions"`
}

// ModuleContent is the ordered sections plus the closing quiz.
type ModuleContent struct {
	Sections []Section `json:"sections"`
	Quiz     Quiz      `json:"quiz"`
}

// Module is a static content definition from the catalog. Prerequisite, when
// set, names the module that must be completed first; the chain is linear,
// not a graph.
type Module struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Difficulty    Difficulty    `json:"difficulty"`
	XPReward      int           `json:"xpReward"`
	EstimatedTime int           `json:"estimatedTime"`
	Prerequisite  string        `json:"prerequisite,omitempty"`
	Content       ModuleContent `json:"content"`
}
