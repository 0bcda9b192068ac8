package services

import (
	"errors"

	"debatecraft/models"
	"debatecraft/progression"
)

// Module runner errors.
var (
	ErrNoMoreSections  = errors.New("no further section")
	ErrQuizNotReached  = errors.New("quiz not reached yet")
	ErrAlreadyAnswered = errors.New("question already answered")
	ErrAnswerFirst     = errors.New("answer the current question first")
	ErrModuleFinished  = errors.New("module already finished")
	ErrInvalidOption   = errors.New("selected option out of range")
	ErrQuestionsRemain = errors.New("quiz not finished")
)

// AnswerResult is the immediate feedback shown before advancing.
type AnswerResult struct {
	Correct       bool   `json:"correct"`
	CorrectAnswer int    `json:"correctAnswer"`
	Explanation   string `json:"explanation"`
}

// ModuleResult summarizes a finished module run. XPGained feeds
// ApplyModuleCompletion; FallaciesSpotted feeds the fallacy tally.
type ModuleResult struct {
	ModuleID         string `json:"moduleId"`
	Correct          int    `json:"correct"`
	Total            int    `json:"total"`
	XPGained         int    `json:"xpGained"`
	FallaciesSpotted int    `json:"fallaciesSpotted"`
}

// ModuleRun walks a learner through one module: linear section traversal,
// then the quiz one question at a time with immediate correctness feedback.
type ModuleRun struct {
	module     models.Module
	sectionIdx int
	inQuiz     bool

	questionIdx int
	answered    bool
	correct     int
	fallacies   int
	finished    bool
}

// NewModuleRun starts at the first section.
func NewModuleRun(m models.Module) *ModuleRun {
	return &ModuleRun{module: m}
}

// CurrentSection returns the section being read, or false once the run has
// moved on to the quiz.
func (r *ModuleRun) CurrentSection() (models.Section, bool) {
	if r.inQuiz || r.sectionIdx >= len(r.module.Content.Sections) {
		return models.Section{}, false
	}
	return r.module.Content.Sections[r.sectionIdx], true
}

// NextSection advances the pager; past the last section it enters the quiz.
func (r *ModuleRun) NextSection() error {
	if r.inQuiz {
		return ErrNoMoreSections
	}
	if r.sectionIdx+1 < len(r.module.Content.Sections) {
		r.sectionIdx++
		return nil
	}
	r.inQuiz = true
	return nil
}

// PrevSection steps back one section; a no-op at the start.
func (r *ModuleRun) PrevSection() {
	if !r.inQuiz && r.sectionIdx > 0 {
		r.sectionIdx--
	}
}

// InQuiz reports whether the run has reached the quiz.
func (r *ModuleRun) InQuiz() bool { return r.inQuiz }

// CurrentQuestion returns the active quiz question.
func (r *ModuleRun) CurrentQuestion() (models.QuizQuestion, error) {
	if !r.inQuiz {
		return models.QuizQuestion{}, ErrQuizNotReached
	}
	if r.finished || r.questionIdx >= len(r.module.Content.Quiz.Questions) {
		return models.QuizQuestion{}, ErrModuleFinished
	}
	return r.module.Content.Quiz.Questions[r.questionIdx], nil
}

// Answer records the single selectable answer for the current question and
// returns the immediate feedback. Each question accepts exactly one answer.
func (r *ModuleRun) Answer(option int) (*AnswerResult, error) {
	q, err := r.CurrentQuestion()
	if err != nil {
		return nil, err
	}
	if r.answered {
		return nil, ErrAlreadyAnswered
	}
	if option < 0 || option >= len(q.Options) {
		return nil, ErrInvalidOption
	}
	r.answered = true
	correct := option == q.CorrectAnswer
	if correct {
		r.correct++
		if q.FallacyType != "" {
			r.fallacies++
		}
	}
	return &AnswerResult{
		Correct:       correct,
		CorrectAnswer: q.CorrectAnswer,
		Explanation:   q.Explanation,
	}, nil
}

// Advance moves to the next question after the feedback was shown, or
// finishes the run on the last one.
func (r *ModuleRun) Advance() error {
	if !r.inQuiz {
		return ErrQuizNotReached
	}
	if r.finished {
		return ErrModuleFinished
	}
	if !r.answered {
		return ErrAnswerFirst
	}
	r.answered = false
	if r.questionIdx+1 < len(r.module.Content.Quiz.Questions) {
		r.questionIdx++
		return nil
	}
	r.finished = true
	return nil
}

// Finished reports whether every question has been answered and advanced past.
func (r *ModuleRun) Finished() bool { return r.finished }

// Result returns the run summary; only valid once Finished.
func (r *ModuleRun) Result() (*ModuleResult, error) {
	if !r.finished {
		return nil, ErrQuestionsRemain
	}
	total := len(r.module.Content.Quiz.Questions)
	return &ModuleResult{
		ModuleID:         r.module.ID,
		Correct:          r.correct,
		Total:            total,
		XPGained:         progression.QuizXP(r.correct, total, r.module.XPReward),
		FallaciesSpotted: r.fallacies,
	}, nil
}
