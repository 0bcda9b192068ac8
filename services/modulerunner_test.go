package services

import (
	"testing"

	"debatecraft/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func introModuleRun(t *testing.T) *ModuleRun {
	t.Helper()
	mod, ok := catalog.ModuleByID("intro-to-debate")
	require.True(t, ok)
	return NewModuleRun(mod)
}

func TestModuleRunSectionTraversal(t *testing.T) {
	r := introModuleRun(t)

	sec, ok := r.CurrentSection()
	require.True(t, ok)
	assert.Equal(t, "what-is-debate", sec.ID)

	require.NoError(t, r.NextSection())
	sec, ok = r.CurrentSection()
	require.True(t, ok)
	assert.Equal(t, "debate-structure", sec.ID)

	r.PrevSection()
	sec, _ = r.CurrentSection()
	assert.Equal(t, "what-is-debate", sec.ID)
	r.PrevSection()
	sec, _ = r.CurrentSection()
	assert.Equal(t, "what-is-debate", sec.ID, "backing past the start stays put")

	require.NoError(t, r.NextSection())
	require.NoError(t, r.NextSection())
	assert.True(t, r.InQuiz())
	_, ok = r.CurrentSection()
	assert.False(t, ok)
	assert.ErrorIs(t, r.NextSection(), ErrNoMoreSections)
}

func TestModuleRunQuizGating(t *testing.T) {
	r := introModuleRun(t)

	_, err := r.CurrentQuestion()
	assert.ErrorIs(t, err, ErrQuizNotReached)
	_, err = r.Answer(0)
	assert.ErrorIs(t, err, ErrQuizNotReached)
	assert.ErrorIs(t, r.Advance(), ErrQuizNotReached)
	_, err = r.Result()
	assert.ErrorIs(t, err, ErrQuestionsRemain)
}

func TestModuleRunQuizFlow(t *testing.T) {
	r := introModuleRun(t)
	require.NoError(t, r.NextSection())
	require.NoError(t, r.NextSection())
	require.True(t, r.InQuiz())

	// q1: answer correctly.
	q, err := r.CurrentQuestion()
	require.NoError(t, err)
	assert.Equal(t, "q1", q.ID)

	assert.ErrorIs(t, r.Advance(), ErrAnswerFirst)

	res, err := r.Answer(q.CorrectAnswer)
	require.NoError(t, err)
	assert.True(t, res.Correct)
	assert.Equal(t, q.Explanation, res.Explanation)

	_, err = r.Answer(0)
	assert.ErrorIs(t, err, ErrAlreadyAnswered)
	require.NoError(t, r.Advance())

	// q2: answer incorrectly.
	q, err = r.CurrentQuestion()
	require.NoError(t, err)
	assert.Equal(t, "q2", q.ID)

	_, err = r.Answer(-1)
	assert.ErrorIs(t, err, ErrInvalidOption)
	_, err = r.Answer(len(q.Options))
	assert.ErrorIs(t, err, ErrInvalidOption)

	res, err = r.Answer((q.CorrectAnswer + 1) % len(q.Options))
	require.NoError(t, err)
	assert.False(t, res.Correct)
	assert.Equal(t, q.CorrectAnswer, res.CorrectAnswer)
	require.NoError(t, r.Advance())

	require.True(t, r.Finished())
	assert.ErrorIs(t, r.Advance(), ErrModuleFinished)

	result, err := r.Result()
	require.NoError(t, err)
	assert.Equal(t, "intro-to-debate", result.ModuleID)
	assert.Equal(t, 1, result.Correct)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 50, result.XPGained, "half right earns half the reward")
	assert.Equal(t, 0, result.FallaciesSpotted)
}

func TestModuleRunCountsFallacies(t *testing.T) {
	mod, ok := catalog.ModuleByID("logical-fallacies")
	require.True(t, ok)
	r := NewModuleRun(mod)
	require.NoError(t, r.NextSection())
	require.True(t, r.InQuiz())

	for !r.Finished() {
		q, err := r.CurrentQuestion()
		require.NoError(t, err)
		_, err = r.Answer(q.CorrectAnswer)
		require.NoError(t, err)
		require.NoError(t, r.Advance())
	}

	result, err := r.Result()
	require.NoError(t, err)
	assert.Equal(t, 2, result.Correct)
	assert.Equal(t, 2, result.FallaciesSpotted, "both questions are fallacy-tagged")
	assert.Equal(t, 150, result.XPGained)
}
