package answers

import (
	"testing"

	"github.com/mbolis/quick-quiz/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func questions() []model.Question {
	return []model.Question{model.NewMultipleChoice(), model.NewText(), model.NewFinalScreen()}
}

func TestInit(t *testing.T) {
	qs := questions()
	answers := Init(qs)

	require.Len(t, answers, len(qs))
	for i, a := range answers {
		assert.Equal(t, qs[i].ID, a.QuestionID)
		assert.Equal(t, qs[i].ComponentType, a.ComponentType)
	}
	assert.Equal(t, model.Multi(), answers[0].Value)
	assert.Equal(t, model.Empty(), answers[1].Value)
	assert.Equal(t, Init(qs), Reset(qs))
}

func TestToggleOption(t *testing.T) {
	qs := questions()
	qid := qs[0].ID
	initial := Init(qs)

	t.Run("multi select adds and removes", func(t *testing.T) {
		answers := ToggleOption(initial, qid, "1", true)
		answers = ToggleOption(answers, qid, "3", true)
		a, _ := Find(answers, qid)
		assert.Equal(t, []string{"1", "3"}, a.Value.Items)

		answers = ToggleOption(answers, qid, "1", true)
		a, _ = Find(answers, qid)
		assert.Equal(t, []string{"3"}, a.Value.Items)

		answers = ToggleOption(answers, qid, "3", true)
		a, _ = Find(answers, qid)
		assert.Equal(t, model.Multi(), a.Value)
	})

	t.Run("single select replaces", func(t *testing.T) {
		answers := ToggleOption(initial, qid, "1", false)
		answers = ToggleOption(answers, qid, "2", false)
		a, _ := Find(answers, qid)
		assert.Equal(t, model.Multi("2"), a.Value)

		again := ToggleOption(answers, qid, "2", false)
		assert.Equal(t, answers, again)
	})

	t.Run("leaves input alone", func(t *testing.T) {
		ToggleOption(initial, qid, "1", true)
		a, _ := Find(initial, qid)
		assert.Equal(t, model.Multi(), a.Value)
	})
}

func TestMergeField(t *testing.T) {
	qs := questions()
	qid := qs[1].ID

	answers := MergeField(Init(qs), qid, "1", "Ann")
	answers = MergeField(answers, qid, "2", "ann@example.com")
	answers = MergeField(answers, qid, "1", "Anna")

	a, ok := Find(answers, qid)
	require.True(t, ok)
	assert.Equal(t, model.FieldMap(map[string]string{"1": "Anna", "2": "ann@example.com"}), a.Value)

	t.Run("replaces a non-map value", func(t *testing.T) {
		answers := Set(Init(qs), qid, model.Single("x"))
		answers = MergeField(answers, qid, "1", "y")
		a, _ := Find(answers, qid)
		assert.Equal(t, model.FieldMap(map[string]string{"1": "y"}), a.Value)
	})
}

func TestSetUnknownQuestion(t *testing.T) {
	initial := Init(questions())
	assert.Equal(t, initial, Set(initial, "missing", model.Single("x")))

	_, ok := Find(initial, "missing")
	assert.False(t, ok)
}
