package routes

import (
	"net/http"
	"testing"

	"github.com/mbolis/quick-quiz/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func question(t *testing.T, quiz model.Quiz, id string) model.Question {
	t.Helper()
	q, _, ok := quiz.QuestionByID(id)
	require.True(t, ok, "question %s", id)
	return q
}

func optionIDs(q model.Question) []string {
	ids := make([]string, len(q.Options))
	for i, o := range q.Options {
		ids[i] = o.ID
	}
	return ids
}

func inputIDs(q model.Question) []string {
	ids := make([]string, len(q.Inputs))
	for i, in := range q.Inputs {
		ids[i] = in.ID
	}
	return ids
}

func TestQuestionEditing(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(http.MethodPost, "/api/admin/quizzes", draft("Editable"))
	require.Equal(t, http.StatusCreated, rec.Code)
	quiz := decode[model.Quiz](t, rec)
	choiceID := quiz.Questions[0].ID
	base := "/api/admin/quizzes/" + quiz.ID + "/questions"

	rec = srv.do(http.MethodPost, base, map[string]string{"componentType": "text"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	quiz = decode[model.Quiz](t, rec)
	require.Len(t, quiz.Questions, 3)
	details := quiz.Questions[2]
	assert.Equal(t, model.Text, details.ComponentType)
	assert.Equal(t, []string{"1"}, inputIDs(details))

	rec = srv.do(http.MethodPost, base, map[string]string{"componentType": "slider"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(http.MethodPost, "/api/admin/quizzes/missing/questions", map[string]string{"componentType": "text"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	t.Run("config patches merge", func(t *testing.T) {
		rec := srv.do(http.MethodPatch, base+"/"+choiceID, map[string]any{
			"title":  "Pick any",
			"config": map[string]any{"multiSelect": true, "buttonTimer": 3},
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		q := question(t, decode[model.Quiz](t, rec), choiceID)
		assert.Equal(t, "Pick any", q.Title)
		assert.True(t, q.Config.MultiSelect)
		assert.Equal(t, 3, q.Config.ButtonTimer)
		assert.True(t, q.Config.Required)
		assert.Equal(t, "Next", q.Config.ButtonText)
		assert.Equal(t, []string{"1", "2", "3", "4"}, optionIDs(q))
	})

	t.Run("config patches are validated", func(t *testing.T) {
		for _, timer := range []int{-1, 3601} {
			rec := srv.do(http.MethodPatch, base+"/"+choiceID, map[string]any{
				"config": map[string]any{"buttonTimer": timer},
			})
			assert.Equal(t, http.StatusBadRequest, rec.Code, timer)
		}

		rec := srv.do(http.MethodPatch, base+"/"+choiceID, map[string]any{"config": map[string]any{"charLimit": -5}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = srv.do(http.MethodPatch, base+"/"+choiceID, map[string]any{"componentType": "slider"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = srv.do(http.MethodPatch, base+"/missing", map[string]any{"title": "x"})
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = srv.do(http.MethodGet, "/api/admin/quizzes/"+quiz.ID, nil)
		assert.Equal(t, 3, question(t, decode[model.Quiz](t, rec), choiceID).Config.ButtonTimer)
	})

	t.Run("options", func(t *testing.T) {
		rec := srv.do(http.MethodPost, base+"/"+choiceID+"/options", map[string]string{"text": "Other"})
		require.Equal(t, http.StatusCreated, rec.Code)
		q := question(t, decode[model.Quiz](t, rec), choiceID)
		assert.Equal(t, []string{"1", "2", "3", "4", "5"}, optionIDs(q))
		assert.Equal(t, "Other", q.Options[4].Text)

		rec = srv.do(http.MethodPost, base+"/"+choiceID+"/options/5/move", map[string]int{"to": 0})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"5", "1", "2", "3", "4"}, optionIDs(question(t, decode[model.Quiz](t, rec), choiceID)))

		rec = srv.do(http.MethodPost, base+"/"+choiceID+"/options/5/move", map[string]int{"to": 9})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = srv.do(http.MethodDelete, base+"/"+choiceID+"/options/3", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"5", "1", "2", "4"}, optionIDs(question(t, decode[model.Quiz](t, rec), choiceID)))

		rec = srv.do(http.MethodDelete, base+"/"+choiceID+"/options/3", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("inputs", func(t *testing.T) {
		rec := srv.do(http.MethodPost, base+"/"+details.ID+"/inputs", map[string]string{"type": "email"})
		require.Equal(t, http.StatusCreated, rec.Code)
		q := question(t, decode[model.Quiz](t, rec), details.ID)
		assert.Equal(t, []string{"1", "2"}, inputIDs(q))
		assert.Equal(t, model.InputEmail, q.Inputs[1].Type)

		rec = srv.do(http.MethodPost, base+"/"+details.ID+"/inputs", map[string]string{"type": "fax"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = srv.do(http.MethodDelete, base+"/"+details.ID+"/inputs/1", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"2"}, inputIDs(question(t, decode[model.Quiz](t, rec), details.ID)))

		rec = srv.do(http.MethodDelete, base+"/"+details.ID+"/inputs/1", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("changing type keeps collections", func(t *testing.T) {
		rec := srv.do(http.MethodPatch, base+"/"+details.ID, map[string]any{"componentType": "multiple-choice"})
		require.Equal(t, http.StatusOK, rec.Code)
		q := question(t, decode[model.Quiz](t, rec), details.ID)
		assert.Equal(t, model.MultipleChoice, q.ComponentType)
		assert.Equal(t, []string{"1", "2", "3", "4"}, optionIDs(q))
		assert.Equal(t, []string{"2"}, inputIDs(q))

		rec = srv.do(http.MethodPatch, base+"/"+details.ID, map[string]any{"componentType": "text"})
		require.Equal(t, http.StatusOK, rec.Code)
		q = question(t, decode[model.Quiz](t, rec), details.ID)
		assert.Equal(t, model.Text, q.ComponentType)
		assert.Equal(t, []string{"2"}, inputIDs(q))
	})

	t.Run("moving questions", func(t *testing.T) {
		rec := srv.do(http.MethodPost, base+"/"+details.ID+"/move", map[string]int{"to": 0})
		require.Equal(t, http.StatusOK, rec.Code)
		moved := decode[model.Quiz](t, rec)
		assert.Equal(t, details.ID, moved.Questions[0].ID)
		assert.Equal(t, choiceID, moved.Questions[1].ID)

		rec = srv.do(http.MethodPost, base+"/"+details.ID+"/move", map[string]int{"to": -1})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = srv.do(http.MethodPost, base+"/"+details.ID+"/move", map[string]int{"to": 3})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("image elements and removal", func(t *testing.T) {
		rec := srv.do(http.MethodPost, base, map[string]string{"componentType": "image"})
		require.Equal(t, http.StatusCreated, rec.Code)
		withImage := decode[model.Quiz](t, rec)
		image := withImage.Questions[len(withImage.Questions)-1]

		rec = srv.do(http.MethodPost, base+"/"+image.ID+"/elements/cta/move", map[string]int{"to": 0})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t,
			[]model.ImageElement{model.ElementCTA, model.ElementImage, model.ElementTitle, model.ElementInput},
			question(t, decode[model.Quiz](t, rec), image.ID).ImageElements)

		rec = srv.do(http.MethodPost, base+"/"+image.ID+"/elements/banner/move", map[string]int{"to": 0})
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = srv.do(http.MethodDelete, base+"/"+image.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[model.Quiz](t, rec).Questions, len(withImage.Questions)-1)

		rec = srv.do(http.MethodDelete, base+"/"+image.ID, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
