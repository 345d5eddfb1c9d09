// Package answers accumulates one answer per question across a session.
// All operations return a fresh slice and leave their input alone.
package answers

import "github.com/mbolis/quick-quiz/model"

// Init creates exactly one answer per question, in question order.
func Init(questions []model.Question) []model.Answer {
	answers := make([]model.Answer, len(questions))
	for i, q := range questions {
		value := model.Empty()
		if q.ComponentType == model.MultipleChoice {
			value = model.Multi()
		}
		answers[i] = model.Answer{
			QuestionID:    q.ID,
			Value:         value,
			ComponentType: q.ComponentType,
		}
	}
	return answers
}

// Reset is Init under the name a restarting session uses.
func Reset(questions []model.Question) []model.Answer {
	return Init(questions)
}

func Find(answers []model.Answer, questionID string) (model.Answer, bool) {
	for _, a := range answers {
		if a.QuestionID == questionID {
			return a, true
		}
	}
	return model.Answer{}, false
}

// Set replaces the value of the matching answer. Unknown ids leave answers as they are.
func Set(answers []model.Answer, questionID string, value model.Value) []model.Answer {
	return update(answers, questionID, func(model.Value) model.Value {
		return value
	})
}

// ToggleOption adds or removes optionID on a multi-select question, or makes it
// the only selection otherwise.
func ToggleOption(answers []model.Answer, questionID, optionID string, multiSelect bool) []model.Answer {
	return update(answers, questionID, func(current model.Value) model.Value {
		if !multiSelect {
			return model.Multi(optionID)
		}

		var items []string
		if current.Kind == model.MultiValue {
			items = current.Items
		}
		out := make([]string, 0, len(items)+1)
		found := false
		for _, it := range items {
			if it == optionID {
				found = true
				continue
			}
			out = append(out, it)
		}
		if !found {
			out = append(out, optionID)
		}
		return model.Multi(out...)
	})
}

// MergeField sets one field of a multi-field answer, starting from an empty map
// when the current value holds anything else.
func MergeField(answers []model.Answer, questionID, fieldID, fieldValue string) []model.Answer {
	return update(answers, questionID, func(current model.Value) model.Value {
		fields := map[string]string{}
		if current.Kind == model.FieldsValue {
			for k, v := range current.Fields {
				fields[k] = v
			}
		}
		fields[fieldID] = fieldValue
		return model.FieldMap(fields)
	})
}

func update(answers []model.Answer, questionID string, fn func(model.Value) model.Value) []model.Answer {
	out := append([]model.Answer(nil), answers...)
	for i := range out {
		if out[i].QuestionID == questionID {
			out[i].Value = fn(out[i].Value)
			break
		}
	}
	return out
}
