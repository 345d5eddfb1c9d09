package validation

import (
	"testing"

	"github.com/mbolis/quick-quiz/model"
	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		input   model.Input
		raw     string
		reason  Reason
		message string
	}{
		{"required and blank", model.Input{Required: true}, "   ", Required, "This field is required"},
		{"optional and blank", model.Input{Type: model.InputEmail, Mask: MaskDate}, "", "", ""},
		{"plain text", model.Input{Type: model.InputText, Required: true}, "Ann", "", ""},
		{"email", model.Input{Type: model.InputEmail}, "ann@example.com", "", ""},
		{"email without dot", model.Input{Type: model.InputEmail}, "ann@example", InvalidFormat, "Enter a valid email address"},
		{"email with space", model.Input{Type: model.InputEmail}, "ann smith@example.com", InvalidFormat, "Enter a valid email address"},
		{"date", model.Input{Type: model.InputDate, Mask: MaskDate}, "29/02/2024", "", ""},
		{"numeric date mask", model.Input{Mask: MaskDateNumeric}, "01/12/1999", "", ""},
		{"not a leap year", model.Input{Mask: MaskDate}, "29/02/2023", InvalidFormat, "Enter a valid date (dd/mm/yyyy)"},
		{"month 13", model.Input{Mask: MaskDate}, "12/13/2024", InvalidFormat, "Enter a valid date (dd/mm/yyyy)"},
		{"short date", model.Input{Mask: MaskDate}, "1/1/24", InvalidFormat, "Enter a valid date (dd/mm/yyyy)"},
		{"year zero", model.Input{Mask: MaskDate}, "01/01/0000", InvalidFormat, "Enter a valid date (dd/mm/yyyy)"},
		{"first year", model.Input{Mask: MaskDate}, "01/01/0001", "", ""},
		{"mobile", model.Input{Type: model.InputTel, Mask: MaskMobile}, "(11) 98765-4321", "", ""},
		{"landline", model.Input{Type: model.InputTel, Mask: MaskLandline}, "1133334444", "", ""},
		{"short mobile", model.Input{Type: model.InputTel, Mask: MaskMobile}, "(11) 9876-432", InvalidFormat, "Enter a valid phone number"},
		{"phone mask without type", model.Input{Mask: MaskLandline}, "113333444", InvalidFormat, "Enter a valid phone number"},
		{"document mask", model.Input{Mask: "999.999.999-99"}, "123.456.789-0", InvalidFormat, "Enter a value matching 999.999.999-99"},
		{"other mask", model.Input{Mask: "999-999"}, "12-34", InvalidFormat, "Enter a value matching 999-999"},
		{"mask without slots", model.Input{Mask: "AAA"}, "anything", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Validate(tt.input, tt.raw)
			assert.Equal(t, tt.reason == "", r.OK)
			assert.Equal(t, tt.reason, r.Reason)
			assert.Equal(t, tt.message, r.Message)
		})
	}
}

func TestValidateQuestion(t *testing.T) {
	t.Run("text checks inputs in order", func(t *testing.T) {
		q := model.NewText()
		q.Inputs = []model.Input{
			{ID: "1", Type: model.InputText, Required: true},
			{ID: "2", Type: model.InputEmail, Required: true},
		}

		r := ValidateQuestion(q, model.Answer{QuestionID: q.ID, Value: model.Empty()})
		assert.False(t, r.OK)
		assert.Equal(t, "1", r.InputID)
		assert.Equal(t, Required, r.Reason)

		r = ValidateQuestion(q, model.Answer{Value: model.FieldMap(map[string]string{"1": "Ann", "2": "nope"})})
		assert.False(t, r.OK)
		assert.Equal(t, "2", r.InputID)
		assert.Equal(t, InvalidFormat, r.Reason)

		r = ValidateQuestion(q, model.Answer{Value: model.FieldMap(map[string]string{"1": "Ann", "2": "ann@example.com"})})
		assert.True(t, r.OK)
	})

	t.Run("required multiple choice", func(t *testing.T) {
		q := model.NewMultipleChoice()
		q.Config.Required = true

		r := ValidateQuestion(q, model.Answer{Value: model.Multi()})
		assert.Equal(t, Result{Reason: Required, Message: "This question is required"}, r)

		assert.True(t, ValidateQuestion(q, model.Answer{Value: model.Multi("1")}).OK)
	})

	t.Run("optional question passes empty", func(t *testing.T) {
		assert.True(t, ValidateQuestion(model.NewLongText(), model.Answer{}).OK)
	})

	t.Run("required long text ignores whitespace", func(t *testing.T) {
		q := model.NewLongText()
		q.Config.Required = true
		assert.False(t, ValidateQuestion(q, model.Answer{Value: model.Single(" \n")}).OK)
	})
}
