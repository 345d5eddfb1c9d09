// Package validation decides whether an answer satisfies a question's constraints.
// Every function here is total: a malformed question or value yields a failed
// Result, never a panic.
package validation

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/mbolis/quick-quiz/model"
)

type Reason string

const (
	Required      Reason = "Required"
	InvalidFormat Reason = "InvalidFormat"
)

const (
	MaskDate        = "dd/mm/yyyy"
	MaskDateNumeric = "99/99/9999"
)

// Common phone masks; any mask made of digit slots works the same way.
const (
	MaskMobile   = "(99) 99999-9999"
	MaskLandline = "(99) 9999-9999"
)

type Result struct {
	OK      bool   `json:"ok"`
	Reason  Reason `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
	InputID string `json:"inputId,omitempty"`
}

var pass = Result{OK: true}

func fail(reason Reason, msg string) Result {
	return Result{Reason: reason, Message: msg}
}

var (
	validate = validator.New()
	reDomain = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Validate checks a single input's raw text: required first, then the email
// shape, then the mask.
func Validate(input model.Input, raw string) Result {
	value := strings.TrimSpace(raw)
	if value == "" {
		if input.Required {
			return fail(Required, "This field is required")
		}
		return pass
	}

	if input.Type == model.InputEmail && !isEmail(value) {
		return fail(InvalidFormat, "Enter a valid email address")
	}

	if input.Mask != "" {
		if r := checkMask(input, value); !r.OK {
			return r
		}
	}

	return pass
}

func isEmail(s string) bool {
	return reDomain.MatchString(s) && validate.Var(s, "required,email") == nil
}

func checkMask(input model.Input, value string) Result {
	mask := input.Mask
	digits := onlyDigits(value)

	if strings.EqualFold(mask, MaskDate) || mask == MaskDateNumeric {
		if len(digits) != 8 || !isCalendarDate(digits) {
			return fail(InvalidFormat, "Enter a valid date (dd/mm/yyyy)")
		}
		return pass
	}

	slots := 0
	for _, r := range mask {
		if r == '9' || r == '0' || r == '#' {
			slots++
		}
	}
	if slots == 0 {
		return pass
	}
	if len(digits) != slots {
		if isPhone(input) {
			return fail(InvalidFormat, "Enter a valid phone number")
		}
		return fail(InvalidFormat, "Enter a value matching "+mask)
	}
	return pass
}

// isPhone reports whether the input holds a phone number, either by type or by
// an area code in parentheses at the start of its mask.
func isPhone(input model.Input) bool {
	return input.Type == model.InputTel || strings.HasPrefix(input.Mask, "(")
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < unicode.MaxASCII && unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// isCalendarDate takes ddmmyyyy and rejects dates like 31/02/2024 or 01/01/0000.
func isCalendarDate(digits string) bool {
	t, err := time.Parse("02012006", digits)
	if err != nil || t.Year() < 1 {
		return false
	}
	return t.Format("02012006") == digits
}

// ValidateQuestion applies the per-input rules to text questions and the
// question's own required flag to every other type.
func ValidateQuestion(q model.Question, answer model.Answer) Result {
	if q.ComponentType == model.Text {
		for _, input := range q.Inputs {
			if r := Validate(input, answer.Value.Field(input.ID)); !r.OK {
				r.InputID = input.ID
				return r
			}
		}
		return pass
	}

	if q.Config.Required && answer.Value.IsEmpty() {
		return fail(Required, "This question is required")
	}
	return pass
}
