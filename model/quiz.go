package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
)

func (q Quiz) QuestionByID(id string) (Question, int, bool) {
	for i, question := range q.Questions {
		if question.ID == id {
			return question, i, true
		}
	}
	return Question{}, -1, false
}

func AddQuestion(q Quiz, question Question) Quiz {
	q.Questions = append(append([]Question(nil), q.Questions...), question)
	return q
}

// ReplaceQuestion swaps in the question with the same id.
func ReplaceQuestion(q Quiz, question Question) (Quiz, error) {
	_, i, ok := q.QuestionByID(question.ID)
	if !ok {
		return q, fmt.Errorf("question %s: %w", question.ID, ErrNotFound)
	}
	q.Questions = append([]Question(nil), q.Questions...)
	q.Questions[i] = question
	return q, nil
}

func RemoveQuestion(q Quiz, id string) Quiz {
	out := make([]Question, 0, len(q.Questions))
	for _, question := range q.Questions {
		if question.ID != id {
			out = append(out, question)
		}
	}
	q.Questions = out
	return q
}

func MoveQuestion(q Quiz, from, to int) (Quiz, error) {
	questions, err := Reorder(q.Questions, from, to)
	if err != nil {
		return q, err
	}
	q.Questions = questions
	return q, nil
}

// Clone deep-copies the quiz so that edits to the copy never reach the original.
func (q Quiz) Clone() Quiz {
	c := q
	if q.Questions != nil {
		c.Questions = make([]Question, len(q.Questions))
		for i, question := range q.Questions {
			c.Questions[i] = question.Clone()
		}
	}
	if q.PublishSettings != nil {
		s := *q.PublishSettings
		if s.ResponseLimit != nil {
			limit := *s.ResponseLimit
			s.ResponseLimit = &limit
		}
		if s.ExpirationDate != nil {
			exp := *s.ExpirationDate
			s.ExpirationDate = &exp
		}
		c.PublishSettings = &s
	}
	return c
}

func (q Question) Clone() Question {
	c := q
	if q.Options != nil {
		c.Options = append([]Option{}, q.Options...)
	}
	if q.Inputs != nil {
		c.Inputs = append([]Input{}, q.Inputs...)
	}
	if q.ImageElements != nil {
		c.ImageElements = append([]ImageElement{}, q.ImageElements...)
	}
	return c
}

// Check reports every structural defect of the quiz at once.
func (q Quiz) Check() error {
	var result *multierror.Error

	questionIDs := map[string]bool{}
	for i, question := range q.Questions {
		at := "question " + strconv.Itoa(i)
		if question.ID == "" {
			result = multierror.Append(result, fmt.Errorf("%s: missing id", at))
		} else if questionIDs[question.ID] {
			result = multierror.Append(result, fmt.Errorf("%s: duplicate id %q", at, question.ID))
		}
		questionIDs[question.ID] = true

		if !question.ComponentType.Valid() {
			result = multierror.Append(result, fmt.Errorf("%s: unknown component type %q", at, question.ComponentType))
		}

		optionIDs := map[string]bool{}
		for _, o := range question.Options {
			if optionIDs[o.ID] {
				result = multierror.Append(result, fmt.Errorf("%s: duplicate option id %q", at, o.ID))
			}
			optionIDs[o.ID] = true
		}

		inputIDs := map[string]bool{}
		for _, in := range question.Inputs {
			if inputIDs[in.ID] {
				result = multierror.Append(result, fmt.Errorf("%s: duplicate input id %q", at, in.ID))
			}
			inputIDs[in.ID] = true
		}

		if question.ComponentType == Image {
			if err := checkImageElements(question.ImageElements); err != nil {
				result = multierror.Append(result, fmt.Errorf("%s: %w", at, err))
			}
		}
	}

	return result.ErrorOrNil()
}

// checkImageElements requires a permutation of the four known elements.
func checkImageElements(elements []ImageElement) error {
	if len(elements) != len(DefaultImageElements) {
		return fmt.Errorf("image elements must list %s exactly once", joinElements(DefaultImageElements))
	}
	seen := map[ImageElement]bool{}
	for _, el := range elements {
		known := false
		for _, d := range DefaultImageElements {
			if el == d {
				known = true
			}
		}
		if !known || seen[el] {
			return fmt.Errorf("image elements must list %s exactly once", joinElements(DefaultImageElements))
		}
		seen[el] = true
	}
	return nil
}

func joinElements(elements []ImageElement) string {
	s := make([]string, len(elements))
	for i, el := range elements {
		s[i] = string(el)
	}
	return strings.Join(s, ", ")
}
