package model

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type Status string

const (
	Draft     Status = "draft"
	Published Status = "published"
)

type Quiz struct {
	ID              string           `json:"id"`
	Name            string           `json:"name" validate:"required,max=200"`
	Description     string           `json:"description"`
	Questions       []Question       `json:"questions"`
	Theme           string           `json:"theme"`
	Logo            string           `json:"logo"`
	ButtonRounded   bool             `json:"buttonRounded"`
	ButtonStyle     string           `json:"buttonStyle"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
	Status          Status           `json:"status"`
	PublishSettings *PublishSettings `json:"publishSettings"`
	Views           int              `json:"views"`
	Responses       int              `json:"responses"`
}

// NewQuiz returns an empty draft as opened by a fresh editor session.
func NewQuiz() Quiz {
	return Quiz{
		Questions:   []Question{},
		Theme:       "#000000",
		ButtonStyle: "filled",
		Status:      Draft,
	}
}

// Public strips what a respondent must not see.
func (q Quiz) Public() Quiz {
	q = q.Clone()
	if q.PublishSettings != nil {
		q.PublishSettings.Password = ""
	}
	return q
}

// PublishSettings records the access policy attached to a published quiz.
// Password holds a bcrypt hash once the quiz went through the gateway's Publish.
type PublishSettings struct {
	CustomURL      string     `json:"customUrl" validate:"omitempty,max=200"`
	Password       string     `json:"password"`
	ResponseLimit  *int       `json:"responseLimit" validate:"omitempty,min=1"`
	ExpirationDate *time.Time `json:"expirationDate"`
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored hash.
// Settings without a password accept anything.
func (s PublishSettings) CheckPassword(password string) bool {
	if s.Password == "" {
		return true
	}
	return bcrypt.CompareHashAndPassword([]byte(s.Password), []byte(password)) == nil
}

type Response struct {
	ID          string    `json:"id"`
	Answers     []Answer  `json:"answers"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Handoff is the payload an editor stages for a freshly opened respondent session.
type Handoff struct {
	Questions     []Question `json:"questions"`
	Theme         string     `json:"theme"`
	Logo          string     `json:"logo"`
	ButtonRounded bool       `json:"buttonRounded"`
	ButtonStyle   string     `json:"buttonStyle"`
	QuizID        string     `json:"quizId"`
	Timestamp     int64      `json:"timestamp"`
}

func NewHandoff(q Quiz, at time.Time) Handoff {
	return Handoff{
		Questions:     q.Questions,
		Theme:         q.Theme,
		Logo:          q.Logo,
		ButtonRounded: q.ButtonRounded,
		ButtonStyle:   q.ButtonStyle,
		QuizID:        q.ID,
		Timestamp:     at.UnixMilli(),
	}
}

// Quiz rebuilds the read-only quiz a respondent session runs from the payload.
func (h Handoff) Quiz() Quiz {
	return Quiz{
		ID:            h.QuizID,
		Questions:     h.Questions,
		Theme:         h.Theme,
		Logo:          h.Logo,
		ButtonRounded: h.ButtonRounded,
		ButtonStyle:   h.ButtonStyle,
		Status:        Draft,
	}
}

type HistoryAction string

const (
	ActionCreated     HistoryAction = "created"
	ActionUpdated     HistoryAction = "updated"
	ActionDuplicated  HistoryAction = "duplicated"
	ActionPublished   HistoryAction = "published"
	ActionUnpublished HistoryAction = "unpublished"
	ActionDeleted     HistoryAction = "deleted"
)

type HistoryEntry struct {
	QuizID   string        `json:"quizId"`
	Action   HistoryAction `json:"action"`
	SourceID string        `json:"sourceId,omitempty"`
	At       time.Time     `json:"at"`
}
