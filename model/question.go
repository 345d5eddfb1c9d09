package model

import (
	"strconv"

	"github.com/gofrs/uuid"
)

type ComponentType string

const (
	MultipleChoice ComponentType = "multiple-choice"
	Image          ComponentType = "image"
	Video          ComponentType = "video"
	Text           ComponentType = "text"
	LongText       ComponentType = "long-text"
	FinalScreen    ComponentType = "final-screen"
)

var componentTypes = []ComponentType{MultipleChoice, Image, Video, Text, LongText, FinalScreen}

func (t ComponentType) Valid() bool {
	for _, c := range componentTypes {
		if c == t {
			return true
		}
	}
	return false
}

type InputType string

const (
	InputText   InputType = "text"
	InputEmail  InputType = "email"
	InputNumber InputType = "number"
	InputTel    InputType = "tel"
	InputDate   InputType = "date"
)

type ImageElement string

const (
	ElementImage ImageElement = "image"
	ElementTitle ImageElement = "title"
	ElementCTA   ImageElement = "cta"
	ElementInput ImageElement = "input"
)

// DefaultImageElements is the render order of a fresh image question.
var DefaultImageElements = []ImageElement{ElementImage, ElementTitle, ElementCTA, ElementInput}

type Question struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Subtitle      string         `json:"subtitle"`
	ComponentType ComponentType  `json:"componentType"`
	Config        QuestionConfig `json:"config"`
	Options       []Option       `json:"options"`
	Inputs        []Input        `json:"inputs"`
	ImageElements []ImageElement `json:"imageElements"`
}

// QuestionConfig holds the display and behavior flags of every component type.
// A type reads only the fields it understands; the rest are carried along untouched.
type QuestionConfig struct {
	Required         bool   `json:"required"`
	ShowTitle        bool   `json:"showTitle"`
	ShowSubtitle     bool   `json:"showSubtitle"`
	ShowButton       bool   `json:"showButton"`
	ButtonText       string `json:"buttonText"`
	ButtonRedirect   string `json:"buttonRedirect"`
	ButtonTimer      int    `json:"buttonTimer"`
	MultiSelect      bool   `json:"multiSelect"`
	CharLimit        int    `json:"charLimit"`
	Icon             string `json:"icon"`
	ImageURL         string `json:"imageUrl"`
	ShowImage        bool   `json:"showImage"`
	ShowInput        bool   `json:"showInput"`
	InputPlaceholder string `json:"inputPlaceholder"`
	VideoURL         string `json:"videoUrl"`
	Autoplay         bool   `json:"autoplay"`
}

type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Icon string `json:"icon"`
}

type Input struct {
	ID          string    `json:"id"`
	Type        InputType `json:"type"`
	Placeholder string    `json:"placeholder"`
	Required    bool      `json:"required"`
	Mask        string    `json:"mask"`
}

func NewID() string {
	return uuid.Must(uuid.NewV4()).String()
}

// NewQuestion builds a question of the given type with a complete default config.
func NewQuestion(t ComponentType) Question {
	q := Question{
		ID:            NewID(),
		ComponentType: t,
		Config: QuestionConfig{
			ShowTitle:  true,
			ShowButton: true,
			ButtonText: "Next",
		},
	}
	q = seedDefaults(q)

	switch t {
	case MultipleChoice:
		q.Title = "Choose an option"
	case Image:
		q.Title = "Image"
		q.Config.ShowImage = true
	case Video:
		q.Title = "Video"
	case Text:
		q.Title = "Fill in your details"
	case LongText:
		q.Title = "Tell us more"
		q.Config.CharLimit = 500
		q.Config.InputPlaceholder = "Type your answer here"
	case FinalScreen:
		q.Title = "Thank you!"
		q.Config.ShowButton = false
		q.Config.ButtonText = "Finish"
	}
	return q
}

func NewMultipleChoice() Question { return NewQuestion(MultipleChoice) }
func NewImage() Question          { return NewQuestion(Image) }
func NewVideo() Question          { return NewQuestion(Video) }
func NewText() Question           { return NewQuestion(Text) }
func NewLongText() Question       { return NewQuestion(LongText) }
func NewFinalScreen() Question    { return NewQuestion(FinalScreen) }

// seedDefaults fills the collection the question's type depends on, only when it is empty.
func seedDefaults(q Question) Question {
	switch q.ComponentType {
	case MultipleChoice:
		if len(q.Options) == 0 {
			q.Options = make([]Option, 4)
			for i := range q.Options {
				n := strconv.Itoa(i + 1)
				q.Options[i] = Option{ID: n, Text: "Option " + n}
			}
		}
	case Text:
		if len(q.Inputs) == 0 {
			q.Inputs = []Input{{ID: "1", Type: InputText, Placeholder: "Your answer"}}
		}
	case Image:
		if len(q.ImageElements) == 0 {
			q.ImageElements = append([]ImageElement(nil), DefaultImageElements...)
		}
	}
	return q
}

// ChangeType switches the question variant. Config, options, inputs and image
// elements survive so that switching back restores them.
func ChangeType(q Question, t ComponentType) Question {
	q.ComponentType = t
	return seedDefaults(q)
}

// ConfigPatch carries the config fields to overwrite; nil fields are left alone.
type ConfigPatch struct {
	Required         *bool   `json:"required"`
	ShowTitle        *bool   `json:"showTitle"`
	ShowSubtitle     *bool   `json:"showSubtitle"`
	ShowButton       *bool   `json:"showButton"`
	ButtonText       *string `json:"buttonText"`
	ButtonRedirect   *string `json:"buttonRedirect"`
	ButtonTimer      *int    `json:"buttonTimer" validate:"omitempty,min=0,max=3600"`
	MultiSelect      *bool   `json:"multiSelect"`
	CharLimit        *int    `json:"charLimit" validate:"omitempty,min=0"`
	Icon             *string `json:"icon"`
	ImageURL         *string `json:"imageUrl"`
	ShowImage        *bool   `json:"showImage"`
	ShowInput        *bool   `json:"showInput"`
	InputPlaceholder *string `json:"inputPlaceholder"`
	VideoURL         *string `json:"videoUrl"`
	Autoplay         *bool   `json:"autoplay"`
}

type QuestionPatch struct {
	Title         *string        `json:"title"`
	Subtitle      *string        `json:"subtitle"`
	ComponentType *ComponentType `json:"componentType"`
	Config        *ConfigPatch   `json:"config"`
	Options       []Option       `json:"options"`
	Inputs        []Input        `json:"inputs"`
	ImageElements []ImageElement `json:"imageElements"`
}

// Update merges patch into q. Collections in the patch replace the existing ones
// wholesale; a nil collection means no change.
func Update(q Question, patch QuestionPatch) Question {
	if patch.Title != nil {
		q.Title = *patch.Title
	}
	if patch.Subtitle != nil {
		q.Subtitle = *patch.Subtitle
	}
	if patch.Config != nil {
		q.Config = MergeConfig(q.Config, *patch.Config)
	}
	if patch.Options != nil {
		q.Options = append([]Option(nil), patch.Options...)
	}
	if patch.Inputs != nil {
		q.Inputs = append([]Input(nil), patch.Inputs...)
	}
	if patch.ImageElements != nil {
		q.ImageElements = append([]ImageElement(nil), patch.ImageElements...)
	}
	if patch.ComponentType != nil && *patch.ComponentType != q.ComponentType {
		q = ChangeType(q, *patch.ComponentType)
	}
	return q
}

func MergeConfig(c QuestionConfig, p ConfigPatch) QuestionConfig {
	setBool(&c.Required, p.Required)
	setBool(&c.ShowTitle, p.ShowTitle)
	setBool(&c.ShowSubtitle, p.ShowSubtitle)
	setBool(&c.ShowButton, p.ShowButton)
	setString(&c.ButtonText, p.ButtonText)
	setString(&c.ButtonRedirect, p.ButtonRedirect)
	setInt(&c.ButtonTimer, p.ButtonTimer)
	setBool(&c.MultiSelect, p.MultiSelect)
	setInt(&c.CharLimit, p.CharLimit)
	setString(&c.Icon, p.Icon)
	setString(&c.ImageURL, p.ImageURL)
	setBool(&c.ShowImage, p.ShowImage)
	setBool(&c.ShowInput, p.ShowInput)
	setString(&c.InputPlaceholder, p.InputPlaceholder)
	setString(&c.VideoURL, p.VideoURL)
	setBool(&c.Autoplay, p.Autoplay)
	return c
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

// AddOption appends an option whose id is the next unused number.
func AddOption(q Question, text string) Question {
	ids := make([]string, len(q.Options))
	for i, o := range q.Options {
		ids[i] = o.ID
	}
	q.Options = append(append([]Option(nil), q.Options...), Option{ID: nextNumericID(ids), Text: text})
	return q
}

func RemoveOption(q Question, id string) Question {
	out := make([]Option, 0, len(q.Options))
	for _, o := range q.Options {
		if o.ID != id {
			out = append(out, o)
		}
	}
	q.Options = out
	return q
}

func AddInput(q Question, t InputType) Question {
	ids := make([]string, len(q.Inputs))
	for i, in := range q.Inputs {
		ids[i] = in.ID
	}
	q.Inputs = append(append([]Input(nil), q.Inputs...), Input{ID: nextNumericID(ids), Type: t})
	return q
}

func RemoveInput(q Question, id string) Question {
	out := make([]Input, 0, len(q.Inputs))
	for _, in := range q.Inputs {
		if in.ID != id {
			out = append(out, in)
		}
	}
	q.Inputs = out
	return q
}

func nextNumericID(ids []string) string {
	max := 0
	for _, id := range ids {
		if n, err := strconv.Atoi(id); err == nil && n > max {
			max = n
		}
	}
	return strconv.Itoa(max + 1)
}

// VisibleElements returns the image elements to render, in order, skipping those
// whose config flag is off.
func VisibleElements(q Question) []ImageElement {
	var out []ImageElement
	for _, el := range q.ImageElements {
		var show bool
		switch el {
		case ElementImage:
			show = q.Config.ShowImage
		case ElementTitle:
			show = q.Config.ShowTitle
		case ElementCTA:
			show = q.Config.ShowButton
		case ElementInput:
			show = q.Config.ShowInput
		}
		if show {
			out = append(out, el)
		}
	}
	return out
}
