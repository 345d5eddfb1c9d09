// Package store is the persistence gateway: the only writer of saved quizzes,
// response logs, the editor's current quiz and the preview hand-off.
//
// Reads degrade: a payload that fails to parse is logged and treated as empty.
// Writes never silently drop data: a malformed collection is copied aside
// before being replaced.
package store

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"

	"github.com/mbolis/quick-quiz/log"
	"github.com/mbolis/quick-quiz/model"
)

const maxHistory = 200

type Gateway struct {
	kv  KV
	now func() time.Time

	// serializes read-modify-write cycles within this process; across
	// processes the last write wins
	mu sync.Mutex
}

func NewGateway(kv KV) *Gateway {
	return &Gateway{kv: kv, now: time.Now}
}

// WithClock replaces the time source, for tests.
func (g *Gateway) WithClock(now func() time.Time) *Gateway {
	g.now = now
	return g
}

func (g *Gateway) timestamp() time.Time {
	return g.now().UTC()
}

// load decodes key into dst. It reports ok=false for a missing key and wraps
// model.ErrMalformed when the payload does not parse.
func (g *Gateway) load(ctx context.Context, key string, dst any) (raw []byte, ok bool, err error) {
	raw, ok, err = g.kv.Get(ctx, key)
	if err != nil || !ok {
		return
	}
	if err = json.Unmarshal(raw, dst); err != nil {
		reflect.ValueOf(dst).Elem().SetZero()
		err = fmt.Errorf("%s: %w: %s", key, model.ErrMalformed, err)
	}
	return
}

// loadForRead degrades a malformed payload to the zero value.
func (g *Gateway) loadForRead(ctx context.Context, key string, dst any) error {
	_, _, err := g.load(ctx, key, dst)
	if isMalformed(err) {
		log.Warnf("store.read: %s", err)
		return nil
	}
	return err
}

// loadForWrite moves a malformed payload aside so the write can start fresh.
func (g *Gateway) loadForWrite(ctx context.Context, key string, dst any) error {
	raw, _, err := g.load(ctx, key, dst)
	if !isMalformed(err) {
		return err
	}

	backup := key + "_corrupt_" + strconv.FormatInt(g.timestamp().UnixMilli(), 10)
	log.Warnf("store.write: %s, moved to %s", err, backup)
	if err := g.kv.Set(ctx, backup, raw); err != nil {
		return fmt.Errorf("back up %s: %w", key, err)
	}
	return nil
}

func isMalformed(err error) bool {
	return errors.Is(err, model.ErrMalformed)
}

func (g *Gateway) save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return g.kv.Set(ctx, key, data)
}

func (g *Gateway) ListQuizzes(ctx context.Context) ([]model.Quiz, error) {
	quizzes := []model.Quiz{}
	if err := g.loadForRead(ctx, KeySavedQuizzes, &quizzes); err != nil {
		return nil, err
	}
	if quizzes == nil {
		quizzes = []model.Quiz{}
	}
	return quizzes, nil
}

func (g *Gateway) GetQuiz(ctx context.Context, id string) (model.Quiz, error) {
	quizzes, err := g.ListQuizzes(ctx)
	if err != nil {
		return model.Quiz{}, err
	}
	if i := indexOf(quizzes, id); i >= 0 {
		return quizzes[i], nil
	}
	return model.Quiz{}, fmt.Errorf("quiz %s: %w", id, model.ErrNotFound)
}

func indexOf(quizzes []model.Quiz, id string) int {
	if id == "" {
		return -1
	}
	for i, q := range quizzes {
		if q.ID == id {
			return i
		}
	}
	return -1
}

func sameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// SaveQuiz inserts a quiz with an unset or unknown id and overwrites a known
// one in place. CreatedAt is set once; UpdatedAt on every save. The view and
// response counters of a stored quiz belong to the gateway and survive an
// overwrite.
func (g *Gateway) SaveQuiz(ctx context.Context, q model.Quiz) (model.Quiz, error) {
	if err := q.Check(); err != nil {
		return model.Quiz{}, fmt.Errorf("%w: %s", model.ErrInvalid, err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	var quizzes []model.Quiz
	if err := g.loadForWrite(ctx, KeySavedQuizzes, &quizzes); err != nil {
		return model.Quiz{}, err
	}

	q = q.Clone()
	idx := indexOf(quizzes, q.ID)

	if strings.TrimSpace(q.Name) != "" {
		for _, other := range quizzes {
			if other.ID != q.ID && sameName(other.Name, q.Name) {
				return model.Quiz{}, fmt.Errorf("%q: %w", q.Name, model.ErrDuplicateName)
			}
		}
	}

	now := g.timestamp()
	action := model.ActionUpdated
	if idx < 0 {
		action = model.ActionCreated
		if q.ID == "" {
			q.ID = model.NewID()
		}
		if q.CreatedAt.IsZero() {
			q.CreatedAt = now
		}
	} else {
		stored := quizzes[idx]
		q.CreatedAt = stored.CreatedAt
		q.Views = stored.Views
		q.Responses = stored.Responses
	}
	q.UpdatedAt = now
	if q.Status == "" {
		q.Status = model.Draft
	}

	if idx < 0 {
		quizzes = append(quizzes, q)
	} else {
		quizzes[idx] = q
	}
	if err := g.save(ctx, KeySavedQuizzes, quizzes); err != nil {
		return model.Quiz{}, err
	}

	g.appendHistory(ctx, model.HistoryEntry{QuizID: q.ID, Action: action, At: now})
	log.Debugf("store.save_quiz: %s %s", action, q.ID)
	return q, nil
}

// EditQuiz applies fn to a copy of a stored quiz and saves the result under the
// write lock, so concurrent edits of one quiz apply one after the other. Identity,
// timestamps and counters stay with the gateway; the edited quiz must pass Check.
func (g *Gateway) EditQuiz(ctx context.Context, id string, fn func(q model.Quiz) (model.Quiz, error)) (model.Quiz, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var quizzes []model.Quiz
	if err := g.loadForWrite(ctx, KeySavedQuizzes, &quizzes); err != nil {
		return model.Quiz{}, err
	}
	idx := indexOf(quizzes, id)
	if idx < 0 {
		return model.Quiz{}, fmt.Errorf("quiz %s: %w", id, model.ErrNotFound)
	}

	stored := quizzes[idx]
	edited, err := fn(stored.Clone())
	if err != nil {
		return model.Quiz{}, err
	}
	if err := edited.Check(); err != nil {
		return model.Quiz{}, fmt.Errorf("%w: %s", model.ErrInvalid, err)
	}

	now := g.timestamp()
	edited.ID = stored.ID
	edited.CreatedAt = stored.CreatedAt
	edited.Views = stored.Views
	edited.Responses = stored.Responses
	edited.UpdatedAt = now
	quizzes[idx] = edited
	if err := g.save(ctx, KeySavedQuizzes, quizzes); err != nil {
		return model.Quiz{}, err
	}

	g.appendHistory(ctx, model.HistoryEntry{QuizID: id, Action: model.ActionUpdated, At: now})
	return edited, nil
}

// DeleteQuiz removes a quiz together with its response log. Deleting an
// unknown id succeeds.
func (g *Gateway) DeleteQuiz(ctx context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	var quizzes []model.Quiz
	if err := g.loadForWrite(ctx, KeySavedQuizzes, &quizzes); err != nil {
		return err
	}

	if idx := indexOf(quizzes, id); idx >= 0 {
		quizzes = append(quizzes[:idx], quizzes[idx+1:]...)
		if err := g.save(ctx, KeySavedQuizzes, quizzes); err != nil {
			return err
		}
		g.appendHistory(ctx, model.HistoryEntry{QuizID: id, Action: model.ActionDeleted, At: g.timestamp()})
	}

	if err := g.kv.Delete(ctx, ResponsesKey(id)); err != nil {
		return err
	}

	current, ok, err := g.CurrentQuizID(ctx)
	if err != nil {
		return err
	}
	if ok && current == id {
		return g.kv.Delete(ctx, KeyCurrentQuizID)
	}
	return nil
}

// DuplicateQuiz stores a deep copy under a new id and a free "(copy)" name,
// as an unpublished draft with zeroed counters.
func (g *Gateway) DuplicateQuiz(ctx context.Context, id string) (model.Quiz, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var quizzes []model.Quiz
	if err := g.loadForWrite(ctx, KeySavedQuizzes, &quizzes); err != nil {
		return model.Quiz{}, err
	}
	idx := indexOf(quizzes, id)
	if idx < 0 {
		return model.Quiz{}, fmt.Errorf("quiz %s: %w", id, model.ErrNotFound)
	}

	now := g.timestamp()
	c := quizzes[idx].Clone()
	c.ID = model.NewID()
	c.Name = copyName(quizzes, quizzes[idx].Name)
	c.Status = model.Draft
	c.PublishSettings = nil
	c.Views = 0
	c.Responses = 0
	c.CreatedAt = now
	c.UpdatedAt = now

	quizzes = append(quizzes, c)
	if err := g.save(ctx, KeySavedQuizzes, quizzes); err != nil {
		return model.Quiz{}, err
	}

	g.appendHistory(ctx, model.HistoryEntry{QuizID: c.ID, Action: model.ActionDuplicated, SourceID: id, At: now})
	return c, nil
}

func copyName(quizzes []model.Quiz, name string) string {
	base := strings.TrimSpace(name)
	if base == "" {
		base = "Untitled"
	}
	taken := func(n string) bool {
		for _, q := range quizzes {
			if sameName(q.Name, n) {
				return true
			}
		}
		return false
	}

	candidate := base + " (copy)"
	for n := 2; taken(candidate); n++ {
		candidate = fmt.Sprintf("%s (copy %d)", base, n)
	}
	return candidate
}

// mutate applies fn to a stored quiz, writes the collection back and records
// the optional history entries.
func (g *Gateway) mutate(ctx context.Context, id string, fn func(q *model.Quiz), history ...model.HistoryEntry) (model.Quiz, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var quizzes []model.Quiz
	if err := g.loadForWrite(ctx, KeySavedQuizzes, &quizzes); err != nil {
		return model.Quiz{}, err
	}
	idx := indexOf(quizzes, id)
	if idx < 0 {
		return model.Quiz{}, fmt.Errorf("quiz %s: %w", id, model.ErrNotFound)
	}

	fn(&quizzes[idx])
	if err := g.save(ctx, KeySavedQuizzes, quizzes); err != nil {
		return model.Quiz{}, err
	}
	for _, e := range history {
		g.appendHistory(ctx, e)
	}
	return quizzes[idx], nil
}

// Publish marks a quiz published and attaches its access policy. A plain
// password is replaced by its bcrypt hash; an existing hash is kept as is.
func (g *Gateway) Publish(ctx context.Context, id string, settings model.PublishSettings) (model.Quiz, error) {
	if settings.Password != "" {
		if _, err := bcrypt.Cost([]byte(settings.Password)); err != nil {
			hash, err := model.HashPassword(settings.Password)
			if err != nil {
				return model.Quiz{}, err
			}
			settings.Password = hash
		}
	}

	now := g.timestamp()
	return g.mutate(ctx, id, func(q *model.Quiz) {
		q.Status = model.Published
		q.PublishSettings = &settings
		q.UpdatedAt = now
	}, model.HistoryEntry{QuizID: id, Action: model.ActionPublished, At: now})
}

// Unpublish returns a quiz to draft. Its publish settings stay recorded.
func (g *Gateway) Unpublish(ctx context.Context, id string) (model.Quiz, error) {
	now := g.timestamp()
	return g.mutate(ctx, id, func(q *model.Quiz) {
		q.Status = model.Draft
		q.UpdatedAt = now
	}, model.HistoryEntry{QuizID: id, Action: model.ActionUnpublished, At: now})
}

// RecordView bumps the synthetic view counter.
func (g *Gateway) RecordView(ctx context.Context, id string) error {
	_, err := g.mutate(ctx, id, func(q *model.Quiz) {
		q.Views++
	})
	return err
}

// AppendResponse adds a finished response to the quiz's log and bumps the
// quiz's response counter when the quiz is still saved.
func (g *Gateway) AppendResponse(ctx context.Context, quizID string, r model.Response) error {
	if r.ID == "" {
		r.ID = model.NewID()
	}
	if r.SubmittedAt.IsZero() {
		r.SubmittedAt = g.timestamp()
	}

	g.mu.Lock()
	key := ResponsesKey(quizID)
	var responses []model.Response
	err := g.loadForWrite(ctx, key, &responses)
	if err == nil {
		err = g.save(ctx, key, append(responses, r))
	}
	g.mu.Unlock()
	if err != nil {
		return err
	}

	_, err = g.mutate(ctx, quizID, func(q *model.Quiz) {
		q.Responses++
	})
	if errors.Is(err, model.ErrNotFound) {
		return nil
	}
	return err
}

func (g *Gateway) ListResponses(ctx context.Context, quizID string) ([]model.Response, error) {
	responses := []model.Response{}
	if err := g.loadForRead(ctx, ResponsesKey(quizID), &responses); err != nil {
		return nil, err
	}
	if responses == nil {
		responses = []model.Response{}
	}
	return responses, nil
}

// StageHandoff leaves the editor's in-progress quiz for the next respondent
// session to pick up, replacing any earlier payload.
func (g *Gateway) StageHandoff(ctx context.Context, q model.Quiz) error {
	return g.save(ctx, KeyPreviewData, model.NewHandoff(q, g.timestamp()))
}

// ConsumeHandoff returns the staged payload at most once.
func (g *Gateway) ConsumeHandoff(ctx context.Context) (model.Handoff, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var h model.Handoff
	_, ok, err := g.load(ctx, KeyPreviewData, &h)
	if !ok && err == nil {
		return h, false, nil
	}
	if err != nil && !isMalformed(err) {
		return h, false, err
	}
	if delErr := g.kv.Delete(ctx, KeyPreviewData); delErr != nil {
		return h, false, delErr
	}
	if err != nil {
		log.Warnf("store.consume_handoff: %s", err)
		return model.Handoff{}, false, nil
	}
	return h, true, nil
}

func (g *Gateway) SetCurrentQuiz(ctx context.Context, id string) error {
	return g.kv.Set(ctx, KeyCurrentQuizID, []byte(id))
}

func (g *Gateway) CurrentQuizID(ctx context.Context) (string, bool, error) {
	raw, ok, err := g.kv.Get(ctx, KeyCurrentQuizID)
	if err != nil || !ok || len(raw) == 0 {
		return "", false, err
	}
	return string(raw), true, nil
}

func (g *Gateway) ClearCurrentQuiz(ctx context.Context) error {
	return g.kv.Delete(ctx, KeyCurrentQuizID)
}

func (g *Gateway) History(ctx context.Context) ([]model.HistoryEntry, error) {
	entries := []model.HistoryEntry{}
	if err := g.loadForRead(ctx, KeyEditHistory, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []model.HistoryEntry{}
	}
	return entries, nil
}

// appendHistory is best effort: a failure is logged and never fails the
// operation it describes. Callers hold g.mu.
func (g *Gateway) appendHistory(ctx context.Context, e model.HistoryEntry) {
	var entries []model.HistoryEntry
	if err := g.loadForWrite(ctx, KeyEditHistory, &entries); err != nil {
		log.Warnf("store.history: %s", err)
		return
	}
	entries = append(entries, e)
	if len(entries) > maxHistory {
		entries = entries[len(entries)-maxHistory:]
	}
	if err := g.save(ctx, KeyEditHistory, entries); err != nil {
		log.Warnf("store.history: %s", err)
	}
}
