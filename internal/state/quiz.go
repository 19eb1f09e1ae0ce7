package state

import (
	"maps"
	"sync"

	"github.com/KirkDiggler/rpg-saga/internal/entities"
)

// QuizEventKind names the mutation a QuizEvent reports
type QuizEventKind string

// QuizEventKind constants
const (
	QuizAnswered  QuizEventKind = "answered"
	QuizNavigated QuizEventKind = "navigated"
	QuizCompleted QuizEventKind = "completed"
	QuizReset     QuizEventKind = "reset"
	QuizRestored  QuizEventKind = "restored"
)

// QuizState is a copy of the quiz store
type QuizState struct {
	CurrentQuestionIndex int
	Answers              map[string]string
	IsComplete           bool
	Progress             int
}

// QuizEvent is delivered to quiz subscribers
type QuizEvent struct {
	Kind  QuizEventKind
	State QuizState
}

// QuizStore holds quiz answers and position. Visibility of conditional
// questions is derived from the answers on every read.
type QuizStore struct {
	mu      sync.RWMutex
	catalog *entities.QuestionCatalog

	index      int
	answers    map[string]string
	isComplete bool
	progress   int

	subs listeners[QuizEvent]
}

// NewQuizStore returns an empty quiz over catalog. A nil catalog uses the
// embedded default.
func NewQuizStore(catalog *entities.QuestionCatalog) *QuizStore {
	if catalog == nil {
		catalog = entities.DefaultCatalog()
	}
	return &QuizStore{
		catalog: catalog,
		answers: map[string]string{},
	}
}

// Subscribe registers fn for every quiz mutation and returns its removal func
func (q *QuizStore) Subscribe(fn func(QuizEvent)) func() {
	return q.subs.add(fn)
}

// State returns a copy of the quiz state
func (q *QuizStore) State() QuizState {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.stateLocked()
}

// Answers returns a copy of the recorded answers
func (q *QuizStore) Answers() map[string]string {
	return q.State().Answers
}

// VisibleQuestions returns the questions shown for the current answers
func (q *QuizStore) VisibleQuestions() []entities.Question {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.catalog.Visible(q.answers)
}

// TotalQuestions is the number of visible questions
func (q *QuizStore) TotalQuestions() int {
	return len(q.VisibleQuestions())
}

// CurrentQuestion returns the question at the current index
func (q *QuizStore) CurrentQuestion() (entities.Question, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.currentLocked()
}

// SetAnswer validates and records answer, then recomputes progress over the
// questions visible after the change
func (q *QuizStore) SetAnswer(questionID, answer string) error {
	if err := entities.ValidateAnswer(questionID, answer); err != nil {
		return err
	}

	q.mutate(QuizAnswered, func() {
		q.answers[questionID] = answer
		q.progress = q.progressLocked()
	})
	return nil
}

// Next moves forward one question, stopping at the last visible one
func (q *QuizStore) Next() {
	q.mutate(QuizNavigated, func() {
		q.index = q.clampLocked(q.index + 1)
	})
}

// Previous moves back one question, stopping at the first
func (q *QuizStore) Previous() {
	q.mutate(QuizNavigated, func() {
		q.index = max(q.index-1, 0)
	})
}

// GoTo jumps to index, clamped to the visible range
func (q *QuizStore) GoTo(index int) {
	q.mutate(QuizNavigated, func() {
		q.index = q.clampLocked(index)
	})
}

// Complete marks the quiz finished
func (q *QuizStore) Complete() {
	q.mutate(QuizCompleted, func() {
		q.isComplete = true
		q.progress = 100
	})
}

// Reset clears answers and position
func (q *QuizStore) Reset() {
	q.mutate(QuizReset, func() {
		q.index = 0
		q.answers = map[string]string{}
		q.isComplete = false
		q.progress = 0
	})
}

// IsCurrentQuestionAnswered reports whether the current question is
// satisfied. Optional questions always are.
func (q *QuizStore) IsCurrentQuestionAnswered() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.currentAnsweredLocked()
}

// CanProceedToNext reports whether Next would advance past an answered question
func (q *QuizStore) CanProceedToNext() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.index < len(q.catalog.Visible(q.answers))-1 && q.currentAnsweredLocked()
}

// CanGoToPrevious reports whether Previous would move
func (q *QuizStore) CanGoToPrevious() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.index > 0
}

// RomanticPartnerOptions lists partner options for the current gender answer
func (q *QuizStore) RomanticPartnerOptions() []string {
	q.mu.RLock()
	defer q.mu.RUnlock()

	gender, ok := entities.ParseGender(q.answers[entities.QuestionGender])
	if !ok {
		return nil
	}
	return q.catalog.RomanticPartnerOptions(gender)
}

// Snapshot returns the persisted fields
func (q *QuizStore) Snapshot() *entities.QuizSnapshot {
	s := q.State()
	return &entities.QuizSnapshot{
		CurrentQuestionIndex: s.CurrentQuestionIndex,
		Answers:              s.Answers,
		IsComplete:           s.IsComplete,
		Progress:             s.Progress,
	}
}

// Restore replaces the quiz with a persisted snapshot
func (q *QuizStore) Restore(snap *entities.QuizSnapshot) {
	if snap == nil {
		return
	}
	q.mutate(QuizRestored, func() {
		q.answers = maps.Clone(snap.Answers)
		if q.answers == nil {
			q.answers = map[string]string{}
		}
		q.isComplete = snap.IsComplete
		q.progress = snap.Progress
		q.index = q.clampLocked(snap.CurrentQuestionIndex)
	})
}

func (q *QuizStore) mutate(kind QuizEventKind, fn func()) {
	q.mu.Lock()
	fn()
	out := q.stateLocked()
	q.mu.Unlock()

	q.subs.notify(QuizEvent{Kind: kind, State: out})
}

func (q *QuizStore) stateLocked() QuizState {
	return QuizState{
		CurrentQuestionIndex: q.index,
		Answers:              maps.Clone(q.answers),
		IsComplete:           q.isComplete,
		Progress:             q.progress,
	}
}

func (q *QuizStore) currentLocked() (entities.Question, bool) {
	visible := q.catalog.Visible(q.answers)
	if q.index < 0 || q.index >= len(visible) {
		return entities.Question{}, false
	}
	return visible[q.index], true
}

func (q *QuizStore) currentAnsweredLocked() bool {
	current, ok := q.currentLocked()
	if !ok {
		return false
	}
	if !current.Required {
		return true
	}
	return q.answers[current.ID] != ""
}

func (q *QuizStore) clampLocked(index int) int {
	last := len(q.catalog.Visible(q.answers)) - 1
	return max(0, min(index, last))
}

func (q *QuizStore) progressLocked() int {
	visible := q.catalog.Visible(q.answers)
	if len(visible) == 0 {
		return 0
	}
	answered := 0
	for _, question := range visible {
		if _, ok := q.answers[question.ID]; ok {
			answered++
		}
	}
	return (answered*100 + len(visible)/2) / len(visible)
}
