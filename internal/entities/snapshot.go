package entities

import "time"

// SessionSnapshot is the persisted copy of the quiz, player, ui and story
// stores. Timestamp is in Unix milliseconds.
type SessionSnapshot struct {
	Quiz      *QuizSnapshot   `json:"quiz,omitempty"`
	Player    *PlayerSnapshot `json:"player,omitempty"`
	UI        *UISnapshot     `json:"ui,omitempty"`
	Story     *StorySnapshot  `json:"story,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// QuizSnapshot holds the observable quiz fields
type QuizSnapshot struct {
	CurrentQuestionIndex int               `json:"currentQuestionIndex"`
	Answers              map[string]string `json:"answers"`
	IsComplete           bool              `json:"isComplete"`
	Progress             int               `json:"progress"`
}

// PlayerSnapshot holds the profile and its cached completeness
type PlayerSnapshot struct {
	Profile           Profile `json:"profile"`
	IsProfileComplete bool    `json:"isProfileComplete"`
}

// UISnapshot holds the current page
type UISnapshot struct {
	CurrentPage Page `json:"currentPage"`
}

// StorySnapshot holds the narrative, last request and generation time.
// GenerationTimestamp is in Unix milliseconds.
type StorySnapshot struct {
	GeneratedStory        *Narrative         `json:"generatedStory"`
	LastGenerationRequest *GenerationRequest `json:"lastGenerationRequest"`
	GenerationTimestamp   *int64             `json:"generationTimestamp"`
}

// CapturedAt returns the capture time
func (s *SessionSnapshot) CapturedAt() time.Time {
	return time.UnixMilli(s.Timestamp)
}

// Expired reports whether the snapshot is older than maxAge at now
func (s *SessionSnapshot) Expired(now time.Time, maxAge time.Duration) bool {
	return now.Sub(s.CapturedAt()) > maxAge
}
