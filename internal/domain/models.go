package domain

import (
	"strconv"
	"time"
)

// Question is a multiple-choice question. The answer key is the literal text of
// one of the options.
type Question struct {
	Prompt        string   `json:"question" validate:"required"`
	Options       []string `json:"options" validate:"min=2,dive,required"`
	CorrectAnswer string   `json:"correctAnswer" validate:"required"`
	Explanation   string   `json:"explanation"`
}

// TryOutDraft is the authoring input for a try-out package.
type TryOutDraft struct {
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description" validate:"required"`
	Duration    int        `json:"duration" validate:"gt=0"`
	Questions   []Question `json:"questions" validate:"min=1"`
}

// TryOut is a titled, timed mock exam. Questions are embedded in the package
// document, so later edits to a chapter question bank never reach it.
type TryOut struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Duration    int        `json:"duration"` // minutes
	Questions   []Question `json:"questions"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// AnswerKey returns the correct answer of every question in order.
func (t TryOut) AnswerKey() []string {
	key := make([]string, len(t.Questions))
	for i, q := range t.Questions {
		key[i] = q.CorrectAnswer
	}
	return key
}

// Attempt is one participant's scored submission against a try-out.
type Attempt struct {
	ID              string    `json:"id"`
	TryOutID        string    `json:"tryoutId"`
	ParticipantID   string    `json:"participantId"`
	ParticipantName string    `json:"participantName"`
	Score           float64   `json:"score"`
	SubmittedAt     time.Time `json:"submittedAt"`
}

// Submission is what a participant hands in. Answers align with the try-out
// questions by position; an empty string means the question was left unanswered.
type Submission struct {
	ParticipantID   string   `json:"participantId" validate:"required"`
	ParticipantName string   `json:"participantName" validate:"required"`
	Answers         []string `json:"answers"`
}

// RankedParticipant is one leaderboard row.
type RankedParticipant struct {
	Rank  int     `json:"rank"`
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Stats summarizes every attempt of a try-out. Scores keep full precision;
// use FormatScore when displaying them.
type Stats struct {
	TryOutID         string              `json:"tryoutId"`
	ParticipantCount int                 `json:"participantCount"`
	AverageScore     float64             `json:"averageScore"`
	HighestScore     float64             `json:"highestScore"`
	LowestScore      float64             `json:"lowestScore"`
	Participants     []RankedParticipant `json:"participants"`
}

// Empty reports whether nobody has attempted the try-out yet.
func (s Stats) Empty() bool {
	return s.ParticipantCount == 0
}

// FormatScore renders a score with exactly two decimals.
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 2, 64)
}

// Subject is the top-level catalog container.
type Subject struct {
	ID          string    `json:"id"`
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Chapter belongs to a subject and owns a question bank.
type Chapter struct {
	ID          string    `json:"id"`
	SubjectID   string    `json:"subjectId" validate:"required"`
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// BankQuestion is a chapter quiz item. It shares validation rules with the
// questions embedded in a try-out but has its own identity.
type BankQuestion struct {
	ID        string `json:"id"`
	ChapterID string `json:"chapterId" validate:"required"`
	Question
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
