package models

import "time"

// AudioRecord represents one physical audio submission
type AudioRecord struct {
	ID               string    `json:"id"`
	UserID           int64     `json:"userId"`
	PromptID         int64     `json:"promptId"`
	FileKey          string    `json:"fileKey"`
	PassedValidation *bool     `json:"passedValidation"`
	CreatedAt        time.Time `json:"createdAt"`
	ModifiedAt       time.Time `json:"modifiedAt"`
}

// Passed reports whether the audio record has a passing verdict.
// A pending record (no verdict yet) never passes.
func (a *AudioRecord) Passed() bool {
	return a.PassedValidation != nil && *a.PassedValidation
}

// LessonRecord represents one attempt-session at a lesson by a user
type LessonRecord struct {
	ID           string        `json:"id"`
	UserID       int64         `json:"userId"`
	LessonID     int64         `json:"lessonId"`
	SequenceID   int           `json:"sequenceId"`
	AudioRecords []AudioRecord `json:"audioRecords,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	ModifiedAt   time.Time     `json:"modifiedAt"`
}

// ReferenceRecord is the canonical reference-performance container of a (user, lesson) pair
type ReferenceRecord struct {
	ID           string        `json:"id"`
	UserID       int64         `json:"userId"`
	LessonID     int64         `json:"lessonId"`
	AudioRecords []AudioRecord `json:"audioRecords,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	ModifiedAt   time.Time     `json:"modifiedAt"`
}

// Prompt is a single spoken prompt of a lesson.
// Prompts are authored elsewhere and only read here.
type Prompt struct {
	ID       int64  `json:"id"`
	LessonID int64  `json:"lessonId"`
	Position int    `json:"position"`
	Text     string `json:"text"`
	GraphID  string `json:"graphId"`
}

// AudioReview marks an audio record as reviewed by a teacher
type AudioReview struct {
	ID            int64     `json:"id"`
	ReviewerID    int64     `json:"reviewerId"`
	AudioRecordID string    `json:"audioRecordId"`
	Comment       string    `json:"comment,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// RecordKind tells which record type an opaque reference token resolved to
type RecordKind int

const (
	RecordKindNone RecordKind = iota
	RecordKindLesson
	RecordKindReference
)

// String returns the kind name used in responses and logs
func (k RecordKind) String() string {
	switch k {
	case RecordKindLesson:
		return "lesson"
	case RecordKindReference:
		return "reference"
	default:
		return "none"
	}
}

// ResolvedRecord is the result of resolving an opaque reference token.
// Exactly one of Lesson and Reference is set, matching Kind.
type ResolvedRecord struct {
	Kind      RecordKind
	Lesson    *LessonRecord
	Reference *ReferenceRecord
}

// ID returns the identifier of the resolved record
func (r ResolvedRecord) ID() string {
	switch r.Kind {
	case RecordKindLesson:
		return r.Lesson.ID
	case RecordKindReference:
		return r.Reference.ID
	default:
		return ""
	}
}

// UserID returns the owner of the resolved record
func (r ResolvedRecord) UserID() int64 {
	switch r.Kind {
	case RecordKindLesson:
		return r.Lesson.UserID
	case RecordKindReference:
		return r.Reference.UserID
	default:
		return 0
	}
}

// LessonID returns the lesson the resolved record belongs to
func (r ResolvedRecord) LessonID() int64 {
	switch r.Kind {
	case RecordKindLesson:
		return r.Lesson.LessonID
	case RecordKindReference:
		return r.Reference.LessonID
	default:
		return 0
	}
}
