package models

import "errors"

var (
	// ErrNotFound is returned by repositories when no row matches
	ErrNotFound = errors.New("not found")
	// ErrRecordNotFound is returned when a token names neither a lesson record nor a reference record
	ErrRecordNotFound = errors.New("record not found")
	// ErrDuplicateRequest is returned when a concurrent request already created the same record
	ErrDuplicateRequest = errors.New("duplicate request")
	// ErrInvalidToken covers both forged and expired reference tokens
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrAlignmentMismatch is returned when prompt words and word alignments differ in length
	ErrAlignmentMismatch = errors.New("prompt and alignment do not match")
	// ErrPromptNotFound is returned when a prompt id or graph id is unknown
	ErrPromptNotFound = errors.New("prompt not found")
	// ErrNothingToReview is returned when a reviewer has reviewed every validated audio record
	ErrNothingToReview = errors.New("all reviews completed")
	// ErrRecordNotOwned is returned when a user submits audio into another user's record
	ErrRecordNotOwned = errors.New("record belongs to another user")
	// ErrLessonHasNoPrompts is returned when an attempt is requested for a lesson without prompts
	ErrLessonHasNoPrompts = errors.New("lesson has no prompts")
)
