package models

// AttemptResponse is returned when an attempt or reference record is handed out
type AttemptResponse struct {
	RecordToken      string `json:"recordToken"`
	Kind             string `json:"kind"`
	SequenceID       int    `json:"sequenceId,omitempty"`
	PromptsCompleted int    `json:"promptsCompleted"`
	PromptCount      int    `json:"promptCount"`
	Complete         bool   `json:"complete"`
}

// Progress describes how far a record has advanced through its lesson prompts
type Progress struct {
	PromptsCompleted int  `json:"promptsCompleted"`
	PromptCount      int  `json:"promptCount"`
	Complete         bool `json:"complete"`
}

// CreateSubmissionRequest registers a new pending audio submission
type CreateSubmissionRequest struct {
	RecordToken string `json:"recordToken"`
	PromptID    int64  `json:"promptId"`
}

// SubmissionResponse carries the file key the client must tag its upload with
type SubmissionResponse struct {
	FileKey string `json:"fileKey"`
}

// ReviewRecordItem is a complete lesson record listed for teacher review
type ReviewRecordItem struct {
	RecordToken string `json:"recordToken"`
	UserID      int64  `json:"userId"`
	SequenceID  int    `json:"sequenceId"`
	ModifiedAt  string `json:"modifiedAt"`
	Reviewed    bool   `json:"reviewed"`
}

// ReviewItem is the next audio record a reviewer should listen to
type ReviewItem struct {
	AudioRecord  AudioRecord  `json:"audioRecord"`
	Prompt       Prompt       `json:"prompt"`
	FilesPresent bool         `json:"filesPresent"`
	WordTimings  []WordTiming `json:"wordTimings"`
}

// CreateReviewRequest is the body of a review submission
type CreateReviewRequest struct {
	Comment string `json:"comment"`
}
