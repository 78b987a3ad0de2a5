package models

// VerdictRequest is the body posted by the validation pipeline to the backend
type VerdictRequest struct {
	RecordCookie     string `json:"record-cookie"`
	GraphID          string `json:"graph-id"`
	FileKey          string `json:"file-key"`
	PassedValidation bool   `json:"passed-validation"`
}

// VerdictAcknowledgement is the literal body the backend answers with on success
const VerdictAcknowledgement = "OK"
