package models

// WordAlignment is one raw alignment entry as emitted by the ASR worker.
// Word has the form "word@index"; Start and Length are in seconds.
type WordAlignment struct {
	Word   string  `json:"word"`
	Start  float64 `json:"start"`
	Length float64 `json:"length"`
}

// AlignmentArtifact is the document persisted next to each audio submission
type AlignmentArtifact struct {
	WordAlignment []WordAlignment `json:"word-alignment"`
}

// MillisAlignment is a word alignment converted to whole milliseconds
type MillisAlignment struct {
	Word   string `json:"word"`
	Start  int    `json:"start"`
	Length int    `json:"length"`
}

// WordTiming pairs a prompt word with its alignment
type WordTiming struct {
	Word      string          `json:"word"`
	Alignment MillisAlignment `json:"alignment"`
}
