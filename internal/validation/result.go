package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pronounce/backend/internal/models"
)

// ResultField is the output field carrying the verdict
const ResultField = "validation-result"

// ErrMalformedResult is returned for blocks that are not a usable ASR result
var ErrMalformedResult = errors.New("malformed result")

// errorOutput is emitted in place of a block that could not be processed
var errorOutput = []byte(`{"status": "error"}`)

// Result is one parsed ASR result block
type Result struct {
	Hypothesis   []string
	Alignment    json.RawMessage
	GraphID      string
	RecordCookie string
	FileKey      string

	block    []byte
	document map[string]json.RawMessage
}

type resultDocument struct {
	Result *struct {
		Hypotheses []struct {
			Transcript     *string         `json:"transcript"`
			PhoneAlignment json.RawMessage `json:"phone-alignment"`
		} `json:"hypotheses"`
	} `json:"result"`
	GraphID      *string `json:"graph-id"`
	RecordCookie *string `json:"record-cookie"`
	ID           *string `json:"id"`
}

// ParseResult decodes a result block.
// Any missing field or alignment entry of the wrong shape is reported as ErrMalformedResult.
func ParseResult(block []byte) (*Result, error) {
	var document map[string]json.RawMessage
	if err := json.Unmarshal(block, &document); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResult, err)
	}

	var doc resultDocument
	if err := json.Unmarshal(block, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResult, err)
	}

	switch {
	case doc.Result == nil || len(doc.Result.Hypotheses) == 0:
		return nil, fmt.Errorf("%w: no hypotheses", ErrMalformedResult)
	case doc.Result.Hypotheses[0].Transcript == nil:
		return nil, fmt.Errorf("%w: no transcript", ErrMalformedResult)
	case doc.GraphID == nil || *doc.GraphID == "":
		return nil, fmt.Errorf("%w: no graph-id", ErrMalformedResult)
	case doc.RecordCookie == nil || *doc.RecordCookie == "":
		return nil, fmt.Errorf("%w: no record-cookie", ErrMalformedResult)
	case doc.ID == nil || *doc.ID == "":
		return nil, fmt.Errorf("%w: no id", ErrMalformedResult)
	case !validFileKey(*doc.ID):
		return nil, fmt.Errorf("%w: invalid id %q", ErrMalformedResult, *doc.ID)
	}

	best := doc.Result.Hypotheses[0]
	raw := bytes.TrimSpace(best.PhoneAlignment)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, fmt.Errorf("%w: phone-alignment is not an array", ErrMalformedResult)
	}
	var entries []models.WordAlignment
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%w: phone-alignment: %v", ErrMalformedResult, err)
	}

	return &Result{
		Hypothesis:   strings.Fields(*best.Transcript),
		Alignment:    json.RawMessage(raw),
		GraphID:      *doc.GraphID,
		RecordCookie: *doc.RecordCookie,
		FileKey:      *doc.ID,
		block:        block,
		document:     document,
	}, nil
}

// validFileKey reports whether a file key names a single entry of the audio store
func validFileKey(key string) bool {
	return !strings.ContainsAny(key, `/\`) && !strings.Contains(key, "..")
}

// Annotate echoes the original document with the verdict added under ResultField.
// Fields keep their original order and text.
func (r *Result) Annotate(passed bool) ([]byte, error) {
	verdict := json.RawMessage(fmt.Sprintf("%t", passed))

	if _, ok := r.document[ResultField]; ok {
		out := make(map[string]json.RawMessage, len(r.document))
		for k, v := range r.document {
			out[k] = v
		}
		out[ResultField] = verdict

		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(out); err != nil {
			return nil, err
		}
		return bytes.TrimRight(buf.Bytes(), "\n"), nil
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, r.block); err != nil {
		return nil, err
	}
	body := bytes.TrimSuffix(buf.Bytes(), []byte("}"))

	out := make([]byte, 0, len(body)+len(ResultField)+10)
	out = append(out, body...)
	if len(r.document) > 0 {
		out = append(out, ',')
	}
	out = append(out, '"')
	out = append(out, ResultField...)
	out = append(out, `":`...)
	out = append(out, verdict...)
	return append(out, '}'), nil
}
