// Package pipeline orchestrates one recognition run per request: input
// boundary, preprocessing, ensemble recognition, optional structure
// analysis, field extraction, and validation, selected by profile.
package pipeline

import (
	"encoding/json"

	"github.com/joseph-ayodele/receipt-recognizer/constants"
	"github.com/joseph-ayodele/receipt-recognizer/internal/fields"
)

// Result is the contract returned for every processing request. The
// pipeline never lets an error escape as a panic or bare return: failures
// come back as Success=false with empty text, no record, and the cause in
// Error. A completed run with an invalid record is still Success=true;
// Validation carries the verdict.
type Result struct {
	Success      bool              `json:"success"`
	Source       string            `json:"source_path,omitempty"`
	Profile      constants.Profile `json:"profile"`
	Text         string            `json:"extracted_text"`
	Record       *fields.Record    `json:"parsed_data,omitempty"`
	Validation   *fields.Report    `json:"validation,omitempty"`
	Confidence   float64           `json:"confidence"`
	Agreement    float64           `json:"agreement_score"`
	EngineID     string            `json:"engine_id,omitempty"`
	Technique    string            `json:"technique,omitempty"`
	ProcessingMS int64             `json:"processing_time_ms"`
	Diagnostics  []string          `json:"diagnostics,omitempty"`
	Error        string            `json:"error,omitempty"`

	// Err carries the typed failure for errors.Is checks; Error mirrors
	// it as text for serialization.
	Err error `json:"-"`
}

// JSON renders the result for CLI output and batch reports. The Result
// type marshals cleanly, so a failure here cannot happen at runtime;
// the fallback keeps the method total.
func (r Result) JSON() []byte {
	blob, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		blob, _ = json.Marshal(map[string]any{"success": false, "error": err.Error()})
	}
	return blob
}
