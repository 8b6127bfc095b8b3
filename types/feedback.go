package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the ISO-8601 form used for created_at: UTC with milliseconds.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// FeedbackID identifies a feedback record. New records carry UUID strings; records
// written by older tooling may carry numeric ids, which are kept numeric on disk.
type FeedbackID string

func (id FeedbackID) String() string {
	return string(id)
}

// MarshalJSON writes canonical integer ids as JSON numbers and everything else as strings.
func (id FeedbackID) MarshalJSON() ([]byte, error) {
	if isInteger(string(id)) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON accepts both string and numeric ids.
func (id *FeedbackID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FeedbackID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("feedback id must be a string or number: %w", err)
	}
	*id = FeedbackID(n.String())
	return nil
}

func isInteger(s string) bool {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Feedback represents a stored feedback entry.
type Feedback struct {
	ID        FeedbackID `json:"id" yaml:"id"`
	FullName  string     `json:"full_name" yaml:"full_name"`
	Email     string     `json:"email" yaml:"email"`
	Message   string     `json:"message" yaml:"message"`
	Rating    int        `json:"rating,omitempty" yaml:"rating,omitempty"`
	CreatedAt string     `json:"created_at" yaml:"created_at"`

	// Extra keeps fields this service does not model, plus known fields whose
	// stored value is null or of the wrong JSON type. They are written back as-is.
	Extra map[string]json.RawMessage `json:"-" yaml:"-"`
}

// FeedbackSubmission is the request body for creating feedback. Rating is kept raw
// so validation can tell an absent rating from a malformed one.
type FeedbackSubmission struct {
	FullName string          `json:"full_name"`
	Email    string          `json:"email"`
	Message  string          `json:"message"`
	Rating   json.RawMessage `json:"rating,omitempty" swaggertype:"integer"`
}

// HasRating reports whether the submission carried a non-null rating.
func (s FeedbackSubmission) HasRating() bool {
	raw := strings.TrimSpace(string(s.Rating))
	return raw != "" && raw != "null"
}

// FormatTimestamp renders t as a created_at value.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// MessageResponse is returned by operations that have no resource to echo back.
type MessageResponse struct {
	Message string `json:"message" yaml:"message"`
}
