// Package validation checks feedback submissions before they reach a store.
// Everything here is pure: no I/O, no logging.
package validation

import (
	"encoding/json"
	"math"
	"regexp"

	apperrors "github.com/NomadCrew/feedback-backend/errors"
	"github.com/NomadCrew/feedback-backend/types"
)

const (
	MinRating = 1
	MaxRating = 5
)

// emailChar excludes @ and every whitespace rune a browser treats as \s: ASCII
// space and controls, vertical tab, the Unicode separators and the BOM.
const emailChar = `[^@\s\v\p{Z}\x{FEFF}]`

var emailPattern = regexp.MustCompile(`^` + emailChar + `+@` + emailChar + `+\.` + emailChar + `+$`)

// Policy selects which optional fields an entry point insists on.
type Policy struct {
	RequireRating bool
}

// ValidEmail reports whether email has the local@domain.tld shape.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidateSubmission checks sub against policy and returns the normalized rating
// (0 when absent). The returned error is always a 400-class AppError.
func ValidateSubmission(sub types.FeedbackSubmission, policy Policy) (int, *apperrors.AppError) {
	if sub.FullName == "" || sub.Email == "" || sub.Message == "" {
		return 0, apperrors.MissingFields(map[string]interface{}{
			"full_name": requiredMessage(sub.FullName, "Full name is required"),
			"email":     requiredMessage(sub.Email, "Email is required"),
			"message":   requiredMessage(sub.Message, "Message is required"),
		})
	}

	if !ValidEmail(sub.Email) {
		return 0, apperrors.InvalidEmail()
	}

	if !sub.HasRating() {
		if policy.RequireRating {
			return 0, apperrors.InvalidRating()
		}
		return 0, nil
	}

	rating, ok := parseRating(sub.Rating)
	if !ok {
		return 0, apperrors.InvalidRating()
	}
	return rating, nil
}

// requiredMessage yields nil for a present value so the details map serializes it as null.
func requiredMessage(value, message string) interface{} {
	if value == "" {
		return message
	}
	return nil
}

func parseRating(raw json.RawMessage) (int, bool) {
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	if n != math.Trunc(n) || n < MinRating || n > MaxRating {
		return 0, false
	}
	return int(n), true
}
