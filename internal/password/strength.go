// Package password implements the password strength policy shared by the
// registration, password-change and live-feedback endpoints. One rule set is
// evaluated once; callers map the normalized score onto their display scale.
package password

import (
	"math"
	"strings"
	"unicode/utf8"
)

const specialChars = "!@#$%^&*()_+-=[]{};':\"\\|,.<>/?"

// commonPatterns are matched case-insensitively as substrings. A hit is a
// hard error, not a suggestion.
var commonPatterns = []string{
	"123456", "password", "qwerty", "abc123", "111111", "123123",
	"admin", "letmein", "welcome", "monkey", "dragon", "master",
}

// internal scoring scale before normalization
const maxPoints = 5.0

// Result is the outcome of evaluating a password against the policy.
// Score is normalized to [0,1]; Valid is true iff Errors is empty.
type Result struct {
	Score       float64  `json:"score"`
	Valid       bool     `json:"valid"`
	Errors      []string `json:"errors"`
	Suggestions []string `json:"suggestions"`
}

// Validate scores a password. It is pure and total: any string, including
// the empty string, yields a well-formed result. Errors are appended in a
// fixed order (length, uppercase, lowercase, digit, special, pattern) so
// callers may rely on their position.
func Validate(pw string) Result {
	var res Result
	points := 0.0

	hasUpper := strings.ContainsAny(pw, "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	hasLower := strings.ContainsAny(pw, "abcdefghijklmnopqrstuvwxyz")
	hasDigit := strings.ContainsAny(pw, "0123456789")
	hasSpecial := strings.ContainsAny(pw, specialChars)

	// characters, not bytes
	length := utf8.RuneCountInString(pw)

	if length >= 8 {
		points++
	} else {
		res.Errors = append(res.Errors, "password must be at least 8 characters long")
	}
	if length >= 12 {
		points++
	}
	if length >= 16 {
		points += 0.5
	}

	if hasUpper {
		points += 0.5
	} else {
		res.Errors = append(res.Errors, "password must contain at least one uppercase letter")
	}
	if hasLower {
		points += 0.5
	} else {
		res.Errors = append(res.Errors, "password must contain at least one lowercase letter")
	}
	if hasDigit {
		points += 0.5
	} else {
		res.Errors = append(res.Errors, "password must contain at least one digit")
	}
	if hasSpecial {
		points++
	} else {
		res.Errors = append(res.Errors, "password must contain at least one special character")
	}

	lower := strings.ToLower(pw)
	for _, pattern := range commonPatterns {
		if strings.Contains(lower, pattern) {
			points -= 2
			res.Errors = append(res.Errors, "password is too guessable: avoid common patterns")
			break
		}
	}

	if hasRepeatRun(pw, 3) {
		points -= 0.5
		res.Suggestions = append(res.Suggestions, "avoid repeating the same character three or more times")
	}

	if length >= 8 && length < 12 {
		res.Suggestions = append(res.Suggestions, "use 12 or more characters for a stronger password")
	}

	points = math.Max(0, math.Min(maxPoints, points))
	res.Score = points / maxPoints
	res.Valid = len(res.Errors) == 0
	return res
}

// Scale maps the normalized score onto a display scale. The 5-point scale
// keeps half steps; other scales round to whole steps.
func (r Result) Scale(max int) float64 {
	step := 1.0
	if max == 5 {
		step = 0.5
	}
	return math.Round(r.Score*float64(max)/step) * step
}

// Label partitions the score into five strength bands.
func (r Result) Label() string {
	switch {
	case r.Score < 0.2:
		return "Very Weak"
	case r.Score < 0.4:
		return "Weak"
	case r.Score < 0.6:
		return "Fair"
	case r.Score < 0.8:
		return "Strong"
	default:
		return "Very Strong"
	}
}

// hasRepeatRun reports whether any rune repeats n or more times in a row.
func hasRepeatRun(s string, n int) bool {
	run := 1
	var prev rune
	for i, r := range s {
		if i > 0 && r == prev {
			run++
			if run >= n {
				return true
			}
		} else {
			run = 1
		}
		prev = r
	}
	return false
}
