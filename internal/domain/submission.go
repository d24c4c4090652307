package domain

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxItems is the number of ranked slots on a ballot.
	MaxItems = 10
	// MaxVotingNameLength matches the sheet title limit of the spreadsheet backend.
	MaxVotingNameLength = 100
)

// Submission is one voter's ranked ballot. Items always has MaxItems slots;
// blank slots keep their position.
type Submission struct {
	Voter string           `json:"voter"`
	Items [MaxItems]string `json:"items"`
}

// Points returns the score awarded to the item at the given 0-based position.
func Points(position int) int {
	if position < 0 || position >= MaxItems {
		return 0
	}
	return MaxItems - position
}

// NewSubmission validates and normalizes raw form input.
func NewSubmission(voter string, items []string) (Submission, error) {
	var s Submission

	s.Voter = strings.TrimSpace(voter)
	if s.Voter == "" {
		return Submission{}, ErrBlankVoter
	}
	if len(items) > MaxItems {
		return Submission{}, ErrTooManyItems
	}

	filled := 0
	for i, item := range items {
		s.Items[i] = strings.TrimSpace(item)
		if s.Items[i] != "" {
			filled++
		}
	}
	if filled == 0 {
		return Submission{}, ErrNoItems
	}
	return s, nil
}

// ParseRow builds a Submission from a stored row of voter followed by item
// labels. Rows shorter than a full ballot are padded.
func ParseRow(fields []string) (Submission, error) {
	if len(fields) == 0 {
		return Submission{}, fmt.Errorf("%w: empty row", ErrParse)
	}
	if len(fields) > MaxItems+1 {
		return Submission{}, fmt.Errorf("%w: %d fields, want at most %d", ErrParse, len(fields), MaxItems+1)
	}
	s, err := NewSubmission(fields[0], fields[1:])
	if err != nil {
		return Submission{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return s, nil
}

// Row returns the stored layout: voter followed by every item slot.
func (s Submission) Row() []string {
	row := make([]string, 0, MaxItems+1)
	row = append(row, s.Voter)
	row = append(row, s.Items[:]...)
	return row
}

// NormalizeVotingName trims name and checks it is usable as a file name,
// sheet title and database key.
func NormalizeVotingName(name string) (string, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return "", fmt.Errorf("%w: name is required", ErrInvalidName)
	case utf8.RuneCountInString(name) > MaxVotingNameLength:
		return "", fmt.Errorf("%w: longer than %d characters", ErrInvalidName, MaxVotingNameLength)
	case strings.HasPrefix(name, "."):
		return "", fmt.Errorf("%w: must not start with a dot", ErrInvalidName)
	case strings.ContainsAny(name, `/\`):
		return "", fmt.Errorf("%w: must not contain path separators", ErrInvalidName)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return "", fmt.Errorf("%w: must not contain control characters", ErrInvalidName)
		}
	}
	return name, nil
}
