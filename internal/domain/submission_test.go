package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoints(t *testing.T) {
	for i := 0; i < MaxItems; i++ {
		assert.Equal(t, 10-i, Points(i), "position %d", i)
	}
	assert.Equal(t, 0, Points(-1))
	assert.Equal(t, 0, Points(MaxItems))
}

func TestNewSubmission(t *testing.T) {
	t.Run("trims and pads", func(t *testing.T) {
		s, err := NewSubmission("  Carol ", []string{" Poker ", "", "  ", "Chess"})

		require.NoError(t, err)
		assert.Equal(t, "Carol", s.Voter)
		assert.Equal(t, "Poker", s.Items[0])
		assert.Equal(t, "", s.Items[1])
		assert.Equal(t, "", s.Items[2])
		assert.Equal(t, "Chess", s.Items[3])
		for i := 4; i < MaxItems; i++ {
			assert.Equal(t, "", s.Items[i])
		}
	})

	t.Run("blank voter", func(t *testing.T) {
		_, err := NewSubmission("   ", []string{"Chess"})

		assert.ErrorIs(t, err, ErrBlankVoter)
		assert.ErrorIs(t, err, ErrInvalidSubmission)
	})

	t.Run("all slots blank", func(t *testing.T) {
		_, err := NewSubmission("Alice", make([]string, MaxItems))

		assert.ErrorIs(t, err, ErrNoItems)
		assert.ErrorIs(t, err, ErrInvalidSubmission)
	})

	t.Run("no slots", func(t *testing.T) {
		_, err := NewSubmission("Alice", nil)

		assert.ErrorIs(t, err, ErrNoItems)
	})

	t.Run("too many slots", func(t *testing.T) {
		items := make([]string, MaxItems+1)
		items[0] = "Chess"

		_, err := NewSubmission("Alice", items)

		assert.ErrorIs(t, err, ErrTooManyItems)
	})

	t.Run("labels are case sensitive", func(t *testing.T) {
		s, err := NewSubmission("Alice", []string{"Chess", "chess "})

		require.NoError(t, err)
		assert.Equal(t, "Chess", s.Items[0])
		assert.Equal(t, "chess", s.Items[1])
	})
}

func TestParseRow(t *testing.T) {
	t.Run("short row is padded", func(t *testing.T) {
		s, err := ParseRow([]string{"Bob", "Go", "Chess"})

		require.NoError(t, err)
		assert.Equal(t, "Bob", s.Voter)
		assert.Equal(t, "Go", s.Items[0])
		assert.Equal(t, "Chess", s.Items[1])
	})

	t.Run("empty row", func(t *testing.T) {
		_, err := ParseRow(nil)

		assert.ErrorIs(t, err, ErrParse)
	})

	t.Run("too many fields", func(t *testing.T) {
		_, err := ParseRow(make([]string, MaxItems+2))

		assert.ErrorIs(t, err, ErrParse)
	})

	t.Run("blank voter is malformed", func(t *testing.T) {
		_, err := ParseRow([]string{"", "Chess"})

		assert.ErrorIs(t, err, ErrParse)
		assert.Contains(t, err.Error(), "voter name is required")
	})
}

func TestSubmissionRow(t *testing.T) {
	s, err := NewSubmission("Alice", []string{"Chess", "Go"})
	require.NoError(t, err)

	row := s.Row()

	assert.Len(t, row, MaxItems+1)
	assert.Equal(t, "Alice", row[0])
	assert.Equal(t, "Chess", row[1])
	assert.Equal(t, "Go", row[2])

	back, err := ParseRow(row)
	require.NoError(t, err)
	assert.Equal(t, s, back)
}

func TestNormalizeVotingName(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "trimmed", input: "  Game Night  ", want: "Game Night"},
		{name: "unicode", input: "Spieleabend 2025", want: "Spieleabend 2025"},
		{name: "blank", input: "   ", wantErr: true},
		{name: "slash", input: "a/b", wantErr: true},
		{name: "backslash", input: `a\b`, wantErr: true},
		{name: "dot prefix", input: "..", wantErr: true},
		{name: "control", input: "a\tb", wantErr: true},
		{name: "too long", input: strings.Repeat("x", MaxVotingNameLength+1), wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeVotingName(tc.input)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidName)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
