package export

import (
	"bytes"
	"testing"

	"github.com/godilite/voting-tool/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
)

func TestWriteRanking(t *testing.T) {
	entries := []service.RankingEntry{
		{Item: "Chess", TotalScore: 19, Contributors: []string{"Alice (10 P)", "Bob (9 P)"}},
		{Item: "Go", TotalScore: 10, Contributors: []string{"Bob (10 P)"}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRanking(&buf, entries))

	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)

	sheet := file.Sheets[0]
	assert.Equal(t, "Ranking", sheet.Name)
	require.Len(t, sheet.Rows, 3)

	cells := func(r int) []string {
		var out []string
		for _, c := range sheet.Rows[r].Cells {
			out = append(out, c.String())
		}
		return out
	}
	assert.Equal(t, []string{"Item", "Total Score", "Contributors"}, cells(0))
	assert.Equal(t, []string{"Chess", "19", "Alice (10 P), Bob (9 P)"}, cells(1))
	assert.Equal(t, []string{"Go", "10", "Bob (10 P)"}, cells(2))

	score, err := sheet.Rows[1].Cells[1].Int()
	require.NoError(t, err)
	assert.Equal(t, 19, score)
}

func TestWriteRanking_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRanking(&buf, nil))

	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, file.Sheets[0].Rows, 1)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "Game Night_ranking.xlsx", FileName("Game Night"))
}
