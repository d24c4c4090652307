package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/godilite/voting-tool/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

const testSpreadsheet = "test-spreadsheet"

// fakeSheets is an in-memory stand-in for the subset of the Sheets API the
// store uses.
type fakeSheets struct {
	mu         sync.Mutex
	titles     []string
	ids        map[string]int64
	rows       map[string][][]string
	nextID     int64
	failStatus int
	failWrites bool
	lastAppend *gsheets.ValueRange
}

func newFakeSheets(titles ...string) *fakeSheets {
	f := &fakeSheets{ids: map[string]int64{}, rows: map[string][][]string{}}
	for _, t := range titles {
		f.add(t)
	}
	return f
}

func (f *fakeSheets) add(title string) {
	f.titles = append(f.titles, title)
	f.ids[title] = f.nextID
	f.rows[title] = nil
	f.nextID++
}

func titleFromRange(rng string) string {
	rng = strings.TrimPrefix(rng, "'")
	title, _, _ := strings.Cut(rng, "'!")
	return strings.ReplaceAll(title, "''", "'")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failStatus != 0 && (!f.failWrites || r.Method == http.MethodPost) {
		writeJSON(w, f.failStatus, map[string]any{
			"error": map[string]any{"code": f.failStatus, "message": "injected failure"},
		})
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/v4/spreadsheets/"+testSpreadsheet)
	switch {
	case r.Method == http.MethodGet && path == "":
		resp := &gsheets.Spreadsheet{SpreadsheetId: testSpreadsheet}
		for _, t := range f.titles {
			resp.Sheets = append(resp.Sheets, &gsheets.Sheet{
				Properties: &gsheets.SheetProperties{SheetId: f.ids[t], Title: t},
			})
		}
		writeJSON(w, http.StatusOK, resp)

	case r.Method == http.MethodPost && path == ":batchUpdate":
		var req gsheets.BatchUpdateSpreadsheetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": map[string]any{"code": 400, "message": err.Error()}})
			return
		}
		for _, sub := range req.Requests {
			switch {
			case sub.AddSheet != nil:
				f.add(sub.AddSheet.Properties.Title)
			case sub.DeleteSheet != nil:
				for i, t := range f.titles {
					if f.ids[t] == sub.DeleteSheet.SheetId {
						f.titles = append(f.titles[:i], f.titles[i+1:]...)
						delete(f.rows, t)
						delete(f.ids, t)
						break
					}
				}
			}
		}
		writeJSON(w, http.StatusOK, &gsheets.BatchUpdateSpreadsheetResponse{SpreadsheetId: testSpreadsheet})

	case strings.HasPrefix(path, "/values/"):
		rng := strings.TrimPrefix(path, "/values/")
		switch {
		case r.Method == http.MethodPost && strings.HasSuffix(rng, ":append"):
			title := titleFromRange(strings.TrimSuffix(rng, ":append"))
			var vr gsheets.ValueRange
			_ = json.NewDecoder(r.Body).Decode(&vr)
			f.lastAppend = &vr
			for _, raw := range vr.Values {
				row := make([]string, len(raw))
				for i, c := range raw {
					row[i], _ = c.(string)
				}
				for len(row) > 0 && row[len(row)-1] == "" {
					row = row[:len(row)-1]
				}
				f.rows[title] = append(f.rows[title], row)
			}
			writeJSON(w, http.StatusOK, &gsheets.AppendValuesResponse{SpreadsheetId: testSpreadsheet})

		case r.Method == http.MethodPost && strings.HasSuffix(rng, ":clear"):
			f.rows[titleFromRange(strings.TrimSuffix(rng, ":clear"))] = nil
			writeJSON(w, http.StatusOK, &gsheets.ClearValuesResponse{SpreadsheetId: testSpreadsheet})

		case r.Method == http.MethodGet:
			title := titleFromRange(rng)
			resp := &gsheets.ValueRange{Range: rng, MajorDimension: "ROWS"}
			for _, row := range f.rows[title] {
				cells := make([]interface{}, len(row))
				for i, c := range row {
					cells[i] = c
				}
				resp.Values = append(resp.Values, cells)
			}
			writeJSON(w, http.StatusOK, resp)

		default:
			http.NotFound(w, r)
		}

	default:
		http.NotFound(w, r)
	}
}

func newTestStore(t *testing.T, fake *fakeSheets) *Store {
	t.Helper()

	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := gsheets.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)

	return New(svc, testSpreadsheet, zap.NewNop())
}

func submission(t *testing.T, voter string, items ...string) domain.Submission {
	t.Helper()
	s, err := domain.NewSubmission(voter, items)
	require.NoError(t, err)
	return s
}

func TestRangeFor(t *testing.T) {
	assert.Equal(t, "'Game Night'!A:K", rangeFor("Game Night"))
	assert.Equal(t, "'Bob''s Vote'!A:K", rangeFor("Bob's Vote"))
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	fake := newFakeSheets("Game Night")
	s := newTestStore(t, fake)

	t.Run("create and list", func(t *testing.T) {
		require.NoError(t, s.CreateVoting(ctx, "Bob's Vote"))

		names, err := s.ListVotings(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Game Night", "Bob's Vote"}, names)
	})

	t.Run("create collision", func(t *testing.T) {
		assert.ErrorIs(t, s.CreateVoting(ctx, "Game Night"), domain.ErrNameCollision)
	})

	t.Run("append writes a full raw row", func(t *testing.T) {
		a := submission(t, "Alice", "Chess", "Go")
		require.NoError(t, s.Append(ctx, "Game Night", a))

		require.NotNil(t, fake.lastAppend)
		require.Len(t, fake.lastAppend.Values, 1)
		assert.Len(t, fake.lastAppend.Values[0], domain.MaxItems+1)
	})

	t.Run("read pads short rows", func(t *testing.T) {
		require.NoError(t, s.Append(ctx, "Game Night", submission(t, "Carol", "Poker", "", "", "Chess")))

		subs, err := s.ReadAll(ctx, "Game Night")
		require.NoError(t, err)
		require.Len(t, subs, 2)
		assert.Equal(t, submission(t, "Alice", "Chess", "Go"), subs[0])
		assert.Equal(t, "Chess", subs[1].Items[3])
	})

	t.Run("quoted titles round trip", func(t *testing.T) {
		require.NoError(t, s.Append(ctx, "Bob's Vote", submission(t, "Bob", "Go")))

		subs, err := s.ReadAll(ctx, "Bob's Vote")
		require.NoError(t, err)
		require.Len(t, subs, 1)
		assert.Equal(t, "Bob", subs[0].Voter)
	})

	t.Run("clear", func(t *testing.T) {
		require.NoError(t, s.Clear(ctx, "Game Night"))

		subs, err := s.ReadAll(ctx, "Game Night")
		require.NoError(t, err)
		assert.Empty(t, subs)
	})

	t.Run("delete first tab", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, "Game Night"))

		names, err := s.ListVotings(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Bob's Vote"}, names)

		assert.ErrorIs(t, s.Delete(ctx, "Game Night"), domain.ErrNotFound)
		_, err = s.ReadAll(ctx, "Game Night")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.ErrorIs(t, s.Append(ctx, "Game Night", submission(t, "Alice", "Go")), domain.ErrNotFound)
	})
}

func TestStore_MalformedRow(t *testing.T) {
	fake := newFakeSheets("Game Night")
	fake.rows["Game Night"] = [][]string{{"Alice", "Chess"}, {"", "Go"}}
	s := newTestStore(t, fake)

	_, err := s.ReadAll(context.Background(), "Game Night")

	assert.ErrorIs(t, err, domain.ErrParse)
	assert.Contains(t, err.Error(), "row 2")
}

func TestStore_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("unavailable backend", func(t *testing.T) {
		fake := newFakeSheets("Game Night")
		fake.failStatus = http.StatusServiceUnavailable
		s := newTestStore(t, fake)

		_, err := s.ReadAll(ctx, "Game Night")
		assert.ErrorIs(t, err, domain.ErrConnection)

		_, err = s.ListVotings(ctx)
		assert.ErrorIs(t, err, domain.ErrConnection)
	})

	t.Run("read-only spreadsheet", func(t *testing.T) {
		fake := newFakeSheets("Game Night")
		fake.failStatus = http.StatusForbidden
		fake.failWrites = true
		s := newTestStore(t, fake)

		err := s.Append(ctx, "Game Night", submission(t, "Alice", "Chess"))
		assert.ErrorIs(t, err, domain.ErrStoreWrite)
	})
}

func TestNewFromCredentialsFile_MissingFile(t *testing.T) {
	_, err := NewFromCredentialsFile(context.Background(), "/nonexistent/creds.json", testSpreadsheet, zap.NewNop())

	assert.ErrorIs(t, err, domain.ErrConfig)
}
