// Package sheets stores each voting as a tab of one Google spreadsheet.
// Column A holds the voter, columns B to K the item slots; there is no
// header row.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/godilite/voting-tool/internal/domain"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

const (
	// Size of a newly created voting tab.
	newSheetRows    = 100
	newSheetColumns = 12

	lastColumn = "K"
)

// Store talks to the Sheets API v4.
type Store struct {
	svc           *gsheets.Service
	spreadsheetID string
	logger        *zap.Logger
}

// New builds a Store from an existing API client.
func New(svc *gsheets.Service, spreadsheetID string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		logger:        logger.Named("sheets-store"),
	}
}

// NewFromCredentialsFile reads a service account key and opens the
// spreadsheet client. Unreadable credentials are a configuration error.
func NewFromCredentialsFile(ctx context.Context, credentialsFile, spreadsheetID string, logger *zap.Logger, opts ...option.ClientOption) (*Store, error) {
	creds, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("%w: read sheets credentials: %v", domain.ErrConfig, err)
	}

	opts = append([]option.ClientOption{
		option.WithCredentialsJSON(creds),
		option.WithScopes(gsheets.SpreadsheetsScope),
	}, opts...)

	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: sheets client: %v", domain.ErrConfig, err)
	}
	return New(svc, spreadsheetID, logger), nil
}

// rangeFor returns the A1 range covering a full ballot row of the tab.
func rangeFor(title string) string {
	return fmt.Sprintf("'%s'!A:%s", strings.ReplaceAll(title, "'", "''"), lastColumn)
}

// classify maps an API failure to the store error taxonomy.
func classify(err error, write bool) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusNotFound:
			return fmt.Errorf("%w: %v", domain.ErrNotFound, err)
		case write && apiErr.Code < http.StatusInternalServerError:
			return fmt.Errorf("%w: %v", domain.ErrStoreWrite, err)
		}
	}
	if write {
		return fmt.Errorf("%w: %v", domain.ErrStoreWrite, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrConnection, err)
}

func (s *Store) sheetProperties(ctx context.Context) ([]*gsheets.SheetProperties, error) {
	resp, err := s.svc.Spreadsheets.Get(s.spreadsheetID).
		Fields("sheets.properties(sheetId,title)").
		Context(ctx).
		Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
			return nil, fmt.Errorf("%w: spreadsheet %s: %v", domain.ErrConnection, s.spreadsheetID, err)
		}
		return nil, classify(err, false)
	}

	props := make([]*gsheets.SheetProperties, 0, len(resp.Sheets))
	for _, sh := range resp.Sheets {
		if sh.Properties != nil {
			props = append(props, sh.Properties)
		}
	}
	return props, nil
}

// sheetID resolves a tab title to its numeric id.
func (s *Store) sheetID(ctx context.Context, title string) (int64, error) {
	props, err := s.sheetProperties(ctx)
	if err != nil {
		return 0, err
	}
	for _, p := range props {
		if p.Title == title {
			return p.SheetId, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", domain.ErrNotFound, title)
}

// ListVotings returns the tab titles in spreadsheet order.
func (s *Store) ListVotings(ctx context.Context) ([]string, error) {
	props, err := s.sheetProperties(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(props))
	for _, p := range props {
		names = append(names, p.Title)
	}
	return names, nil
}

// CreateVoting adds a new tab.
func (s *Store) CreateVoting(ctx context.Context, name string) error {
	if _, err := s.sheetID(ctx, name); err == nil {
		return fmt.Errorf("%w: %q", domain.ErrNameCollision, name)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	req := &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{{
			AddSheet: &gsheets.AddSheetRequest{
				Properties: &gsheets.SheetProperties{
					Title: name,
					GridProperties: &gsheets.GridProperties{
						RowCount:    newSheetRows,
						ColumnCount: newSheetColumns,
					},
				},
			},
		}},
	}
	if _, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return classify(err, true)
	}

	s.logger.Info("sheet added", zap.String("title", name))
	return nil
}

// Append writes one row after the last non-empty row of the tab. RAW input
// keeps labels such as "=1+1" as text.
func (s *Store) Append(ctx context.Context, voting string, sub domain.Submission) error {
	if _, err := s.sheetID(ctx, voting); err != nil {
		return err
	}

	row := sub.Row()
	values := make([]interface{}, len(row))
	for i, v := range row {
		values[i] = v
	}

	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, rangeFor(voting), &gsheets.ValueRange{
		MajorDimension: "ROWS",
		Values:         [][]interface{}{values},
	}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return classify(err, true)
	}
	return nil
}

// ReadAll returns every row of the tab. The API omits trailing empty cells,
// so short rows are padded by the parser.
func (s *Store) ReadAll(ctx context.Context, voting string) ([]domain.Submission, error) {
	if _, err := s.sheetID(ctx, voting); err != nil {
		return nil, err
	}

	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rangeFor(voting)).
		MajorDimension("ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return nil, classify(err, false)
	}

	subs := make([]domain.Submission, 0, len(resp.Values))
	for i, raw := range resp.Values {
		fields := make([]string, len(raw))
		for j, cell := range raw {
			fields[j] = fmt.Sprint(cell)
		}
		sub, err := domain.ParseRow(fields)
		if err != nil {
			return nil, fmt.Errorf("%q row %d: %w", voting, i+1, err)
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

// Clear empties the tab's ballot columns.
func (s *Store) Clear(ctx context.Context, voting string) error {
	if _, err := s.sheetID(ctx, voting); err != nil {
		return err
	}

	_, err := s.svc.Spreadsheets.Values.Clear(s.spreadsheetID, rangeFor(voting), &gsheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return classify(err, true)
	}
	return nil
}

// Delete removes the tab.
func (s *Store) Delete(ctx context.Context, voting string) error {
	id, err := s.sheetID(ctx, voting)
	if err != nil {
		return err
	}

	req := &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{{
			// The first tab has id 0, which omitempty would drop.
			DeleteSheet: &gsheets.DeleteSheetRequest{SheetId: id, ForceSendFields: []string{"SheetId"}},
		}},
	}
	if _, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return classify(err, true)
	}

	s.logger.Info("sheet deleted", zap.String("title", voting))
	return nil
}
