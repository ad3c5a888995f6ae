package sheets

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"vyapar/backend/internal/store"
)

const userEntered = "USER_ENTERED"

// literal keeps Sheets from interpreting a text cell: a leading apostrophe stores the rest
// as typed, so "+91..." stays a string and "=..." never becomes a formula.
func literal(table store.Table, column int, value string) string {
	if value == "" || store.NumericColumn(table, column) {
		return value
	}
	return "'" + value
}

// Store keeps each table in a tab of one spreadsheet, header in row 1.
type Store struct {
	svc           *gsheets.Service
	spreadsheetID string
}

// New authenticates with a service-account credentials file. Extra options are appended,
// which lets tests point the client at a fake endpoint.
func New(ctx context.Context, spreadsheetID, credentialsFile string, opts ...option.ClientOption) (*Store, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("sheets: spreadsheet id is required")
	}
	all := make([]option.ClientOption, 0, len(opts)+2)
	if credentialsFile != "" {
		all = append(all, option.WithCredentialsFile(credentialsFile))
	}
	all = append(all, option.WithScopes(gsheets.SpreadsheetsScope))
	all = append(all, opts...)
	svc, err := gsheets.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("sheets: create service: %w", err)
	}
	return NewWithService(svc, spreadsheetID), nil
}

func NewWithService(svc *gsheets.Service, spreadsheetID string) *Store {
	return &Store{svc: svc, spreadsheetID: spreadsheetID}
}

// EnsureHeaders adds missing tabs and writes the header row into tabs that are empty.
func (s *Store) EnsureHeaders(ctx context.Context) error {
	doc, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: read spreadsheet: %w", err)
	}
	existing := make(map[string]bool, len(doc.Sheets))
	for _, sh := range doc.Sheets {
		if sh.Properties != nil {
			existing[sh.Properties.Title] = true
		}
	}

	var requests []*gsheets.Request
	for _, t := range store.Tables {
		if !existing[string(t)] {
			requests = append(requests, &gsheets.Request{
				AddSheet: &gsheets.AddSheetRequest{Properties: &gsheets.SheetProperties{Title: string(t)}},
			})
		}
	}
	if len(requests) > 0 {
		_, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, &gsheets.BatchUpdateSpreadsheetRequest{Requests: requests}).
			Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("sheets: add tabs: %w", err)
		}
		log.Info().Int("tabs", len(requests)).Msg("sheets: created missing tabs")
	}

	for _, t := range store.Tables {
		resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, string(t)+"!1:1").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("sheets: read %s header: %w", t, err)
		}
		if len(resp.Values) > 0 && len(resp.Values[0]) > 0 {
			continue
		}
		vr := &gsheets.ValueRange{Values: [][]interface{}{toCells(store.Headers(t))}}
		if _, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, string(t)+"!A1", vr).
			ValueInputOption(userEntered).Context(ctx).Do(); err != nil {
			return fmt.Errorf("sheets: write %s header: %w", t, err)
		}
	}
	return nil
}

func (s *Store) Append(ctx context.Context, table store.Table, values []string) error {
	if !table.Valid() {
		return store.ErrUnknownTable
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = literal(table, i, v)
	}
	vr := &gsheets.ValueRange{Values: [][]interface{}{cells}}
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, string(table), vr).
		ValueInputOption(userEntered).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: append %s: %w", table, err)
	}
	return nil
}

func (s *Store) Scan(ctx context.Context, table store.Table) ([]store.Row, error) {
	if !table.Valid() {
		return nil, store.ErrUnknownTable
	}
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, string(table)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("sheets: scan %s: %w", table, err)
	}
	grid := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, v := range raw {
			row[i] = fmt.Sprint(v)
		}
		grid = append(grid, row)
	}
	return store.RowsFromValues(grid), nil
}

// UpdateCell writes one cell. The upper row bound is not checked here: callers pass an
// index taken from a Scan, and the sheet grows rather than rejecting the write.
func (s *Store) UpdateCell(ctx context.Context, table store.Table, rowIndex int, column int, value string) error {
	if err := store.CheckCell(table, rowIndex, column, rowIndex+1); err != nil {
		return err
	}
	rng := fmt.Sprintf("%s!%s%d", table, store.ColumnLetter(column), rowIndex+2)
	vr := &gsheets.ValueRange{Values: [][]interface{}{{literal(table, column, value)}}}
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rng, vr).
		ValueInputOption(userEntered).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: update %s: %w", rng, err)
	}
	return nil
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
