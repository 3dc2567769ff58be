// Package sheets persists the plan in a Google Sheets worksheet, one
// row per period record. Useful when the "remote store" is a shared
// spreadsheet instead of an HTTP document endpoint.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/tomcoffee/kimono-sim/internal/core"
	"github.com/tomcoffee/kimono-sim/internal/store"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// planHeader is the first row of the worksheet, matching the persisted
// schema field order.
var planHeader = []string{
	"id", "year", "month", "sales", "cogs", "fixedCost", "spotCost",
	"personnel", "fixedCostMemo", "spotCostMemo", "personnelMemo", "memo",
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ store.Store = (*Client)(nil)

// NewFromEnv creates a Sheets-backed plan store.
// Required: GOOGLE_SPREADSHEET_ID.
// Optional: GOOGLE_SHEET_NAME (default "Plan") and service account
// credentials via GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE
// or GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheetName := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "Plan"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}, nil
}

// newSheetsService initializes the API service from service-account
// credentials found in the environment.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	inlineJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	credsFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if inlineJSON == "" && credsFile == "" {
		credsFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case inlineJSON != "":
		credentialsJSON = []byte(inlineJSON)
	case credsFile != "":
		b, err := os.ReadFile(credsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

// LoadPlan reads the worksheet and converts rows to records. A sheet
// with only a header row (or none) is a fresh store.
func (c *Client) LoadPlan(ctx context.Context) ([]core.PeriodRecord, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:L", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read plan range: %w", err)
	}

	records, err := parsePlanRows(resp.Values)
	if err != nil {
		return nil, err
	}
	if len(records) > 0 {
		if err := core.ValidateSequence(records); err != nil {
			return nil, fmt.Errorf("persisted plan violates sequence invariants: %w", err)
		}
	}
	slog.DebugContext(ctx, "Loaded plan from spreadsheet",
		"spreadsheet_id", c.spreadsheetID,
		"sheet", c.sheetName,
		"records", len(records))
	return records, nil
}

// SavePlan clears the worksheet and writes header plus all records in
// one update: the whole document is replaced, matching the wholesale
// semantics of the other backends.
func (c *Client) SavePlan(ctx context.Context, records []core.PeriodRecord) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	if err := core.ValidateSequence(records); err != nil {
		return fmt.Errorf("refusing to persist invalid sequence: %w", err)
	}

	rng := fmt.Sprintf("%s!A:L", c.sheetName)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear plan range: %w", err)
	}

	values := make([][]interface{}, 0, len(records)+1)
	header := make([]interface{}, len(planHeader))
	for i, h := range planHeader {
		header[i] = h
	}
	values = append(values, header)
	for _, r := range records {
		values = append(values, planRow(r))
	}

	vr := &gsheet.ValueRange{Values: values}
	_, err := c.svc.Spreadsheets.Values.
		Update(c.spreadsheetID, fmt.Sprintf("%s!A1", c.sheetName), vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("write plan range: %w", err)
	}

	slog.InfoContext(ctx, "Saved plan to spreadsheet",
		"spreadsheet_id", c.spreadsheetID,
		"sheet", c.sheetName,
		"records", len(records))
	return nil
}
