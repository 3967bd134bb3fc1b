// Package google writes shared expense reports to a Google Sheets
// spreadsheet using service account credentials.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"budgetbook/internal/log"
)

// DefaultSheetName is used when Options.SheetName is empty.
const DefaultSheetName = "Reports"

// Options configures a Client. Credentials fall back to the
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE and
// GOOGLE_APPLICATION_CREDENTIALS environment variables.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON []byte
	CredentialsFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *log.Logger
}

// NewFromConfig creates a Sheets client for one spreadsheet tab.
func NewFromConfig(ctx context.Context, opts Options, logger *log.Logger) (*Client, error) {
	spreadsheetID := strings.TrimSpace(opts.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheetName := strings.TrimSpace(opts.SheetName)
	if sheetName == "" {
		sheetName = DefaultSheetName
	}
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentSheets)

	credentialsJSON, err := loadCredentials(ctx, opts, logger)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	logger.InfoContext(ctx, "Google Sheets service created successfully", "sheet", sheetName)
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		logger:        logger,
	}, nil
}

// loadCredentials resolves service account credentials from opts first,
// then from the environment.
func loadCredentials(ctx context.Context, opts Options, logger *log.Logger) ([]byte, error) {
	if len(opts.CredentialsJSON) > 0 {
		return opts.CredentialsJSON, nil
	}

	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(opts.CredentialsFile)
	if serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	}
	// Also check the standard Google Cloud environment variable
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case serviceAccountJSON != "":
		logger.DebugContext(ctx, "Using inline JSON credentials")
		return []byte(serviceAccountJSON), nil
	case serviceAccountFile != "":
		logger.DebugContext(ctx, "Reading credentials from file", log.FieldPath, serviceAccountFile)
		data, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// SheetName returns the tab reports are written to.
func (c *Client) SheetName() string {
	return c.sheetName
}

// WriteReport replaces the sheet content with the report: the title in A1
// and one report line per row below it.
func (c *Client) WriteReport(ctx context.Context, title, body string) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	clearRange := a1Range(c.sheetName, "A:A")
	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("clear %s: %w", clearRange, err)
	}

	rows := reportRows(title, body)
	dataRange := a1Range(c.sheetName, fmt.Sprintf("A1:A%d", len(rows)))
	// RAW keeps lines such as "- Rent: 700.00" from being read as formulas.
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, &gsheet.ValueRange{Values: rows}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update %s: %w", dataRange, err)
	}

	c.logger.InfoContext(ctx, "Wrote report to sheet", log.FieldTitle, title, "range", dataRange)
	return dataRange, nil
}

// reportRows lays a report out one line per row. Windows line endings are
// normalised; blank lines are kept so the sheet mirrors the text.
func reportRows(title, body string) [][]any {
	lines := strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n")
	rows := make([][]any, 0, len(lines)+1)
	rows = append(rows, []any{title})
	for _, line := range lines {
		rows = append(rows, []any{line})
	}
	return rows
}

// a1Range builds "<sheet>!<cells>", quoting sheet names that need it.
func a1Range(sheet, cells string) string {
	if strings.ContainsAny(sheet, " '!") {
		sheet = "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
	}
	return sheet + "!" + cells
}
