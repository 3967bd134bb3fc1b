package google

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"budgetbook/internal/log"
)

func TestReportRows(t *testing.T) {
	rows := reportRows("Expense Report - March 2025", "Expense Report for March 2025\r\n--------------------\r\n\r\nFinal Balance: 1.00")

	want := []string{
		"Expense Report - March 2025",
		"Expense Report for March 2025",
		"--------------------",
		"",
		"Final Balance: 1.00",
	}
	if len(rows) != len(want) {
		t.Fatalf("reportRows() returned %d rows, want %d", len(rows), len(want))
	}
	for i, row := range rows {
		if len(row) != 1 || row[0] != want[i] {
			t.Errorf("row %d = %v, want [%q]", i, row, want[i])
		}
	}
}

func TestA1Range(t *testing.T) {
	tests := []struct {
		sheet, cells, want string
	}{
		{"Reports", "A:A", "Reports!A:A"},
		{"2025 Reports", "A1:A4", "'2025 Reports'!A1:A4"},
		{"Bob's", "A1", "'Bob''s'!A1"},
	}
	for _, tt := range tests {
		if got := a1Range(tt.sheet, tt.cells); got != tt.want {
			t.Errorf("a1Range(%q, %q) = %q, want %q", tt.sheet, tt.cells, got, tt.want)
		}
	}
}

func TestNewFromConfigValidation(t *testing.T) {
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	ctx := context.Background()

	if _, err := NewFromConfig(ctx, Options{}, nil); err == nil || !strings.Contains(err.Error(), "GOOGLE_SPREADSHEET_ID") {
		t.Errorf("expected missing spreadsheet error, got %v", err)
	}

	_, err := NewFromConfig(ctx, Options{SpreadsheetID: "sheet"}, nil)
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Errorf("expected missing credentials error, got %v", err)
	}
}

func TestLoadCredentialsPrecedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "sa.json")
	if err := os.WriteFile(file, []byte(`{"from":"file"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", file)
	ctx := context.Background()
	logger := log.Discard()

	got, err := loadCredentials(ctx, Options{CredentialsJSON: []byte(`{"from":"opts"}`)}, logger)
	if err != nil || string(got) != `{"from":"opts"}` {
		t.Errorf("explicit credentials: got %s, %v", got, err)
	}

	got, err = loadCredentials(ctx, Options{}, logger)
	if err != nil || string(got) != `{"from":"file"}` {
		t.Errorf("application credentials: got %s, %v", got, err)
	}

	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", `{"from":"env"}`)
	got, err = loadCredentials(ctx, Options{}, logger)
	if err != nil || string(got) != `{"from":"env"}` {
		t.Errorf("inline env credentials: got %s, %v", got, err)
	}

	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	if _, err := loadCredentials(ctx, Options{CredentialsFile: filepath.Join(dir, "missing.json")}, logger); err == nil {
		t.Error("expected error for unreadable credentials file")
	}
}
