// Package mirror pushes the ledger and scoreboard into a Google Spreadsheet.
// The spreadsheet is a read-only reflection for the household, never a source
// of truth: nothing is ever read back into the store.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"kakeibo/internal/core"
	"kakeibo/internal/services"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	// Year-prefixed, e.g. "2025 Ledger" and "2025 Scoreboard".
	ledgerSheet     string
	scoreboardSheet string
}

// New creates a Sheets client authenticated with service account credentials.
// Credentials come from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE,
// or GOOGLE_APPLICATION_CREDENTIALS. Sheet names get the current year prefixed
// so a new year starts on fresh tabs.
func New(ctx context.Context, spreadsheetID, sheetBase string) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	sheetBase = strings.TrimSpace(sheetBase)
	if sheetBase == "" {
		sheetBase = "Ledger"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	year := time.Now().Year()
	return &Client{
		svc:             svc,
		spreadsheetID:   spreadsheetID,
		ledgerSheet:     yearPrefixedName(sheetBase, year),
		scoreboardSheet: yearPrefixedName("Scoreboard", year),
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// AppendEntry appends one committed expense as a ledger row and returns the
// cell reference it landed on.
func (c *Client) AppendEntry(ctx context.Context, date core.DateKey, p core.Participant, e core.Entry) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	// Find the next empty row from the date column.
	rng := fmt.Sprintf("%s!A:A", c.ledgerSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("get sheet dimensions for %s: %w", c.ledgerSheet, err)
	}
	nextRow := len(resp.Values) + 1

	dataRange := fmt.Sprintf("%s!A%d:E%d", c.ledgerSheet, nextRow, nextRow)
	vr := &gsheet.ValueRange{Values: [][]any{entryRow(date, p, e)}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update %s: %w", dataRange, err)
	}

	ref := fmt.Sprintf("%s!A%d:E%d", c.ledgerSheet, nextRow, nextRow)
	slog.InfoContext(ctx, "Mirrored ledger entry", "ref", ref)
	return ref, nil
}

// WriteScoreboard overwrites the scoreboard tab with the current standings.
// The block is rewritten wholesale each time, there is no incremental update.
func (c *Client) WriteScoreboard(ctx context.Context, sb services.Scoreboard) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	rows := [][]any{
		{"Updated", sb.GeneratedAt.Format(time.RFC3339)},
		{"Days", sb.Days},
		{fmt.Sprintf("%s total", sb.ParticipantA), sb.TotalA.String()},
		{fmt.Sprintf("%s total", sb.ParticipantB), sb.TotalB.String()},
		{"Overall", sb.Overall.String()},
		{fmt.Sprintf("%s wins", sb.ParticipantA), sb.Tally.WinsA},
		{fmt.Sprintf("%s wins", sb.ParticipantB), sb.Tally.WinsB},
		{"Draws", sb.Tally.Draws},
		{fmt.Sprintf("%s goal progress", sb.ParticipantA), fmt.Sprintf("%.1f%%", sb.ProgressA.DisplayPercent)},
		{fmt.Sprintf("%s goal progress", sb.ParticipantB), fmt.Sprintf("%.1f%%", sb.ProgressB.DisplayPercent)},
	}

	rng := fmt.Sprintf("%s!A1:B%d", c.scoreboardSheet, len(rows))
	vr := &gsheet.ValueRange{Values: rows}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	return nil
}

func entryRow(date core.DateKey, p core.Participant, e core.Entry) []any {
	recorded := time.UnixMilli(e.RecordedAt).UTC().Format(time.RFC3339)
	return []any{string(date), string(p), e.Amount.String(), e.Description, recorded}
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a
// 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
