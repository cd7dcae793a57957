// Package google implements the remote bills table on a Google
// Spreadsheet: one sheet, one header row, one bill row per line.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"contas/internal/core"
	"contas/internal/remote"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Column layout of the bills sheet (A:K).
const (
	colID = iota
	colSeriesID
	colMonth
	colName
	colAmount
	colGroup
	colInstIndex
	colInstCount
	colFixed
	colStatus
	colNotes
	colCount
)

const headerRange = "A1:K1"

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	billsSheet    string
}

var _ remote.Store = (*Client)(nil)

// NewFromEnv creates a Sheets-backed store using environment variables.
// Required: GOOGLE_SPREADSHEET_ID. Optional: GOOGLE_SHEET_NAME (default
// "Bills") and service account credentials via GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	sheetName := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "Bills"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{svc: svc, spreadsheetID: spreadsheetID, billsSheet: sheetName}, nil
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

// SelectAll reads every data row of the bills sheet. Parsing is
// best-effort: malformed rows are logged and skipped, so a stray header
// or note in the sheet never breaks a full sync.
func (c *Client) SelectAll(ctx context.Context) ([]core.Bill, error) {
	rng := fmt.Sprintf("%s!A2:K", c.billsSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}

	var out []core.Bill
	for i, row := range resp.Values {
		bill, ok := parseRow(row)
		if !ok {
			slog.WarnContext(ctx, "Skipping malformed bill row",
				"sheet", c.billsSheet, "row", i+2)
			continue
		}
		out = append(out, bill)
	}
	return out, nil
}

func (c *Client) Insert(ctx context.Context, bills []core.Bill) error {
	if len(bills) == 0 {
		return nil
	}
	values := make([][]any, 0, len(bills))
	for _, b := range bills {
		values = append(values, billRow(b))
	}
	rng := fmt.Sprintf("%s!A:K", c.billsSheet)
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng,
		&gsheet.ValueRange{Values: values}).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append %d rows to %s: %w", len(bills), c.billsSheet, err)
	}
	return nil
}

// Upsert rewrites rows in place when their id is already present and
// appends the rest in one trailing Insert.
func (c *Client) Upsert(ctx context.Context, bills []core.Bill) error {
	if len(bills) == 0 {
		return nil
	}
	rowByID, err := c.readIDIndex(ctx)
	if err != nil {
		return err
	}

	var updates []*gsheet.ValueRange
	var missing []core.Bill
	for _, b := range bills {
		rowNum, ok := rowByID[b.ID]
		if !ok {
			missing = append(missing, b)
			continue
		}
		updates = append(updates, &gsheet.ValueRange{
			Range:  fmt.Sprintf("%s!A%d:K%d", c.billsSheet, rowNum, rowNum),
			Values: [][]any{billRow(b)},
		})
	}

	if len(updates) > 0 {
		req := &gsheet.BatchUpdateValuesRequest{
			ValueInputOption: "RAW",
			Data:             updates,
		}
		if _, err := c.svc.Spreadsheets.Values.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
			return fmt.Errorf("batch update %d rows: %w", len(updates), err)
		}
	}
	if len(missing) > 0 {
		if err := c.Insert(ctx, missing); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) DeleteByID(ctx context.Context, id string) error {
	return c.DeleteByIDs(ctx, []string{id})
}

// DeleteByIDs removes the matching sheet rows bottom-up so earlier
// deletions do not shift the indices of later ones.
func (c *Client) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	rowByID, err := c.readIDIndex(ctx)
	if err != nil {
		return err
	}

	var rows []int
	for _, id := range ids {
		if rowNum, ok := rowByID[id]; ok {
			rows = append(rows, rowNum)
		}
	}
	if len(rows) == 0 {
		return nil
	}
	sort.Sort(sort.Reverse(sort.IntSlice(rows)))

	sheetID, err := c.sheetID(ctx)
	if err != nil {
		return err
	}

	requests := make([]*gsheet.Request, 0, len(rows))
	for _, rowNum := range rows {
		requests = append(requests, &gsheet.Request{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(rowNum - 1),
					EndIndex:   int64(rowNum),
				},
			},
		})
	}
	_, err = c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID,
		&gsheet.BatchUpdateSpreadsheetRequest{Requests: requests}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("delete %d rows: %w", len(rows), err)
	}
	return nil
}

// readIDIndex maps bill id to its 1-based sheet row number.
func (c *Client) readIDIndex(ctx context.Context) (map[string]int, error) {
	rng := fmt.Sprintf("%s!A2:A", c.billsSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read id column: %w", err)
	}
	index := make(map[string]int, len(resp.Values))
	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		id := strings.TrimSpace(fmt.Sprint(row[0]))
		if id == "" {
			continue
		}
		index[id] = i + 2
	}
	return index, nil
}

func (c *Client) sheetID(ctx context.Context) (int64, error) {
	meta, err := c.svc.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read spreadsheet metadata: %w", err)
	}
	for _, sh := range meta.Sheets {
		if sh.Properties != nil && sh.Properties.Title == c.billsSheet {
			return sh.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found", c.billsSheet)
}

func billRow(b core.Bill) []any {
	instIndex, instCount := "", ""
	if b.Installment {
		instIndex = strconv.Itoa(b.InstallmentIndex)
		instCount = strconv.Itoa(b.InstallmentCount)
	}
	return []any{
		b.ID,
		b.SeriesID,
		string(b.Month),
		b.Name,
		b.Amount.Format(),
		b.Group,
		instIndex,
		instCount,
		strconv.FormatBool(b.Fixed),
		string(b.Status),
		b.Notes,
	}
}

func parseRow(row []any) (core.Bill, bool) {
	cols := make([]string, colCount)
	for i := 0; i < colCount && i < len(row); i++ {
		cols[i] = strings.TrimSpace(fmt.Sprint(row[i]))
	}
	if cols[colID] == "" {
		return core.Bill{}, false
	}
	month, err := core.ParseMonthRef(cols[colMonth])
	if err != nil {
		return core.Bill{}, false
	}
	amount, err := core.ParseMoney(cols[colAmount])
	if err != nil {
		return core.Bill{}, false
	}
	status := core.Status(cols[colStatus])
	if status.Validate() != nil {
		status = core.StatusPending
	}

	bill := core.Bill{
		ID:       cols[colID],
		SeriesID: cols[colSeriesID],
		Month:    month,
		Name:     cols[colName],
		Amount:   amount,
		Group:    cols[colGroup],
		Fixed:    strings.EqualFold(cols[colFixed], "true"),
		Status:   status,
		Notes:    cols[colNotes],
	}
	if cols[colInstIndex] != "" && cols[colInstCount] != "" {
		idx, err1 := strconv.Atoi(cols[colInstIndex])
		cnt, err2 := strconv.Atoi(cols[colInstCount])
		if err1 == nil && err2 == nil && idx >= 1 && idx <= cnt {
			bill.Installment = true
			bill.InstallmentIndex = idx
			bill.InstallmentCount = cnt
		}
	}
	return bill, true
}
