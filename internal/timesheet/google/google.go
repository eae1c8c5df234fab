// Package google reads timesheet entries from a Google Sheets export.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/oauth2"
	googleauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"ore/internal/config"
	"ore/internal/core"
	ports "ore/internal/timesheet"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// Ensure interface conformance
var _ ports.EntrySource = (*Client)(nil)

// New creates a Sheets client using the OAuth client and token from the
// configuration. Run oauth-init once to obtain the token file.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	if strings.TrimSpace(cfg.GoogleSpreadsheetID) == "" {
		return nil, errors.New("missing Google spreadsheet ID")
	}
	if strings.TrimSpace(cfg.GoogleSheetName) == "" {
		return nil, errors.New("missing Google sheet name")
	}

	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.GoogleSpreadsheetID,
		sheetName:     cfg.GoogleSheetName,
	}, nil
}

// newSheetsService initializes a Sheets Service from OAuth credentials,
// accepting either inline JSON or file paths.
func newSheetsService(ctx context.Context, cfg *config.Config) (*gsheet.Service, error) {
	clientJSON, err := readCredential(cfg.GoogleOAuthClientJSON, cfg.GoogleOAuthClientFile)
	if err != nil {
		return nil, fmt.Errorf("oauth client credentials: %w", err)
	}
	tokenJSON, err := readCredential(cfg.GoogleOAuthTokenJSON, cfg.GoogleOAuthTokenFile)
	if err != nil {
		return nil, fmt.Errorf("oauth token: %w", err)
	}

	oauthCfg, err := googleauth.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse oauth config: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(tokenJSON, &token); err != nil {
		return nil, fmt.Errorf("parse oauth token: %w", err)
	}

	httpClient := oauthCfg.Client(ctx, &token)
	service, err := gsheet.NewService(ctx, goption.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func readCredential(inline, file string) ([]byte, error) {
	switch {
	case strings.TrimSpace(inline) != "":
		return []byte(inline), nil
	case strings.TrimSpace(file) != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("not configured")
	}
}

// FetchEntries reads the full sheet and returns the entries that fall in
// the requested month.
func (c *Client) FetchEntries(ctx context.Context, year, month int) ([]core.TimesheetEntry, error) {
	if month < 1 || month > 12 {
		return nil, core.ErrInvalidMonth
	}
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:H", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", c.sheetName, err)
	}

	entries, err := parseEntries(resp.Values, year, month)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Fetched timesheet entries from Google Sheets",
		"sheet", c.sheetName,
		"year", year,
		"month", month,
		"rows", len(resp.Values),
		"entries", len(entries))
	return entries, nil
}
