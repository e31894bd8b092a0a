// Package sheets reads the internal glossary from a Google spreadsheet.
//
// The spreadsheet is expected to have Japanese terms in column A and their
// English translations in column B, with a header row first:
//
//	|  A   |    B     |
//	|------|----------|
//	| 日   | 英       |
//	| 顧客 | customer |
package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-resty/resty/v2"

	"github.com/at-ishikawa/termbase/internal/config"
	"github.com/at-ishikawa/termbase/internal/fetcher"
)

// ValuesResponse is the body of spreadsheets.values.get.
type ValuesResponse struct {
	Range          string     `json:"range"`
	MajorDimension string     `json:"majorDimension"`
	Values         [][]string `json:"values"`
}

// HeaderRow replaces whatever header the spreadsheet has.
var HeaderRow = []string{"JA", "EN"}

type Client struct {
	httpClient *resty.Client
	config     config.SheetsConfig
	logger     *slog.Logger
}

func NewClient(cfg config.SheetsConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	client := resty.New()
	client.SetBaseURL(cfg.BaseURL)
	return &Client{
		httpClient: client,
		config:     cfg,
		logger:     logger,
	}
}

func (c *Client) valuesPath() string {
	return fmt.Sprintf("/v4/spreadsheets/%s/values/%s",
		url.PathEscape(c.config.SpreadsheetID),
		url.PathEscape(c.config.SheetName),
	)
}

func (c *Client) lookupAPI(ctx context.Context) (*ValuesResponse, error) {
	var values ValuesResponse
	request := c.httpClient.R().
		SetContext(ctx).
		SetResult(&values)
	if c.config.APIKey != "" {
		request.SetQueryParam("key", c.config.APIKey)
	}
	path := c.valuesPath()
	res, err := request.Get(path)
	if err != nil {
		return nil, &fetcher.NetworkError{URL: c.config.BaseURL + path, Err: fmt.Errorf("client.R.Get > %w", err)}
	}
	if res.StatusCode() != http.StatusOK {
		return nil, &fetcher.NetworkError{URL: c.config.BaseURL + path, StatusCode: res.StatusCode(), Body: string(res.Body())}
	}
	return &values, nil
}

// Glossary returns the spreadsheet's first two columns with the header row
// replaced by HeaderRow. It returns nil when no spreadsheet is configured or
// the sheet is empty.
func (c *Client) Glossary(ctx context.Context) ([][]string, error) {
	if !c.config.Enabled() {
		c.logger.Info("no spreadsheet id is configured, skipping the internal glossary")
		return nil, nil
	}
	if c.config.SheetName == "" {
		return nil, &config.ConfigError{Reason: "sheets.sheet_name must be set when sheets.spreadsheet_id is set"}
	}

	c.logger.Info("reading the internal glossary", "spreadsheet_id", c.config.SpreadsheetID, "sheet", c.config.SheetName)
	values, err := c.lookupAPI(ctx)
	if err != nil {
		return nil, fmt.Errorf("c.lookupAPI > %w", err)
	}
	if len(values.Values) == 0 {
		c.logger.Info("the spreadsheet has no data", "spreadsheet_id", c.config.SpreadsheetID, "sheet", c.config.SheetName)
		return nil, nil
	}

	rows := make([][]string, 0, len(values.Values))
	for _, row := range values.Values {
		rows = append(rows, firstTwoColumns(row))
	}
	rows[0] = append([]string(nil), HeaderRow...)
	c.logger.Info("read the internal glossary", "terms", len(rows)-1)
	return rows, nil
}

// firstTwoColumns pads short rows since the API omits trailing empty cells.
func firstTwoColumns(row []string) []string {
	columns := make([]string, 2)
	copy(columns, row)
	return columns
}
