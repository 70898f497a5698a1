// Package yahoo implements the market-data provider client against the Yahoo
// Finance chart API. It is the only component allowed to talk to the provider;
// callers go through the stock service, which adds caching.
package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrSymbolNotFound reports that the provider does not know the symbol, as
// opposed to being unreachable.
var ErrSymbolNotFound = errors.New("symbol not found")

type Client struct {
	host       string
	httpClient *http.Client
}

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("yahoo API error (%d): %s", e.Status, e.Body)
}

func NewClient(httpClient *http.Client, host string) *Client {
	if host == "" {
		host = "https://query1.finance.yahoo.com"
	}
	host = strings.TrimRight(host, "/")
	return &Client{
		host:       host,
		httpClient: httpClient,
	}
}

// Quote is the provider's view of one symbol at request time.
type Quote struct {
	Symbol        string
	Price         decimal.Decimal
	PreviousClose *decimal.Decimal
	CompanyName   string
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string   `json:"symbol"`
				RegularMarketPrice *float64 `json:"regularMarketPrice"`
				ChartPreviousClose *float64 `json:"chartPreviousClose"`
				LongName           string   `json:"longName"`
				ShortName          string   `json:"shortName"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Quote fetches the current price, previous close and company name for a
// symbol. It fails rather than fabricate data: an unknown symbol returns
// ErrSymbolNotFound, an unreachable provider returns the transport error.
func (c *Client) Quote(ctx context.Context, symbol string) (*Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("%w: empty symbol", ErrSymbolNotFound)
	}

	query := url.Values{}
	query.Set("range", "2d")
	query.Set("interval", "1d")
	body, err := c.doRequest(ctx, "/v8/finance/chart/"+url.PathEscape(symbol), query)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
		}
		return nil, err
	}

	var parsed chartResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode chart response: %w", err)
	}
	if parsed.Chart.Error != nil {
		if strings.EqualFold(parsed.Chart.Error.Code, "not found") {
			return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
		}
		return nil, fmt.Errorf("chart error %s: %s", parsed.Chart.Error.Code, parsed.Chart.Error.Description)
	}
	if len(parsed.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}

	meta := parsed.Chart.Result[0].Meta
	if meta.RegularMarketPrice == nil {
		return nil, fmt.Errorf("%w: %s has no market price", ErrSymbolNotFound, symbol)
	}

	q := &Quote{
		Symbol:      symbol,
		Price:       decimal.NewFromFloat(*meta.RegularMarketPrice),
		CompanyName: meta.LongName,
	}
	if q.CompanyName == "" {
		q.CompanyName = meta.ShortName
	}
	if q.CompanyName == "" {
		q.CompanyName = symbol
	}
	if meta.ChartPreviousClose != nil {
		prev := decimal.NewFromFloat(*meta.ChartPreviousClose)
		q.PreviousClose = &prev
	}
	return q, nil
}

// Validate reports whether the provider knows the symbol. Provider outages
// surface as errors so callers can tell "invalid" from "unknown".
func (c *Client) Validate(ctx context.Context, symbol string) (bool, error) {
	_, err := c.Quote(ctx, symbol)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrSymbolNotFound) {
		return false, nil
	}
	return false, err
}

func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	fullURL := c.host + path
	if len(query) > 0 {
		fullURL = fullURL + "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "stocksim/0.1")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
