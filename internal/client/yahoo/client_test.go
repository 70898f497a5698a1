package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

const chartBody = `{
	"chart": {
		"result": [{
			"meta": {
				"symbol": "AAPL",
				"regularMarketPrice": 185.92,
				"chartPreviousClose": 184.50,
				"longName": "Apple Inc.",
				"shortName": "Apple"
			}
		}],
		"error": null
	}
}`

func TestQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v8/finance/chart/AAPL", r.URL.Path)
		require.Equal(t, "2d", r.URL.Query().Get("range"))
		require.Equal(t, "1d", r.URL.Query().Get("interval"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chartBody))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL)
	q, err := c.Quote(context.Background(), "aapl")
	require.NoError(t, err)
	require.Equal(t, "AAPL", q.Symbol)
	require.Equal(t, "185.92", q.Price.String())
	require.NotNil(t, q.PreviousClose)
	require.Equal(t, "184.5", q.PreviousClose.String())
	require.Equal(t, "Apple Inc.", q.CompanyName)
}

func TestQuote_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL)
	_, err := c.Quote(context.Background(), "NOPE")
	require.ErrorIs(t, err, ErrSymbolNotFound)
}

func TestQuote_EmptySymbol(t *testing.T) {
	c := NewClient(http.DefaultClient, "http://unused")
	_, err := c.Quote(context.Background(), "  ")
	require.ErrorIs(t, err, ErrSymbolNotFound)
}

func TestQuote_NoMarketPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":[{"meta":{"symbol":"XXXX"}}],"error":null}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL)
	_, err := c.Quote(context.Background(), "XXXX")
	require.ErrorIs(t, err, ErrSymbolNotFound)
}

func TestValidate(t *testing.T) {
	notFound := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if notFound {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(chartBody))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL)
	ok, err := c.Validate(context.Background(), "AAPL")
	require.NoError(t, err)
	require.True(t, ok)

	notFound = true
	ok, err = c.Validate(context.Background(), "NOPE")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestValidate_OutageIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL)
	_, err := c.Validate(context.Background(), "AAPL")
	require.Error(t, err)
}
