package finviz

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stogger/internal/contracts"
	"github.com/wonny/stogger/pkg/config"
	"github.com/wonny/stogger/pkg/httputil"
	"github.com/wonny/stogger/pkg/logger"
)

const quotePage = `<html><body>
<table class="snapshot"><tr><td>P/E</td></tr></table>
<table id="news-table">
<tr><td>01/15/24 09:30AM</td><td><a href="#">Stock surges on earnings</a></td></tr>
<tr><td>09:45AM</td><td><a href="#">Analysts raise price target</a></td></tr>
</table>
</body></html>`

func newTestClient(baseURL string) *Client {
	httpClient := httputil.New(&config.Config{}, logger.Nop()).
		WithUserAgent("stogger-test")
	return NewClient(httpClient, baseURL, logger.Nop())
}

func TestFetchNewsTable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "AMZN", r.URL.Query().Get("t"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Write([]byte(quotePage))
	}))
	defer server.Close()

	client := newTestClient(server.URL + "/quote.ashx?t=")

	markup, err := client.FetchNewsTable(context.Background(), "AMZN")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(markup, "<table"))
	assert.Contains(t, markup, "Analysts raise price target")
	assert.NotContains(t, markup, "P/E")

	result, err := ParseNewsTable(markup, "AMZN", ParseOptions{})
	require.NoError(t, err)
	assert.Len(t, result.Records, 2)
}

func TestFetchNewsTable_StatusError(t *testing.T) {
	for _, status := range []int{http.StatusForbidden, http.StatusTooManyRequests, http.StatusServiceUnavailable} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			calls := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(status)
			}))
			defer server.Close()

			client := newTestClient(server.URL + "/?t=")

			_, err := client.FetchNewsTable(context.Background(), "AMZN")
			require.Error(t, err)

			var fetchErr *contracts.FetchError
			require.True(t, errors.As(err, &fetchErr))
			assert.Equal(t, status, fetchErr.StatusCode)
			assert.Equal(t, 1, calls, "fetch must not be retried")
		})
	}
}

func TestFetchNewsTable_MissingTable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>captcha</p></body></html>`))
	}))
	defer server.Close()

	client := newTestClient(server.URL + "/?t=")

	_, err := client.FetchNewsTable(context.Background(), "AMZN")
	assert.ErrorIs(t, err, contracts.ErrNoNewsTable)

	var fetchErr *contracts.FetchError
	assert.True(t, errors.As(err, &fetchErr))
}

func TestFetchNewsTable_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL + "/?t="
	server.Close()

	client := newTestClient(baseURL)

	_, err := client.FetchNewsTable(context.Background(), "AMZN")

	var fetchErr *contracts.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Zero(t, fetchErr.StatusCode)
}

func TestURLFor(t *testing.T) {
	client := NewClient(nil, "", logger.Nop())
	assert.Equal(t, "https://finviz.com/quote.ashx?t=AMZN", client.URLFor("AMZN"))
	assert.Equal(t, "https://finviz.com/quote.ashx?t=BRK.B", client.URLFor("BRK.B"))
}
