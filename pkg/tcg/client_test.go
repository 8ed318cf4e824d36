package tcg

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "tcgscraper/pkg/errors"
	"tcgscraper/pkg/logger"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/cardlist/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, expansionListHTML)
	})
	mux.HandleFunc("/cardlist/cardsearch_ex", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "1" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, cardSearchHTML)
	})
	mux.HandleFunc("/cardlist/detail/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if r.Header.Get("Referer") == "" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("cardno") == "" {
			http.Error(w, "missing cardno", http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, cardDetailHTML)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestClientExpansions(t *testing.T) {
	server := newTestServer(t)
	client := NewClient(server.URL, "", logger.NewTestLogger())

	expansions, err := client.Expansions(context.Background())
	require.NoError(t, err)
	require.Len(t, expansions, 2)
	assert.Equal(t, "NSD01", string(expansions[0].Code))
}

func TestClientCardListPage(t *testing.T) {
	server := newTestServer(t)
	client := NewClient(server.URL, "", logger.NewTestLogger())

	numbers, err := client.CardListPage(context.Background(), "NSD01", 1)
	require.NoError(t, err)
	assert.Len(t, numbers, 2)
}

func TestClientCardListPageNotFound(t *testing.T) {
	server := newTestServer(t)
	client := NewClient(server.URL, "", logger.NewTestLogger())

	_, err := client.CardListPage(context.Background(), "NSD01", 2)
	require.Error(t, err)

	var classified *errs.Error
	require.True(t, errors.As(err, &classified))
	assert.Equal(t, errs.ErrorTypeNotFound, classified.Type)
	assert.Equal(t, http.StatusNotFound, classified.Code)
}

func TestClientCardDetail(t *testing.T) {
	server := newTestServer(t)
	client := NewClient(server.URL, "", logger.NewTestLogger())

	record, err := client.CardDetail(context.Background(), "NSD01", "NSD01-001")
	require.NoError(t, err)
	assert.Equal(t, "NSD01-001", string(record.Number))
	assert.NotEmpty(t, record.Payload)
}

func TestClientClassifiesServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broke", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", logger.NewTestLogger())
	_, err := client.CardListPage(context.Background(), "NSD01", 1)
	require.Error(t, err)

	var classified *errs.Error
	require.True(t, errors.As(err, &classified))
	assert.Equal(t, errs.ErrorTypeServerError, classified.Type)
	assert.True(t, errs.IsRetryable(classified.Type))
}

func TestClientTimeoutClassifiedRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", logger.NewTestLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.CardListPage(ctx, "NSD01", 1)
	require.Error(t, err)

	var classified *errs.Error
	require.True(t, errors.As(err, &classified))
	assert.Equal(t, errs.ErrorTypeTimeout, classified.Type)
	assert.True(t, errs.IsRetryable(classified.Type))
}

func TestClientSetHeader(t *testing.T) {
	var gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		fmt.Fprint(w, expansionListHTML)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-agent/1.0", logger.NewTestLogger())
	_, err := client.Expansions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test-agent/1.0", gotAgent)
}
