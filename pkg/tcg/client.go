package tcg

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	errs "tcgscraper/pkg/errors"
	"tcgscraper/pkg/logger"
	"tcgscraper/pkg/models"
)

// DefaultUserAgent mimics a desktop browser; the site serves different
// markup to unknown agents.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Client fetches and parses pages from the card database site. Timeouts
// are the caller's responsibility via the request context.
type Client struct {
	httpClient *http.Client
	endpoints  *Endpoints
	headers    map[string]string
	logger     logger.Logger
}

// NewClient creates a site client rooted at baseURL
func NewClient(baseURL, userAgent string, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &Client{
		httpClient: &http.Client{},
		endpoints:  NewEndpoints(baseURL),
		headers: map[string]string{
			"User-Agent":      userAgent,
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.9",
		},
		logger: log,
	}
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// Endpoints returns the client's endpoint builder
func (c *Client) Endpoints() *Endpoints {
	return c.endpoints
}

// doRequest performs an HTTP request with the configured headers and
// classifies failures.
func (c *Client) doRequest(req *http.Request) (string, error) {
	for key, value := range c.headers {
		if req.Header.Get(key) == "" {
			req.Header.Set(key, value)
		}
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		errorType := errs.ErrorTypeNetwork
		if req.Context().Err() == context.DeadlineExceeded {
			errorType = errs.ErrorTypeTimeout
		}
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return "", errs.Wrap(errorType, fmt.Sprintf("request to %s failed", req.URL), err)
	}
	defer resp.Body.Close()

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": duration,
	})

	if resp.StatusCode != http.StatusOK {
		return "", &errs.Error{
			Type:    errs.FromStatusCode(resp.StatusCode),
			Message: fmt.Sprintf("unexpected status for %s", req.URL),
			Code:    resp.StatusCode,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errs.Wrap(errs.ErrorTypeNetwork, "failed to read response body", err)
	}

	return string(body), nil
}

// Expansions fetches the card list page and extracts all expansions
func (c *Client) Expansions(ctx context.Context) ([]models.Expansion, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoints.CardListURL(), nil)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeUnknown, "failed to build request", err)
	}

	body, err := c.doRequest(req)
	if err != nil {
		return nil, err
	}

	expansions := ParseExpansions(body)
	c.logger.InfoWithFields("fetched expansion list", map[string]interface{}{
		"count": len(expansions),
	})
	return expansions, nil
}

// CardListPage fetches one page of an expansion's card search results.
// A 404 response comes back as a not_found error; callers use it as the
// end-of-pagination signal.
func (c *Client) CardListPage(ctx context.Context, expansion models.ExpansionID, page int) ([]models.CardID, error) {
	u := c.endpoints.CardSearchURL(string(expansion), page)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeUnknown, "failed to build request", err)
	}

	body, err := c.doRequest(req)
	if err != nil {
		return nil, err
	}

	return ParseCardNumbers(body), nil
}

// CardDetail fetches and parses one card's detail page. The Referer
// header matters: the site rejects detail requests that don't look like
// they came from the card list.
func (c *Client) CardDetail(ctx context.Context, expansion models.ExpansionID, number models.CardID) (*models.CardRecord, error) {
	form := url.Values{}
	form.Set("cardno", string(number))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoints.CardDetailURL(), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeUnknown, "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", c.endpoints.CardListURL())

	body, err := c.doRequest(req)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(body) == "" {
		return nil, errs.New(errs.ErrorTypeParsing, fmt.Sprintf("empty detail response for %s", number))
	}

	return ParseCardDetail(body, expansion, number, c.endpoints.Resolve)
}
