package ergast

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/omarshaarawi/f1bot/internal/config"
)

type ErrorKind string

const (
	KindTransport ErrorKind = "transport"
	KindStatus    ErrorKind = "status"
	KindDecode    ErrorKind = "decode"
)

// FetchError carries the failed URL and the underlying cause of a request.
type FetchError struct {
	URL        string
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("fetching %s: unexpected status code: %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	limit      int
}

func NewClient(cfg config.ErgastAPI) *Client {
	return &Client{
		httpClient: &http.Client{},
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		limit:      cfg.Limit,
	}
}

func (c *Client) Get(ctx context.Context, endpoint string, result interface{}) error {
	url := fmt.Sprintf("%s%s", c.baseURL, endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &FetchError{URL: url, Kind: KindTransport, Err: fmt.Errorf("error creating request: %w", err)}
	}

	if c.limit > 0 {
		q := req.URL.Query()
		q.Set("limit", strconv.Itoa(c.limit))
		req.URL.RawQuery = q.Encode()
	}
	req.Header.Set("Accept", "application/json")

	slog.Debug("Fetching", "url", req.URL.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &FetchError{URL: url, Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &FetchError{URL: url, Kind: KindStatus, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return &FetchError{URL: url, Kind: KindDecode, Err: err}
	}

	return nil
}
