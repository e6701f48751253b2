// Package fielmann queries the appointment booking API for free timeslots.
package fielmann

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/andybalholm/brotli"
	"github.com/ilindan-dev/slot-watcher/internal/config"
	"github.com/ilindan-dev/slot-watcher/internal/domain/model"
	repo "github.com/ilindan-dev/slot-watcher/internal/domain/repository"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Ensure Client implements the interface
var _ repo.AvailabilitySource = (*Client)(nil)

// maxErrorBody bounds how much of a non-2xx body ends up in an error message.
const maxErrorBody = 512

// Client fetches the next free timeslots of a store. Headers are fixed at construction.
type Client struct {
	http    *http.Client
	baseURL string
	prefix  string
	service string
	headers http.Header
	logger  zerolog.Logger
}

// NewClient creates a new instance of Client from the source configuration.
func NewClient(cfg *config.Config, logger *zerolog.Logger) *Client {
	return New(cfg.Source, &http.Client{Timeout: cfg.Source.Timeout}, logger)
}

// New creates a Client using the given HTTP client.
func New(cfg config.SourceConfig, httpClient *http.Client, logger *zerolog.Logger) *Client {
	headers := make(http.Header, len(cfg.Headers)+1)
	for k, v := range cfg.Headers {
		headers.Set(k, v)
	}
	if cfg.UserAgent != "" {
		headers.Set("User-Agent", cfg.UserAgent)
	}

	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		prefix:  cfg.BranchPrefix,
		service: cfg.Service,
		headers: headers,
		logger:  logger.With().Str("component", "fielmann_client").Logger(),
	}
}

// URL returns the availability endpoint of a store.
func (c *Client) URL(store model.StoreCode) string {
	return fmt.Sprintf("%s/api/v3/times/%s-%s/free/%s/next",
		c.baseURL,
		url.PathEscape(c.prefix),
		url.PathEscape(string(store)),
		url.PathEscape(c.service),
	)
}

// Fetch implements the AvailabilitySource interface.
func (c *Client) Fetch(ctx context.Context, store model.StoreCode) ([]model.Timeslot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(store), nil)
	if err != nil {
		return nil, &repo.SourceError{Store: store, Op: "request", Err: err}
	}
	req.Header = c.headers.Clone()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &repo.SourceError{Store: store, Op: "request", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &repo.SourceError{
			Store: store,
			Op:    "status",
			Err:   fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))),
		}
	}

	body, err := decodeBody(resp)
	if err != nil {
		return nil, &repo.SourceError{Store: store, Op: "decode", Err: err}
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, &repo.SourceError{Store: store, Op: "decode", Err: err}
	}
	slots, err := decodeTimeslots(raw)
	if err != nil {
		return nil, &repo.SourceError{Store: store, Op: "decode", Err: err}
	}

	c.logger.Debug().Str("store", string(store)).Int("timeslots", len(slots)).Msg("fetched availability")
	return slots, nil
}

// decodeBody wraps the response body according to its Content-Encoding.
// The request sets Accept-Encoding itself, so net/http does not decompress for us.
func decodeBody(resp *http.Response) (io.ReadCloser, error) {
	switch enc := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))); enc {
	case "", "identity":
		return io.NopCloser(resp.Body), nil
	case "gzip", "x-gzip":
		return gzip.NewReader(resp.Body)
	case "deflate":
		return zlib.NewReader(resp.Body)
	case "br":
		return io.NopCloser(brotli.NewReader(resp.Body)), nil
	case "zstd":
		d, err := zstd.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		return d.IOReadCloser(), nil
	default:
		return nil, errors.New("unsupported content encoding " + enc)
	}
}

// wireTimeslot mirrors the upstream entry with every field required.
type wireTimeslot struct {
	Date      *string `json:"date"`
	Timeslots *struct {
		From *string `json:"from"`
		To   *string `json:"to"`
	} `json:"timeslots"`
}

// decodeTimeslots parses the whole body as an array of timeslots.
// An entry missing date, timeslots, from or to is an error, as is anything after the array.
// A JSON null is an empty answer.
func decodeTimeslots(raw []byte) ([]model.Timeslot, error) {
	var entries []wireTimeslot
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}

	slots := make([]model.Timeslot, 0, len(entries))
	for i, e := range entries {
		switch {
		case e.Date == nil || *e.Date == "":
			return nil, fmt.Errorf("entry %d: missing date", i)
		case e.Timeslots == nil:
			return nil, fmt.Errorf("entry %d: missing timeslots", i)
		case e.Timeslots.From == nil || *e.Timeslots.From == "":
			return nil, fmt.Errorf("entry %d: missing timeslots.from", i)
		case e.Timeslots.To == nil || *e.Timeslots.To == "":
			return nil, fmt.Errorf("entry %d: missing timeslots.to", i)
		}
		slots = append(slots, model.Timeslot{
			Date:      *e.Date,
			Timeslots: model.TimeRange{From: *e.Timeslots.From, To: *e.Timeslots.To},
		})
	}
	return slots, nil
}
