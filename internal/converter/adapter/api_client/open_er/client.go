package open_er

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/langowen/fxconverter/internal/entities"
)

const maxBodySize = 1 << 20

// HTTPClient talks to open.er-api.com style endpoints: GET <baseURL>/<BASE>.
type HTTPClient struct {
	client  *http.Client
	baseURL string
	timeout time.Duration
	now     func() time.Time
}

type latestResponse struct {
	Result            string             `json:"result"`
	BaseCode          string             `json:"base_code"`
	TimeLastUpdateUTC string             `json:"time_last_update_utc"`
	Rates             map[string]float64 `json:"rates"`
	ErrorType         string             `json:"error-type,omitempty"`
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		now:     time.Now,
	}
}

// Fetch performs exactly one request for base. Every failure is returned as an
// error wrapping entities.ErrNetworkFailure, ErrDataUnavailable or ErrInvalidInput.
func (c *HTTPClient) Fetch(ctx context.Context, base entities.CurrencyCode) (*entities.RateSnapshot, error) {
	const op = "open_er.Fetch"

	if !base.IsSupported() {
		return nil, errors.Wrapf(entities.ErrInvalidInput, "%s: unsupported base %q", op, base)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + "/" + url.PathEscape(base.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrapf(entities.ErrNetworkFailure, "%s: create request: %v", op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(entities.ErrNetworkFailure, "%s: %v", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil, errors.Wrapf(entities.ErrNetworkFailure, "%s: bad status: %s", op, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, errors.Wrapf(entities.ErrNetworkFailure, "%s: read body: %v", op, err)
	}

	var result latestResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, errors.Wrapf(entities.ErrDataUnavailable, "%s: json unmarshal: %v", op, err)
	}

	if result.Result != "success" {
		return nil, errors.Wrapf(entities.ErrDataUnavailable, "%s: %s", op, describeFailure(result))
	}

	snapshot, err := entities.NewRateSnapshot(base, result.Rates, result.TimeLastUpdateUTC, c.now())
	if err != nil {
		return nil, errors.Wrapf(err, "%s: empty rates", op)
	}

	slog.Debug("rates fetched", "op", op, "base", base, "count", len(result.Rates), "last_update", result.TimeLastUpdateUTC)

	return snapshot, nil
}

func describeFailure(r latestResponse) string {
	if r.ErrorType != "" {
		return fmt.Sprintf("result=%q error-type=%q", r.Result, r.ErrorType)
	}
	return fmt.Sprintf("result=%q", r.Result)
}
