package routerfusion

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"

	"github.com/prognoshealth/paymentproxy/config"
)

// Client posts GraphQL documents to the Router Fusion API.
type Client struct {
	Endpoint  string
	APIKey    string
	UserAgent string

	HTTPClient *http.Client
}

// NewClient returns a client configured from cfg.
func NewClient(cfg config.RouterFusionConfig, httpCfg config.HTTPConfig) *Client {
	return &Client{
		Endpoint:   cfg.Endpoint,
		APIKey:     cfg.APIKey,
		UserAgent:  httpCfg.UserAgent,
		HTTPClient: httpCfg.Client(),
	}
}

// Configured reports whether the client has a credential to call with.
func (c *Client) Configured() bool {
	return c.APIKey != ""
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}

	return http.DefaultClient
}

// Execute issues a single POST of r. A non-2xx status is an error carrying
// the upstream body text, as is a body that isn't a JSON object.
func (c *Client) Execute(ctx context.Context, r Request) (*Response, int, error) {
	payload, err := json.Marshal(r.Payload())
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed encoding GraphQL request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed building Router Fusion request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed calling Router Fusion API")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, errors.Wrap(err, "failed reading Router Fusion API response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, errors.Errorf("Router Fusion API returned status: %d - %s", resp.StatusCode, body)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, resp.StatusCode, errors.Wrap(err, "failed decoding Router Fusion API response")
	}

	if fields == nil {
		return nil, resp.StatusCode, errors.New("Router Fusion API returned an empty response")
	}

	return &Response{Data: fields["data"], Errors: fields["errors"]}, resp.StatusCode, nil
}
