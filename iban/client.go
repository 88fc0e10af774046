package iban

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"github.com/prognoshealth/paymentproxy/config"
)

// Client calls the IBAN calculation API.
type Client struct {
	Endpoint  string
	APIKey    string
	Country   string
	Format    string
	UserAgent string

	HTTPClient *http.Client
}

// NewClient returns a client configured from cfg.
func NewClient(cfg config.IBANConfig, httpCfg config.HTTPConfig) *Client {
	return &Client{
		Endpoint:   cfg.Endpoint,
		APIKey:     cfg.APIKey,
		Country:    cfg.Country,
		Format:     cfg.Format,
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

// URL returns the calculation url for the cleaned sort code and account
// number.
func (c *Client) URL(sortCode, accountNumber string) (string, error) {
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return "", errors.Wrapf(err, "invalid IBAN endpoint '%s'", c.Endpoint)
	}

	q := u.Query()
	q.Set("api_key", c.APIKey)
	q.Set("format", c.Format)
	q.Set("country", c.Country)
	q.Set("bankcode", sortCode)
	q.Set("account", accountNumber)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// Lookup issues a single GET for the account. A non-2xx status or a body that
// isn't a JSON object is an error.
func (c *Client) Lookup(ctx context.Context, sortCode, accountNumber string) (*Lookup, int, error) {
	target, err := c.URL(sortCode, accountNumber)
	if err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed building IBAN request")
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		// the url carries the api key, keep it out of the error
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, 0, errors.Wrap(err, "failed calling IBAN API")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, errors.Errorf("IBAN API returned status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, errors.Wrap(err, "failed reading IBAN API response")
	}

	fields, err := decodeFields(body)
	if err != nil {
		return nil, resp.StatusCode, errors.Wrap(err, "failed decoding IBAN API response")
	}

	if fields == nil {
		return nil, resp.StatusCode, errors.New("IBAN API returned an empty response")
	}

	return &Lookup{Raw: json.RawMessage(body), Fields: fields}, resp.StatusCode, nil
}

// decodeFields decodes body as a single JSON object, keeping numbers as
// json.Number. Anything after the first value is an error.
func decodeFields(body []byte) (map[string]interface{}, error) {
	fields := map[string]interface{}{}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}

	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after top-level value")
	}

	return fields, nil
}
