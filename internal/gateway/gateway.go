// © 2025 Satstall Authors. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package gateway implements the Blockonomics payment API client: issuing
// fresh receiving addresses and querying confirmed balances.
package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/satstall/satstall/internal/request"
)

// DefaultBaseURL is the Blockonomics API base URL.
const DefaultBaseURL = "https://www.blockonomics.co"

// Errors returned by the client. Transport failures and non-success
// responses surface as the underlying request errors.
var (
	ErrNoAPIKey  = errors.New("gateway: API key is not set")
	ErrNoAddress = errors.New("gateway: no address returned")
	ErrNoBalance = errors.New("gateway: empty balance response")
)

// Client calls the payment provider. The zero value is not usable; APIKey
// must be set.
type Client struct {
	// APIKey is the Blockonomics API key.
	APIKey string
	// BaseURL overrides the API base URL; DefaultBaseURL if empty.
	BaseURL string
	// HTTPClient is an optional custom HTTP client to use for requests.
	HTTPClient *http.Client
	// Scrubber is an optional strings.Replacer that scrubs secrets from
	// error messages.
	Scrubber *strings.Replacer
}

func (c *Client) baseURL() string {
	if c.BaseURL != "" {
		return strings.TrimSuffix(c.BaseURL, "/")
	}
	return DefaultBaseURL
}

func (c *Client) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + c.APIKey}
}

type newAddressResponse struct {
	Address string `json:"address"`
}

// NewAddress requests a fresh receiving address bound to the operator's
// account. There are no retries; on failure the caller must not create an
// order.
func (c *Client) NewAddress(ctx context.Context) (string, error) {
	if c.APIKey == "" {
		return "", ErrNoAPIKey
	}
	resp, err := request.Make[newAddressResponse](ctx, request.Params{
		Method:     http.MethodPost,
		URL:        c.baseURL() + "/api/new_address",
		Headers:    c.headers(),
		HTTPClient: c.HTTPClient,
		Scrubber:   c.Scrubber,
	})
	if err != nil {
		return "", err
	}
	if resp.Address == "" {
		return "", ErrNoAddress
	}
	return resp.Address, nil
}

type addressResponse struct {
	Confirmed int64 `json:"confirmed"`
}

type balanceResponse struct {
	Data []struct {
		Confirmed int64 `json:"confirmed"`
	} `json:"data"`
}

// ConfirmedBalance returns the confirmed amount received by addr, in
// satoshis. The primary per-address endpoint is tried first, with a fall
// back to the bulk balance endpoint before failing.
func (c *Client) ConfirmedBalance(ctx context.Context, addr string) (int64, error) {
	if c.APIKey == "" {
		return 0, ErrNoAPIKey
	}

	resp, err := request.Make[addressResponse](ctx, request.Params{
		Method:     http.MethodGet,
		URL:        c.baseURL() + "/api/address?addr=" + url.QueryEscape(addr),
		Headers:    c.headers(),
		HTTPClient: c.HTTPClient,
		Scrubber:   c.Scrubber,
	})
	if err == nil {
		return resp.Confirmed, nil
	}

	fallback, err := request.Make[balanceResponse](ctx, request.Params{
		Method:     http.MethodPost,
		URL:        c.baseURL() + "/api/balance",
		Headers:    c.headers(),
		Body:       map[string][]string{"addr": {addr}},
		HTTPClient: c.HTTPClient,
		Scrubber:   c.Scrubber,
	})
	if err != nil {
		return 0, err
	}
	if len(fallback.Data) == 0 {
		return 0, ErrNoBalance
	}
	return fallback.Data[0].Confirmed, nil
}
