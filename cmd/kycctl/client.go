package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var errNoToken = errors.New("an inspector token is required (--token or KYC_TOKEN)")

// apiClient is a thin JSON client for the kyc-verify HTTP API.
type apiClient struct {
	addr       string
	token      string
	httpClient *http.Client
}

func newAPIClient(opts *globalOptions) *apiClient {
	return &apiClient{
		addr:       strings.TrimRight(opts.addr, "/"),
		token:      opts.token,
		httpClient: &http.Client{},
	}
}

type envelope struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *apiClient) newRequest(ctx context.Context, method, path string, body []byte, authed bool) (*http.Request, error) {
	if authed && c.token == "" {
		return nil, errNoToken
	}
	req, err := http.NewRequestWithContext(ctx, method, c.addr+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// doJSON sends req and decodes a 2xx body into out. Error envelopes become
// errors carrying the API's code and message.
func (c *apiClient) doJSON(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", req.Method, req.URL.Path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env envelope
		if json.Unmarshal(raw, &env) == nil && env.Error != nil {
			return fmt.Errorf("%s %s: %s: %s", req.Method, req.URL.Path, env.Error.Code, env.Error.Message)
		}
		return fmt.Errorf("%s %s: unexpected status %d", req.Method, req.URL.Path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", req.Method, req.URL.Path, err)
	}
	return nil
}
