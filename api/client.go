package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Client talks to a running quicktok server.
type Client struct {
	base *url.URL
	http *http.Client
}

// NewClient returns a client for host, which may carry an http or https
// scheme. A bare host:port defaults to http.
func NewClient(host string, httpClient *http.Client) (*Client, error) {
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}

	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid host %q: %w", host, err)
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{base: base, http: httpClient}, nil
}

func (c *Client) do(ctx context.Context, method, path string, reqData, respData any) error {
	var body io.Reader
	if reqData != nil {
		bts, err := json.Marshal(reqData)
		if err != nil {
			return err
		}
		body = bytes.NewReader(bts)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.base.JoinPath(path).String(), body)
	if err != nil {
		return err
	}

	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")

	response, err := c.http.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	bts, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}

	if response.StatusCode >= http.StatusBadRequest {
		var errResp ErrorResponse
		if err := json.Unmarshal(bts, &errResp); err != nil {
			errResp.Message = strings.TrimSpace(string(bts))
		}

		return StatusError{
			StatusCode:   response.StatusCode,
			Status:       response.Status,
			Code:         errResp.Code,
			ErrorMessage: errResp.Message,
		}
	}

	if respData != nil {
		return json.Unmarshal(bts, respData)
	}

	return nil
}

func (c *Client) Encode(ctx context.Context, req *EncodeRequest) (*EncodeResponse, error) {
	var resp EncodeResponse
	if err := c.do(ctx, http.MethodPost, "/api/encode", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Decode(ctx context.Context, req *DecodeRequest) (*DecodeResponse, error) {
	var resp DecodeResponse
	if err := c.do(ctx, http.MethodPost, "/api/decode", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Info(ctx context.Context) (*InfoResponse, error) {
	var resp InfoResponse
	if err := c.do(ctx, http.MethodGet, "/api/info", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
