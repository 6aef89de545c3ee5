// Package client is the HTTP implementation of inventory.Backend.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"Gin_postgres_redis_inventory/api"
	"Gin_postgres_redis_inventory/inventory"
	"Gin_postgres_redis_inventory/slip"
)

// SessionProvider supplies the bearer token and is told when the server
// rejected it.
type SessionProvider interface {
	Token(ctx context.Context) (string, error)
	OnUnauthorized(ctx context.Context)
}

type Config struct {
	BaseURL string
	Timeout time.Duration
	// HTTPClient overrides the default transport, mostly for tests.
	HTTPClient *http.Client
}

// APIError is any non-2xx response.
type APIError struct {
	Status  int
	Message string
	Code    slip.ErrCode
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http %d", e.Status)
	}
	return fmt.Sprintf("http %d: %s", e.Status, e.Message)
}

func (e *APIError) StatusCode() int    { return e.Status }
func (e *APIError) Conflict() bool     { return e.Status == http.StatusConflict }
func (e *APIError) NotFound() bool     { return e.Status == http.StatusNotFound }
func (e *APIError) Unauthorized() bool { return e.Status == http.StatusUnauthorized }

type Client struct {
	base string
	hc   *http.Client
	sess SessionProvider
}

var _ inventory.Backend = (*Client)(nil)

func New(cfg Config, sess SessionProvider) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		hc = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	return &Client{base: strings.TrimRight(cfg.BaseURL, "/"), hc: hc, sess: sess}
}

// do sends one request. No retries: a failure is returned as is and the
// caller decides.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.sess != nil {
		tok, err := c.sess.Token(ctx)
		if err != nil {
			return fmt.Errorf("session token: %w", err)
		}
		if tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var eb api.Error
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(raw, &eb) == nil && eb.Error != "" {
			apiErr.Message = eb.Error
			apiErr.Code = eb.Code
		} else {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		if apiErr.Unauthorized() && c.sess != nil {
			c.sess.OnUnauthorized(ctx)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

type list[T any] struct {
	Items []T `json:"items"`
}

func (c *Client) ListAvailableDevices(ctx context.Context, deviceTypeID string, quantity int) ([]slip.Candidate, error) {
	q := url.Values{}
	if deviceTypeID != "" {
		q.Set("deviceTypeId", deviceTypeID)
	}
	if quantity > 0 {
		q.Set("quantity", strconv.Itoa(quantity))
	}
	var out list[slip.Candidate]
	if err := c.do(ctx, http.MethodGet, "/api/devices/available", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) GetRack(ctx context.Context, rackID string) (*api.Rack, error) {
	var out api.Rack
	if err := c.do(ctx, http.MethodGet, "/api/racks/"+url.PathEscape(rackID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListDeviceLocations(ctx context.Context, rackID string, lq inventory.LocationQuery) (*api.LocationPage, error) {
	q := url.Values{}
	if lq.Page > 0 {
		q.Set("page", strconv.Itoa(lq.Page))
	}
	if lq.Size > 0 {
		q.Set("size", strconv.Itoa(lq.Size))
	}
	if lq.Label != "" {
		q.Set("label", lq.Label)
	}
	var out api.LocationPage
	if err := c.do(ctx, http.MethodGet, "/api/racks/"+url.PathEscape(rackID)+"/locations", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateRackLocation(ctx context.Context, rackID string, x, y int) (*api.LocationRow, error) {
	var out api.LocationRow
	in := api.CreateRackLocationReq{X: x, Y: y}
	if err := c.do(ctx, http.MethodPost, "/api/racks/"+url.PathEscape(rackID)+"/locations", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateDeviceLocation(ctx context.Context, deviceID string, locationID *string) (*api.Device, error) {
	var out api.Device
	in := api.UpdateDeviceLocationReq{LocationID: locationID}
	if err := c.do(ctx, http.MethodPut, "/api/devices/"+url.PathEscape(deviceID)+"/location", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateLoanSlip(ctx context.Context, req api.CreateLoanSlipReq) (*api.Slip, error) {
	var out api.Slip
	if err := c.do(ctx, http.MethodPost, "/api/slips/loan", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateMaintenanceSlip(ctx context.Context, req api.CreateMaintenanceSlipReq) (*api.Slip, error) {
	var out api.Slip
	if err := c.do(ctx, http.MethodPost, "/api/slips/maintenance", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ApplyReturn(ctx context.Context, family slip.Family, parentID string, items []api.ReturnItem) error {
	path := "/api/slips/" + family.String() + "/" + url.PathEscape(parentID) + "/returns"
	return c.do(ctx, http.MethodPost, path, nil, api.ApplyReturnReq{Items: items}, nil)
}

func (c *Client) CancelSlip(ctx context.Context, kind slip.Kind, id string) error {
	path := "/api/slips/" + kind.String() + "/" + url.PathEscape(id) + "/cancel"
	return c.do(ctx, http.MethodPost, path, nil, nil, nil)
}

func (c *Client) ListAvailableParentSlips(ctx context.Context, family slip.Family) ([]slip.ParentSummary, error) {
	var out list[slip.ParentSummary]
	q := url.Values{"status": {"available"}}
	if err := c.do(ctx, http.MethodGet, "/api/slips/"+family.String(), q, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) ListResolvableDetails(ctx context.Context, family slip.Family, parentID string) ([]slip.OpenDetail, error) {
	var out list[slip.OpenDetail]
	path := "/api/slips/" + family.String() + "/" + url.PathEscape(parentID) + "/resolvable"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}
