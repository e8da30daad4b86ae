// Package tmf implements the outbound Catalog port against a TMF-style
// service inventory API with OpenID password-grant authentication.
package tmf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/nfvsec/nmtd/internal/core/domain"
	"github.com/nfvsec/nmtd/internal/core/ports"
)

const (
	tokenPath     = "/auth/realms/openslice/protocol/openid-connect/token"
	inventoryPath = "/tmf-api/serviceInventory/v4/service"
	orderingPath  = "/tmf-api/serviceOrdering/v4/serviceOrder"

	oauthClientID = "osapiWebClientId"
)

// Client talks to the Catalog's TMF service inventory. It fetches a bearer
// token on first use and refreshes it once per request on 401.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client

	mu    sync.Mutex
	token string
}

// NewClient creates a Catalog client for the given base URL.
func NewClient(baseURL, username, password string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		username:   username,
		password:   password,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

var _ ports.CatalogClient = (*Client)(nil)

// SetHTTPClient overrides the underlying HTTP client. Used in tests.
func (c *Client) SetHTTPClient(h *http.Client) {
	c.httpClient = h
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

func (c *Client) fetchToken(ctx context.Context) (string, error) {
	form := url.Values{
		"username":   {c.username},
		"password":   {c.password},
		"grant_type": {"password"},
		"client_id":  {oauthClientID},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+tokenPath,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &domain.SyncError{Kind: domain.SyncUnreachable, Op: "token", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &domain.SyncError{
			Kind: domain.SyncRejected,
			Op:   "token",
			Err:  fmt.Errorf("status %d", resp.StatusCode),
		}
	}
	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", &domain.SyncError{Kind: domain.SyncRejected, Op: "token", Err: err}
	}
	return tok.AccessToken, nil
}

func (c *Client) bearer(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" {
		return c.token, nil
	}
	tok, err := c.fetchToken(ctx)
	if err != nil {
		return "", err
	}
	c.token = tok
	return tok, nil
}

func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// do performs an authenticated request and decodes the JSON response into
// out when out is non-nil. A 401 invalidates the cached token and the
// request is retried once with a fresh one.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", op, err)
		}
	}

	for attempt := 0; attempt < 2; attempt++ {
		token, err := c.bearer(ctx)
		if err != nil {
			return err
		}

		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return fmt.Errorf("build %s request: %w", op, err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json;charset=utf-8")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return &domain.SyncError{Kind: domain.SyncUnreachable, Op: op, Err: err}
		}

		if resp.StatusCode == http.StatusUnauthorized && attempt == 0 {
			resp.Body.Close()
			slog.Debug("catalog token expired, refreshing", "op", op)
			c.invalidateToken()
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			resp.Body.Close()
			return &domain.SyncError{
				Kind: domain.SyncRejected,
				Op:   op,
				Err:  fmt.Errorf("status %d", resp.StatusCode),
			}
		}

		if out != nil {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				resp.Body.Close()
				return &domain.SyncError{Kind: domain.SyncRejected, Op: op, Err: err}
			}
		}
		resp.Body.Close()
		return nil
	}
	return &domain.SyncError{
		Kind: domain.SyncRejected,
		Op:   op,
		Err:  fmt.Errorf("status %d", http.StatusUnauthorized),
	}
}

// GetServiceInstance fetches one service instance from the inventory.
func (c *Client) GetServiceInstance(ctx context.Context, id string) (domain.ServiceInstance, error) {
	var ws wireService
	if err := c.do(ctx, "read", http.MethodGet, inventoryPath+"/"+url.PathEscape(id), nil, &ws); err != nil {
		return domain.ServiceInstance{}, err
	}
	return ws.toDomain(), nil
}

// ListServiceInstances returns every instance in the inventory.
func (c *Client) ListServiceInstances(ctx context.Context) ([]domain.ServiceInstance, error) {
	var wss []wireService
	if err := c.do(ctx, "list", http.MethodGet, inventoryPath, nil, &wss); err != nil {
		return nil, err
	}
	out := make([]domain.ServiceInstance, 0, len(wss))
	for _, ws := range wss {
		out = append(out, ws.toDomain())
	}
	return out, nil
}

// FindByCharacteristic filters the inventory by a characteristic's primary
// value. The inventory API has no server-side characteristic filter, so the
// scan happens here.
func (c *Client) FindByCharacteristic(ctx context.Context, name, value string) ([]domain.ServiceInstance, error) {
	instances, err := c.ListServiceInstances(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.ServiceInstance
	for _, inst := range instances {
		ch, ok := inst.Characteristic(name)
		if !ok {
			continue
		}
		if v, ok := ch.Primary(); ok && v == value {
			out = append(out, inst)
		}
	}
	return out, nil
}

// FindByServiceOrder returns the instances created by a service order.
func (c *Client) FindByServiceOrder(ctx context.Context, orderID string) ([]domain.ServiceInstance, error) {
	instances, err := c.ListServiceInstances(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.ServiceInstance
	for _, inst := range instances {
		if inst.ServiceOrderID == orderID {
			out = append(out, inst)
		}
	}
	return out, nil
}

// UpdateCharacteristic patches a single characteristic on an instance.
func (c *Client) UpdateCharacteristic(ctx context.Context, serviceID string, ch domain.Characteristic) error {
	patch := wirePatch{ServiceCharacteristic: []wireCharacteristic{fromDomain(ch)}}
	return c.do(ctx, "write", http.MethodPatch, inventoryPath+"/"+url.PathEscape(serviceID), patch, nil)
}

// TriggerSupervision asks the Catalog to re-run lifecycle supervision for an
// instance by marking its service order item as modified.
func (c *Client) TriggerSupervision(ctx context.Context, serviceID string) error {
	instance, err := c.GetServiceInstance(ctx, serviceID)
	if err != nil {
		return &domain.SyncError{Kind: domain.SyncRejected, Op: "supervision", Err: err}
	}
	if instance.ServiceOrderID == "" {
		slog.Debug("service instance has no order, skipping supervision", "service", serviceID)
		return nil
	}
	patch := orderPatch{
		OrderItems: []orderItemPatch{{
			Action:  "modify",
			Service: orderItemService{UUID: serviceID},
		}},
	}
	err = c.do(ctx, "supervision", http.MethodPatch,
		orderingPath+"/"+url.PathEscape(instance.ServiceOrderID), patch, nil)
	if err != nil {
		return err
	}
	return nil
}
