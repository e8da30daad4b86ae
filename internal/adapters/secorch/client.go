// Package secorch forwards MSPL policy documents to the external security
// orchestrator.
package secorch

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nfvsec/nmtd/internal/core/domain"
	"github.com/nfvsec/nmtd/internal/core/ports"
)

const meservicePath = "/meservice"

// Client posts MSPL documents to the orchestrator's /meservice endpoint.
// The document body is forwarded verbatim.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a security orchestrator client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

var _ ports.SecurityOrchestrator = (*Client)(nil)

// SendMSPL forwards a raw MSPL document. Any non-200 response rejects the
// document.
func (c *Client) SendMSPL(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+meservicePath,
		bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build mspl request: %w", err)
	}
	req.Header.Set("Content-Type", "application/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.SyncError{Kind: domain.SyncUnreachable, Op: "mspl", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &domain.SyncError{
			Kind: domain.SyncRejected,
			Op:   "mspl",
			Err:  fmt.Errorf("status %d", resp.StatusCode),
		}
	}
	return nil
}
