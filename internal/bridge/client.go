// Package bridge connects cityguided to the messaging gateway: an
// outbound REST client for delivering replies and an inbound websocket
// stream for receiving messages when webhook delivery is not in use.
package bridge

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is the outbound messaging gateway client. The gateway speaks
// a form-encoded REST protocol with basic auth; text and media replies
// both post to the messages endpoint.
type Client struct {
	baseURL    string
	account    string
	token      string
	fromNumber string
	logger     *slog.Logger
	httpClient *http.Client
}

// NewClient creates a gateway client.
func NewClient(baseURL, account, token, fromNumber string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		account:    account,
		token:      token,
		fromNumber: fromNumber,
		logger:     logger,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// DeliverText sends a text reply to the recipient.
func (c *Client) DeliverText(ctx context.Context, to, body string) error {
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", c.fromNumber)
	form.Set("Body", body)
	return c.postMessage(ctx, form)
}

// DeliverMedia sends a media reply (by URL) to the recipient.
func (c *Client) DeliverMedia(ctx context.Context, to, mediaURL string) error {
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", c.fromNumber)
	form.Set("MediaUrl", mediaURL)
	return c.postMessage(ctx, form)
}

func (c *Client) postMessage(ctx context.Context, form url.Values) error {
	endpoint := c.baseURL + "/messages"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.account, c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	c.logger.Debug("gateway delivery accepted", "to", form.Get("To"))
	return nil
}

// DownloadMedia fetches inbound media (a voice note) from the gateway.
// Gateway-hosted media requires the same basic auth as the REST API.
// Returns the media bytes and the Content-Type the gateway reported.
func (c *Client) DownloadMedia(ctx context.Context, mediaURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create media request: %w", err)
	}
	req.SetBasicAuth(c.account, c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("media fetch returned %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 25<<20))
	if err != nil {
		return nil, "", fmt.Errorf("read media body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return data, contentType, nil
}
