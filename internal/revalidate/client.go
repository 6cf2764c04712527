package revalidate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client уведомляет внешний фронтенд о необходимости перестроить путь.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

type revalidateRequest struct {
	Path string `json:"path"`
}

// NewClient создаёт HTTP-клиент для обращения к фронтенду по указанному адресу.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Notify отправляет запрос на инвалидацию пути. При ответе 429 возвращает
// значение Retry-After; повторных попыток клиент не делает.
func (c *Client) Notify(ctx context.Context, path string) (int, time.Duration, error) {
	if c == nil || c.baseURL == "" {
		return 0, 0, fmt.Errorf("revalidate client not configured")
	}

	base := c.baseURL
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	body, err := json.Marshal(revalidateRequest{Path: path})
	if err != nil {
		return 0, 0, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/api/revalidate", bytes.NewReader(body))
	if err != nil {
		return 0, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := time.Duration(0)
		if v := resp.Header.Get("Retry-After"); v != "" {
			if seconds, parseErr := strconv.Atoi(v); parseErr == nil {
				retryAfter = time.Duration(seconds) * time.Second
			}
		}
		return resp.StatusCode, retryAfter, fmt.Errorf("rate limited")
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return resp.StatusCode, 0, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	return resp.StatusCode, 0, nil
}

// RevalidatePath уведомляет фронтенд и только логирует неудачу.
func (c *Client) RevalidatePath(ctx context.Context, path string) {
	code, retryAfter, err := c.Notify(ctx, path)
	if err != nil {
		c.logger.Warn("revalidate notification failed",
			zap.Error(err),
			zap.String("path", path),
			zap.Int("status", code),
			zap.Duration("retryAfter", retryAfter),
		)
	}
}
