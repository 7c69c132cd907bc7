package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"olp/compat/internal/monitor"
	"olp/compat/pkg/errorutil"
	"olp/compat/pkg/logger"
)

// HTTPProvider 真实上游数据源, 失败时按指数退避重试
type HTTPProvider struct {
	baseURL  string
	client   *http.Client
	attempts int
	backoff  time.Duration
	log      logger.Logger
}

func NewHTTPProvider(baseURL string, timeout time.Duration, attempts int, backoff time.Duration, log logger.Logger) *HTTPProvider {
	if attempts < 1 {
		attempts = 1
	}
	return &HTTPProvider{
		baseURL:  baseURL,
		client:   &http.Client{Timeout: timeout},
		attempts: attempts,
		backoff:  backoff,
		log:      log,
	}
}

// Fetch 请求上游并解码 JSON 响应体, 仅对瞬时故障与服务端故障重试
func (p *HTTPProvider) Fetch(ctx context.Context, method, path string, query map[string]string) (int, map[string]interface{}, error) {
	var lastErr error

	for i := 1; i <= p.attempts; i++ {
		if i > 1 {
			wait := p.backoff << (i - 2)
			select {
			case <-ctx.Done():
				return 0, nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		status, body, err := p.doOnce(ctx, method, path, query)
		if err != nil {
			// 传输层错误视为可重试
			lastErr = errorutil.RetriableWithDetails("upstream request failed", err.Error())
			p.log.Warnf(ctx, "fetch %s %s attempt %d/%d failed: %v", method, path, i, p.attempts, err)
			continue
		}

		if monitor.Classify(status, body).Retryable() && i < p.attempts {
			p.log.Warnf(ctx, "fetch %s %s attempt %d/%d got status %d, retrying", method, path, i, p.attempts, status)
			continue
		}

		return status, body, nil
	}

	return 0, nil, lastErr
}

func (p *HTTPProvider) doOnce(ctx context.Context, method, path string, query map[string]string) (int, map[string]interface{}, error) {
	u, err := url.Parse(p.baseURL + path)
	if err != nil {
		return 0, nil, fmt.Errorf("bad request url: %w", err)
	}
	q := u.Query()
	for k, v := range query {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response body: %w", err)
	}

	body := map[string]interface{}{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			return 0, nil, fmt.Errorf("decode response body: %w", err)
		}
	}
	return resp.StatusCode, body, nil
}
