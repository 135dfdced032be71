// Package scrape реализует best-effort доставку документов с сайтов
// спортивной статистики, активно блокирующих ботов: ротация заголовков,
// случайные задержки, ограниченные повторы и запасные публичные relay-сервисы.
// Гарантий корректности слой не даёт — последняя ошибка просто отдаётся вызывающему.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	defaultMaxAttempts = 3
	defaultTimeout     = 20 * time.Second

	// Границы случайной задержки перед первым запросом.
	preRequestDelayMin = 300 * time.Millisecond
	preRequestDelayMax = 800 * time.Millisecond
)

// Публичные CORS-relay, пробуются по порядку после исчерпания прямых попыток.
var defaultRelays = []string{
	"https://api.allorigins.win/raw?url=%s",
	"https://corsproxy.io/?url=%s",
}

// UpstreamError — ошибка верхнего источника с HTTP-статусом для проброса клиенту.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.StatusCode, e.Message)
}

// Result — полученный документ вместе с Content-Type источника.
type Result struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Config настраивает Fetcher. Нулевые значения заменяются умолчаниями.
type Config struct {
	ScraperAPIKey string // если задан, запросы идут через api.scraperapi.com
	MaxAttempts   int
	Timeout       time.Duration
	Relays        []string
	// DisableDelays отключает случайные паузы (для тестов).
	DisableDelays bool
}

// Fetcher — HTTP-клиент с политикой обхода анти-бот защиты.
type Fetcher struct {
	client        *http.Client
	scraperAPIKey string
	maxAttempts   int
	relays        []string
	noDelay       bool
	logger        *slog.Logger
}

func NewFetcher(cfg Config, logger *slog.Logger) *Fetcher {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Relays == nil {
		cfg.Relays = defaultRelays
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		client:        &http.Client{Timeout: cfg.Timeout},
		scraperAPIKey: cfg.ScraperAPIKey,
		maxAttempts:   cfg.MaxAttempts,
		relays:        cfg.Relays,
		noDelay:       cfg.DisableDelays,
		logger:        logger,
	}
}

// Fetch загружает документ по rawURL, перебирая стратегии:
// ScraperAPI (если настроен ключ) → прямые запросы с ротацией заголовков
// и backoff на 403/429 → публичные relay. Возвращает последнюю ошибку,
// если все стратегии исчерпаны.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	target, err := url.Parse(rawURL)
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("invalid target url %q", rawURL)
	}

	if f.scraperAPIKey != "" {
		return f.fetchViaScraperAPI(ctx, rawURL)
	}

	if err := f.sleep(ctx, preRequestDelayMin, preRequestDelayMax); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		res, err := f.attemptDirect(ctx, target)
		if err == nil {
			return res, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		f.logger.Debug("direct fetch attempt failed",
			slog.Int("attempt", attempt),
			slog.String("url", rawURL),
			slog.Any("error", err))

		if attempt == f.maxAttempts {
			break
		}
		// На блокировке ждём дольше, по нарастающей.
		var upErr *UpstreamError
		if errors.As(err, &upErr) && (upErr.StatusCode == http.StatusForbidden || upErr.StatusCode == http.StatusTooManyRequests) {
			base := time.Duration(attempt) * 2 * time.Second
			if err := f.sleep(ctx, base, base+time.Second); err != nil {
				return nil, err
			}
		} else {
			if err := f.sleep(ctx, time.Second, 2*time.Second); err != nil {
				return nil, err
			}
		}
	}

	for _, relay := range f.relays {
		relayURL := fmt.Sprintf(relay, url.QueryEscape(rawURL))
		res, err := f.do(ctx, relayURL, browserHeaders(target))
		if err == nil {
			return res, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		f.logger.Debug("relay fetch failed", slog.String("relay", relay), slog.Any("error", err))
	}

	if lastErr == nil {
		lastErr = errors.New("fetch failed: no strategies available")
	}
	return nil, lastErr
}

func (f *Fetcher) fetchViaScraperAPI(ctx context.Context, rawURL string) (*Result, error) {
	scraperURL := fmt.Sprintf("http://api.scraperapi.com?api_key=%s&url=%s",
		url.QueryEscape(f.scraperAPIKey), url.QueryEscape(rawURL))

	h := http.Header{}
	h.Set("Accept", "application/json")
	res, err := f.do(ctx, scraperURL, h)
	if err != nil {
		return nil, fmt.Errorf("scraperapi: %w", err)
	}
	return res, nil
}

func (f *Fetcher) attemptDirect(ctx context.Context, target *url.URL) (*Result, error) {
	return f.do(ctx, target.String(), browserHeaders(target))
}

func (f *Fetcher) do(ctx context.Context, rawURL string, headers http.Header) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header = headers

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(body))
		if len(msg) > 200 {
			msg = msg[:200]
			// Срез мог разрезать многобайтовую руну.
			for len(msg) > 0 && !utf8.ValidString(msg) {
				msg = msg[:len(msg)-1]
			}
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Message: msg}
	}

	return &Result{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// sleep ждёт случайный интервал в [min, max], уважая отмену контекста.
func (f *Fetcher) sleep(ctx context.Context, min, max time.Duration) error {
	if f.noDelay {
		return nil
	}
	d := min
	if max > min {
		d += time.Duration(rand.Int63n(int64(max - min)))
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
