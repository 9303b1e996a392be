package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/BijjaSagar/vashihat-nama/internal/logging"
	"golang.org/x/time/rate"
)

var ErrMissingCredentials = errors.New("sms credentials are not configured")

// SMSConfig holds the HSP SMS gateway settings.
type SMSConfig struct {
	BaseURL  string
	Username string
	SenderID string
	APIKey   string
	DevMode  bool
}

// SMSNotifier sends transactional SMS through the HSP gateway. Outbound
// requests are throttled so a burst of OTP requests cannot exhaust the
// provider quota.
type SMSNotifier struct {
	cfg     SMSConfig
	client  *http.Client
	limiter *rate.Limiter
	log     logging.Logger
}

func NewSMSNotifier(cfg SMSConfig, client *http.Client, log logging.Logger) *SMSNotifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &SMSNotifier{
		cfg:     cfg,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(5), 10),
		log:     log.With("module", "sms"),
	}
}

func (n *SMSNotifier) Send(ctx context.Context, mobile, message string) error {
	if n.cfg.DevMode {
		n.log.Info(ctx, "mock sending sms", "to", mobile, "message", message)
		return nil
	}

	if n.cfg.Username == "" || n.cfg.APIKey == "" {
		return ErrMissingCredentials
	}

	if err := n.limiter.Wait(ctx); err != nil {
		return err
	}

	q := url.Values{}
	q.Set("username", n.cfg.Username)
	q.Set("message", message)
	q.Set("sendername", n.cfg.SenderID)
	q.Set("smstype", "TRANS")
	q.Set("numbers", mobile)
	q.Set("apikey", n.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.cfg.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return fmt.Errorf("sms response read failed: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sms provider returned status %d", resp.StatusCode)
	}

	// The gateway answers 200 with an error string, or with an HTML page
	// when the request is blocked upstream.
	text := strings.TrimSpace(string(body))
	if strings.Contains(strings.ToLower(text), "error") || strings.HasPrefix(text, "<") {
		n.log.Error(ctx, "sms provider returned error", "to", mobile, "body", text)
		return fmt.Errorf("sms provider error: %s", text)
	}

	n.log.Debug(ctx, "sms sent", "to", mobile)
	return nil
}
