package notify

import (
	"context"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/studyquest/internal/platform/logging"
	"github.com/riskibarqy/studyquest/internal/platform/resilience"
	"github.com/riskibarqy/studyquest/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
)

var errWebhookTransient = crerr.New("notification webhook transient failure")

type WebhookConfig struct {
	URL            string
	Secret         string
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// WebhookNotifier posts notifications as JSON to a single endpoint. Delivery
// is best effort: callers log failures and move on.
type WebhookNotifier struct {
	client         *fasthttp.Client
	url            string
	secret         string
	timeout        time.Duration
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewWebhookNotifier(cfg WebhookConfig, logger *logging.Logger) *WebhookNotifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &WebhookNotifier{
		client: &fasthttp.Client{
			Name:                "studyquest-notifier",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
		},
		url:            strings.TrimSpace(cfg.URL),
		secret:         strings.TrimSpace(cfg.Secret),
		timeout:        timeout,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (n *WebhookNotifier) Notify(ctx context.Context, notification usecase.Notification) error {
	if n.url == "" {
		return crerr.New("notification webhook url is not configured")
	}
	if n.circuitEnabled {
		if err := n.breaker.Allow(); err != nil {
			return crerr.Wrap(err, "notification webhook is temporarily unavailable")
		}
	}

	err := n.post(ctx, notification)
	n.recordCircuitResult(err)
	if err != nil {
		return err
	}

	n.logger.InfoContext(ctx, "notification delivered", "actor_id", notification.ActorID, "kind", notification.Kind)
	return nil
}

func (n *WebhookNotifier) post(ctx context.Context, notification usecase.Notification) error {
	body := bytebufferpool.Get()
	defer bytebufferpool.Put(body)
	if err := sonic.ConfigDefault.NewEncoder(body).Encode(notification); err != nil {
		return crerr.Wrap(err, "encode notification")
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(n.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	if n.secret != "" {
		req.Header.Set("X-Webhook-Secret", n.secret)
	}
	req.SetBodyRaw(body.B)

	timeout := n.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return crerr.Mark(crerr.Wrap(ctx.Err(), "notification deadline exceeded"), errWebhookTransient)
	}

	if err := n.client.DoTimeout(req, resp, timeout); err != nil {
		return crerr.Mark(crerr.Wrapf(err, "post notification kind=%s", notification.Kind), errWebhookTransient)
	}

	status := resp.StatusCode()
	switch {
	case status/100 == 2:
		return nil
	case status == fasthttp.StatusTooManyRequests || status >= fasthttp.StatusInternalServerError:
		return crerr.Mark(crerr.Newf("notification webhook status=%d", status), errWebhookTransient)
	default:
		return crerr.Newf("notification webhook status=%d body=%s", status, truncate(string(resp.Body()), 512))
	}
}

func (n *WebhookNotifier) recordCircuitResult(err error) {
	if !n.circuitEnabled || n.breaker == nil {
		return
	}
	if err != nil && crerr.Is(err, errWebhookTransient) {
		n.breaker.RecordFailure()
		return
	}
	n.breaker.RecordSuccess()
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	return value[:max] + "...(truncated)"
}
