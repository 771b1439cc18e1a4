package notify

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const pushoverURL = "https://api.pushover.net/1/messages.json"

// Notifier delivers best-effort out-of-band notifications. Push never
// returns an error: delivery failures are logged and swallowed so a tool
// call can never fail because of them.
type Notifier interface {
	Push(ctx context.Context, message string)
}

type Pushover struct {
	user   string
	token  string
	apiURL string
	client *http.Client
}

// New returns a Pushover notifier, or a Noop one when credentials are
// missing.
func New(user, token string) Notifier {
	if user == "" || token == "" {
		slog.Info("notify: pushover credentials absent, notifications disabled")
		return Noop{}
	}
	return &Pushover{
		user:   user,
		token:  token,
		apiURL: pushoverURL,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *Pushover) Push(ctx context.Context, message string) {
	form := url.Values{
		"user":    {p.user},
		"token":   {p.token},
		"message": {message},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		slog.Warn("notify: building pushover request failed", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		slog.Warn("notify: pushover send failed", "error", err)
		return
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		slog.Warn("notify: pushover rejected message", "status", resp.StatusCode)
		return
	}
	slog.Debug("notify: pushover sent", "bytes", len(message))
}

// Noop logs the message instead of delivering it.
type Noop struct{}

func (Noop) Push(ctx context.Context, message string) {
	slog.Info("notify: push (disabled)", "message", message)
}
