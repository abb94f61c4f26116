package voice

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bytedance/sonic"
	"github.com/golang-jwt/jwt/v5"

	"github.com/TicoDavid/RAGbox.co-sub003/internal/platform/config"
	platerr "github.com/TicoDavid/RAGbox.co-sub003/internal/platform/errors"
)

// Ticket is a short-lived connection grant minted by the session broker: a
// tokenized websocket URL plus the embedded token's expiry.
type Ticket struct {
	URL       string
	ExpiresAt time.Time
}

// TTL reports how long the ticket remains usable. Zero when the token carried
// no readable expiry.
func (t *Ticket) TTL() time.Duration {
	if t.ExpiresAt.IsZero() {
		return 0
	}
	return time.Until(t.ExpiresAt)
}

// Bootstrap exchanges the long-lived API key for a Ticket over authenticated
// HTTP. The key travels only in the Authorization header of this one request;
// the websocket URL carries nothing but the broker-minted short-lived token.
type Bootstrap struct {
	url    string
	apiKey string
	client *http.Client
}

// NewBootstrap builds a bootstrap client. A nil http.Client gets a default
// with a 10s timeout.
func NewBootstrap(cfg config.SessionConfig, client *http.Client) *Bootstrap {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Bootstrap{
		url:    cfg.BootstrapURL,
		apiKey: cfg.APIKey,
		client: client,
	}
}

// FetchTicket requests a session grant. 401/403 map to auth errors so callers
// can distinguish bad credentials from a broker outage.
func (b *Bootstrap) FetchTicket(ctx context.Context, privileged bool) (*Ticket, error) {
	if b.url == "" {
		return nil, platerr.New(platerr.KindConfig, "bootstrap", "bootstrap url is not configured")
	}

	body, err := sonic.Marshal(map[string]any{"privileged": privileged})
	if err != nil {
		return nil, platerr.Wrap(platerr.KindProtocol, "bootstrap", "encode session request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(body))
	if err != nil {
		return nil, platerr.Wrap(platerr.KindTransport, "bootstrap", "build session request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if b.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.apiKey)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, platerr.Wrap(platerr.KindTransport, "bootstrap", "request session ticket", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, platerr.New(platerr.KindAuth, "bootstrap",
			fmt.Sprintf("credentials rejected (status %d)", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return nil, platerr.New(platerr.KindTransport, "bootstrap",
			fmt.Sprintf("unexpected status %d", resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, platerr.Wrap(platerr.KindTransport, "bootstrap", "read session ticket", err)
	}
	var payload struct {
		URL string `json:"url"`
	}
	if err := sonic.Unmarshal(data, &payload); err != nil {
		return nil, platerr.Wrap(platerr.KindProtocol, "bootstrap", "decode session ticket", err)
	}
	if payload.URL == "" {
		return nil, platerr.New(platerr.KindProtocol, "bootstrap", "ticket missing websocket url")
	}

	ticket := &Ticket{
		URL:       payload.URL,
		ExpiresAt: tokenExpiry(payload.URL),
	}
	if !ticket.ExpiresAt.IsZero() && time.Now().After(ticket.ExpiresAt) {
		return nil, platerr.New(platerr.KindAuth, "bootstrap", "ticket already expired")
	}
	return ticket, nil
}

// tokenExpiry reads the exp claim from the URL's embedded JWT without
// verifying the signature. The broker signs for the server; the client only
// needs the lifetime, for logging and for refusing stale tickets.
func tokenExpiry(rawURL string) time.Time {
	u, err := url.Parse(rawURL)
	if err != nil {
		return time.Time{}
	}
	token := u.Query().Get("token")
	if token == "" {
		return time.Time{}
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
