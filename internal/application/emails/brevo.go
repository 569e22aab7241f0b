package emails

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const brevoAPI = "https://api.brevo.com/v3/smtp/email"

// BrevoSendRequest matches Brevo API v3 send transactional email body.
type BrevoSendRequest struct {
	Sender      BrevoSender `json:"sender"`
	To          []BrevoTo   `json:"to"`
	Subject     string      `json:"subject"`
	HTMLContent string      `json:"htmlContent"`
}

type BrevoSender struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type BrevoTo struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Sender sends transactional emails. A nil Sender means email is disabled.
type Sender interface {
	SendWelcome(ctx context.Context, toEmail, username string) error
	SendNegotiationNotice(ctx context.Context, n NegotiationNotice) error
}

// NegotiationNotice tells a receiver that someone wrote to them about a listing.
type NegotiationNotice struct {
	ToEmail      string
	ToUsername   string
	FromUsername string
	ListingTitle string
	ChatURL      string
}

// BrevoClient sends emails via the Brevo (Sendinblue) API.
type BrevoClient struct {
	APIKey   string
	MailFrom string
	BaseURL  string // overrides brevoAPI in tests
	Client   *http.Client
}

func (c *BrevoClient) from() string {
	if c.MailFrom != "" {
		return c.MailFrom
	}
	return "noreply@postmarket.local"
}

func (c *BrevoClient) endpoint() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return brevoAPI
}

// send sends one email via Brevo API.
func (c *BrevoClient) send(ctx context.Context, toEmail, toName, subject, html string) error {
	if c.APIKey == "" {
		return nil
	}
	body := BrevoSendRequest{
		Sender:      BrevoSender{Email: c.from(), Name: "Postmarket"},
		To:          []BrevoTo{{Email: toEmail, Name: toName}},
		Subject:     subject,
		HTMLContent: html,
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(bodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.Client == nil {
		c.Client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("brevo send failed: status %d", resp.StatusCode)
	}
	return nil
}

// SendWelcome sends the welcome email after registration.
func (c *BrevoClient) SendWelcome(ctx context.Context, toEmail, username string) error {
	if username == "" {
		username = "there"
	}
	return c.send(ctx, toEmail, username, "Welcome to Postmarket", EmailLayout(welcomeContent(username)))
}

// SendNegotiationNotice tells the receiver about a new message on one of the threads.
func (c *BrevoClient) SendNegotiationNotice(ctx context.Context, n NegotiationNotice) error {
	subject := fmt.Sprintf("%s sent you a message about %q", n.FromUsername, n.ListingTitle)
	return c.send(ctx, n.ToEmail, n.ToUsername, subject, EmailLayout(negotiationContent(n)))
}

func welcomeContent(username string) string {
	return fmt.Sprintf(`
    <h1>Welcome, %s!</h1>
    <p>Your account is ready. You can publish posts, fill your cart, and talk price with other members.</p>
`, EscapeHTML(username))
}

func negotiationContent(n NegotiationNotice) string {
	return fmt.Sprintf(`
    <h1>New message from %s</h1>
    <p>%s wrote to you about <strong>%s</strong>.</p>
    <center>
      <a href="%s" class="pm-button">Open the conversation</a>
    </center>
`, EscapeHTML(n.FromUsername), EscapeHTML(n.FromUsername), EscapeHTML(n.ListingTitle), n.ChatURL)
}
