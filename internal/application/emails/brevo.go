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
	Sender      BrevoSender   `json:"sender"`
	To          []BrevoTo     `json:"to"`
	Subject     string        `json:"subject"`
	HTMLContent string        `json:"htmlContent"`
	ReplyTo     *BrevoReplyTo `json:"replyTo,omitempty"`
}

type BrevoSender struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type BrevoTo struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type BrevoReplyTo struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Sender sends transactional emails. Nil = no-op.
type Sender interface {
	SendWelcome(ctx context.Context, toEmail, name string) error
	SendVerificationApproved(ctx context.Context, toEmail, name, cardID, publicURL string) error
	SendVerificationRejected(ctx context.Context, toEmail, name, notes string) error
}

// BrevoClient sends emails via Brevo (Sendinblue). An empty APIKey disables sending.
type BrevoClient struct {
	APIKey   string
	MailFrom string
	AppURL   string
	Endpoint string
	Client   *http.Client
}

func (c *BrevoClient) from() string {
	if c.MailFrom != "" {
		return c.MailFrom
	}
	return "noreply@hindtrade.ai"
}

func (c *BrevoClient) appURL() string {
	if c.AppURL != "" {
		return c.AppURL
	}
	return "https://hindtrade.ai"
}

func (c *BrevoClient) send(ctx context.Context, toEmail, name, subject, html string) error {
	if c.APIKey == "" {
		return nil
	}
	body := BrevoSendRequest{
		Sender:      BrevoSender{Email: c.from(), Name: "HindTrade"},
		To:          []BrevoTo{{Email: toEmail, Name: name}},
		Subject:     subject,
		HTMLContent: html,
		ReplyTo:     &BrevoReplyTo{Email: "support@hindtrade.ai", Name: "HindTrade Support"},
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return err
	}
	endpoint := c.Endpoint
	if endpoint == "" {
		endpoint = brevoAPI
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
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

// SendWelcome is sent once after sign-up.
func (c *BrevoClient) SendWelcome(ctx context.Context, toEmail, name string) error {
	if name == "" {
		name = "there"
	}
	return c.send(ctx, toEmail, name, "Welcome to HindTrade", EmailLayout(welcomeContent(name, c.appURL())))
}

// SendVerificationApproved tells the exporter their trade card is live.
func (c *BrevoClient) SendVerificationApproved(ctx context.Context, toEmail, name, cardID, publicURL string) error {
	if name == "" {
		name = "there"
	}
	return c.send(ctx, toEmail, name, "Your exporter profile is verified", EmailLayout(approvedContent(name, cardID, publicURL)))
}

// SendVerificationRejected carries the reviewer's notes back to the exporter.
func (c *BrevoClient) SendVerificationRejected(ctx context.Context, toEmail, name, notes string) error {
	if name == "" {
		name = "there"
	}
	return c.send(ctx, toEmail, name, "Your verification needs attention", EmailLayout(rejectedContent(name, notes, c.appURL())))
}

func welcomeContent(name, appURL string) string {
	return fmt.Sprintf(`
    <h1>Welcome to HindTrade, %s!</h1>
    <p>Your account is ready. Complete your exporter profile and submit it for verification to receive your HindTrade Trade Card.</p>
    <center>
      <a href="%s/dashboard" class="ht-button">Open Dashboard</a>
    </center>
    <p>The HindTrade Team</p>
`, EscapeHTML(name), appURL)
}

func approvedContent(name, cardID, publicURL string) string {
	return fmt.Sprintf(`
    <h1>You're verified, %s</h1>
    <p>Our review team approved your exporter profile. Your Trade Card <strong>%s</strong> is now live and can be shared with buyers.</p>
    <center>
      <a href="%s" class="ht-button">View Trade Card</a>
    </center>
    <p>The HindTrade Team</p>
`, EscapeHTML(name), EscapeHTML(cardID), publicURL)
}

func rejectedContent(name, notes, appURL string) string {
	if notes == "" {
		notes = "No notes were provided."
	}
	return fmt.Sprintf(`
    <h1>Verification needs attention</h1>
    <p>Hi %s,</p>
    <p>We could not verify your exporter profile yet. Reviewer notes:</p>
    <p style="background:#F9FAFB;border-radius:6px;padding:12px;">%s</p>
    <p>Update your profile and submit it again from the dashboard.</p>
    <center>
      <a href="%s/dashboard" class="ht-button">Update Profile</a>
    </center>
    <p>The HindTrade Team</p>
`, EscapeHTML(name), EscapeHTML(notes), appURL)
}
