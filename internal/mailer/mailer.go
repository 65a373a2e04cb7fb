// Package mailer sends food-alert notification emails through SendGrid.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

const defaultSubject = "New Food Alert on BearBites!"

// Notification is the templated message body for one alert, shared by
// every recipient of a fanout.
type Notification struct {
	ClubName       string `json:"club_name"`
	FoodType       string `json:"food_type"`
	Building       string `json:"building"`
	Room           string `json:"room"`
	AvailableUntil string `json:"available_until"`
}

// Client is a minimal SendGrid v3 mail client.
type Client struct {
	apiKey  string
	apiURL  string
	from    string
	baseURL string
	client  *http.Client
	policy  *bluemonday.Policy
}

func New(apiKey, apiURL, from, baseURL string) *Client {
	return &Client{
		apiKey:  apiKey,
		apiURL:  apiURL,
		from:    from,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		// Alert fields are club-supplied free text; strip all markup
		// before interpolating them into HTML.
		policy: bluemonday.StrictPolicy(),
	}
}

// HTML renders the notification body with all fields sanitized.
func (c *Client) HTML(n Notification) string {
	return fmt.Sprintf(`<strong>%s</strong> just posted a new food alert:<br>
<ul>
<li><b>Food:</b> %s</li>
<li><b>Location:</b> %s, Room %s</li>
<li><b>Available until:</b> %s</li>
</ul>
<br>
<a href="%s/">View all alerts</a>`,
		c.policy.Sanitize(n.ClubName),
		c.policy.Sanitize(n.FoodType),
		c.policy.Sanitize(n.Building),
		c.policy.Sanitize(n.Room),
		c.policy.Sanitize(n.AvailableUntil),
		c.baseURL,
	)
}

type sendGridRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             emailAddress      `json:"from"`
	Subject          string            `json:"subject"`
	Content          []content         `json:"content"`
}

type personalization struct {
	To []emailAddress `json:"to"`
}

type emailAddress struct {
	Email string `json:"email"`
}

type content struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Send delivers the notification to one recipient. SendGrid answers
// 202 Accepted on success.
func (c *Client) Send(ctx context.Context, to string, n Notification) error {
	payload := sendGridRequest{
		Personalizations: []personalization{{To: []emailAddress{{Email: to}}}},
		From:             emailAddress{Email: c.from},
		Subject:          defaultSubject,
		Content:          []content{{Type: "text/html", Value: c.HTML(n)}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create mail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("mail request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("mail send failed with status %d", resp.StatusCode)
	}
	return nil
}
