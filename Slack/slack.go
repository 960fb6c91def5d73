package Slack

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"CSW/Models"
)

// SlackClient holds the Slack bot token and base URL
type SlackClient struct {
	Token   string
	BaseURL string
	Channel string
}

// SlackMessage represents a message payload
type SlackMessage struct {
	Channel string `json:"channel"`
	Text    string `json:"text"`
	Parse   string `json:"parse,omitempty"`
}

// SlackResponse represents the API response
type SlackResponse struct {
	OK      bool   `json:"ok"`
	Channel string `json:"channel,omitempty"`
	TS      string `json:"ts,omitempty"`
	Error   string `json:"error,omitempty"`
	Warning string `json:"warning,omitempty"`
}

// NewSlackClient creates a new Slack client.
// Required Bot Token Scopes:
// - chat:write (send messages)
// - chat:write.public (send to channels without being invited)
func NewSlackClient(token, channel string) *SlackClient {
	return &SlackClient{
		Token:   token,
		BaseURL: "https://slack.com/api",
		Channel: channel,
	}
}

// Enabled reports whether lead notifications are configured at all.
func (s *SlackClient) Enabled() bool {
	return s != nil && s.Token != "" && s.Channel != ""
}

// SendMessage sends a message to a Slack channel
func (s *SlackClient) SendMessage(channel, message string) (*SlackResponse, error) {
	payload := SlackMessage{
		Channel: channel,
		Text:    message,
		Parse:   "full",
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("error marshaling JSON: %v", err)
	}

	url := fmt.Sprintf("%s/chat.postMessage", s.BaseURL)
	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.Token))

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %v", err)
	}

	var slackResp SlackResponse
	if err := json.Unmarshal(body, &slackResp); err != nil {
		return nil, fmt.Errorf("error unmarshaling response: %v", err)
	}

	if !slackResp.OK {
		return &slackResp, fmt.Errorf("slack API error: %s", slackResp.Error)
	}

	return &slackResp, nil
}

// NotifyLead posts a new verified lead to the configured channel.
// Fire-and-forget: failures are logged, never surfaced to the customer.
func (s *SlackClient) NotifyLead(entry *Models.ActivityEntry) {
	if !s.Enabled() {
		return
	}
	message := fmt.Sprintf("New lead: %s | %s (%s)",
		entry.VehicleSummary, entry.Phone, entry.CreatedAt.Format("2006-01-02 15:04"))
	go func() {
		if _, err := s.SendMessage(s.Channel, message); err != nil {
			log.Printf("Failed to notify Slack about lead %s: %v", entry.ID, err)
		}
	}()
}
