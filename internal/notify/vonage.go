package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultVonageURL = "https://rest.nexmo.com"

type VonageConfig struct {
	BaseURL   string
	APIKey    string
	APISecret string
	From      string
}

// VonageSender sends SMS through the Vonage SMS REST API.
type VonageSender struct {
	cfg    VonageConfig
	client *http.Client
}

func NewVonageSender(cfg VonageConfig, client *http.Client) *VonageSender {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultVonageURL
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &VonageSender{cfg: cfg, client: client}
}

type vonageResponse struct {
	Messages []struct {
		Status    string `json:"status"`
		ErrorText string `json:"error-text"`
	} `json:"messages"`
}

// Status 3 is Vonage's "invalid parameters", which covers a malformed number.
const vonageInvalidParams = "3"

func (s *VonageSender) SendSMS(ctx context.Context, to, body string) error {
	form := url.Values{}
	form.Set("api_key", s.cfg.APIKey)
	form.Set("api_secret", s.cfg.APISecret)
	form.Set("from", s.cfg.From)
	form.Set("to", strings.TrimPrefix(to, "+"))
	form.Set("text", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(s.cfg.BaseURL, "/")+"/sms/json", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send sms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}

	var out vonageResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("failed to decode sms response: %w", err)
	}
	if len(out.Messages) == 0 {
		return fmt.Errorf("sms gateway returned no messages")
	}
	for _, m := range out.Messages {
		switch m.Status {
		case "0":
		case vonageInvalidParams:
			return fmt.Errorf("%w: %s", ErrInvalidRecipient, m.ErrorText)
		default:
			return fmt.Errorf("sms rejected with status %s: %s", m.Status, m.ErrorText)
		}
	}
	return nil
}
