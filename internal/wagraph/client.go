// Package wagraph talks to the Meta Graph API to send WhatsApp messages.
package wagraph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultBaseURL = "https://graph.facebook.com/v21.0"

// Sender is what the webhook pipeline and the manual-send endpoint depend
// on; tests swap in fakes.
type Sender interface {
	SendText(ctx context.Context, to, body string) (*SendResponse, error)
}

// TextRequest is the Meta API request body for a text message.
type TextRequest struct {
	MessagingProduct string       `json:"messaging_product"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	Text             *TextContent `json:"text"`
}

type TextContent struct {
	Body string `json:"body"`
}

// SendResponse is the Meta API response for a sent message.
type SendResponse struct {
	MessagingProduct string `json:"messaging_product"`
	Contacts         []struct {
		Input string `json:"input"`
		WaID  string `json:"wa_id"`
	} `json:"contacts"`
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// Client sends messages through one WhatsApp Business phone number.
type Client struct {
	baseURL       string
	phoneNumberID string
	accessToken   string
	httpClient    *http.Client
}

func NewClient(phoneNumberID, accessToken string) *Client {
	return &Client{
		baseURL:       defaultBaseURL,
		phoneNumberID: phoneNumberID,
		accessToken:   accessToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WithBaseURL overrides the Graph API endpoint, used by tests.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

// SendText posts a text message to the Graph API messages endpoint.
func (c *Client) SendText(ctx context.Context, to, body string) (*SendResponse, error) {
	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneNumberID)

	reqBody := &TextRequest{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             &TextContent{Body: body},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errBody map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errBody)
		return nil, fmt.Errorf("meta API error (status %d): %v", resp.StatusCode, errBody)
	}

	var msgResp SendResponse
	if err := json.NewDecoder(resp.Body).Decode(&msgResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &msgResp, nil
}
