package sms

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// Client talks to the external SMS gateway.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
	}
}

type sendMessageRequest struct {
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
}

type sendMessageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// SendMessage delivers a text message through the gateway.
func (c *Client) SendMessage(recipient, message string) error {
	body, err := json.Marshal(sendMessageRequest{
		Recipient: recipient,
		Message:   message,
	})
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequest("POST", c.baseURL+"/sms/send/", bytes.NewBuffer(body))
	if err != nil {
		return err
	}

	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return errors.New("SMS gateway returned non-OK status: " + resp.Status)
	}

	var apiResp sendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return err
	}

	if apiResp.Status != "success" {
		return errors.New("SMS gateway rejected message: " + apiResp.Message)
	}

	return nil
}
