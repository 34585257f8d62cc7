// Package gigachat implements the oracle.Client interface against the
// Sber GigaChat API: an OAuth token request followed by a chat
// completion call. All failures reaching or authenticating with the
// service are reported as oracle.ErrUnavailable so the caller can fall
// back to heuristic parsing.
package gigachat

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"reminder_notification_bot/internal/domain/oracle"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	completionModel       = "GigaChat"
	completionTemperature = 0.7
	completionMaxTokens   = 1500
	requestTimeout        = 30 * time.Second
)

// tokenExpirySlack is subtracted from the reported expiry so a token is
// never used within a second of going stale.
const tokenExpirySlack = time.Second

type Client struct {
	authURL      string
	apiURL       string
	clientID     string
	clientSecret string
	scope        string
	httpClient   *http.Client
	logger       *logrus.Entry

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

func NewClient(authURL, apiURL, clientID, clientSecret, scope string, logger *logrus.Entry) *Client {
	return &Client{
		authURL:      authURL,
		apiURL:       apiURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		scope:        scope,
		httpClient: &http.Client{
			Timeout: requestTimeout,
			Transport: &http.Transport{
				// The GigaChat endpoints serve certificates from the
				// Russian Trusted Root CA, which is absent from standard
				// cert bundles.
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
		logger: logger,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at"` // unix milliseconds
}

type completionRequest struct {
	Model       string              `json:"model"`
	Messages    []completionMessage `json:"messages"`
	Temperature float64             `json:"temperature"`
	MaxTokens   int                 `json:"max_tokens"`
	N           int                 `json:"n"`
	Stream      bool                `json:"stream"`
	TopP        float64             `json:"top_p"`
}

type completionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionResponse struct {
	Choices []struct {
		Message completionMessage `json:"message"`
	} `json:"choices"`
}

// Complete sends the system prompt and user text to the completion
// endpoint and returns the model's answer verbatim.
func (c *Client) Complete(ctx context.Context, systemPrompt, userText string) (string, error) {
	if c.clientID == "" || c.clientSecret == "" {
		return "", fmt.Errorf("credentials are not configured: %w", oracle.ErrUnavailable)
	}

	token, err := c.token(ctx)
	if err != nil {
		return "", err
	}

	reqBody := completionRequest{
		Model: completionModel,
		Messages: []completionMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userText},
		},
		Temperature: completionTemperature,
		MaxTokens:   completionMaxTokens,
		N:           1,
		Stream:      false,
		TopP:        0.95,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %v: %w", err, oracle.ErrUnavailable)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read completion response: %v: %w", err, oracle.ErrUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"body":   string(body),
		}).Error("Completion request rejected")
		return "", fmt.Errorf("completion request returned status %d: %w", resp.StatusCode, oracle.ErrUnavailable)
	}

	var parsed completionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("completion response contains no choices: %w", oracle.ErrUnavailable)
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

// token returns a cached OAuth access token, requesting a fresh one
// when none is held or the held one is about to expire.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.expiresAt.Add(-tokenExpirySlack)) {
		return c.accessToken, nil
	}

	form := url.Values{"scope": {c.scope}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}
	credentials := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.clientSecret))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("RqUID", uuid.NewString())
	req.Header.Set("Authorization", "Basic "+credentials)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %v: %w", err, oracle.ErrUnavailable)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %v: %w", err, oracle.ErrUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"body":   string(body),
		}).Error("Token request rejected")
		return "", fmt.Errorf("token request returned status %d: %w", resp.StatusCode, oracle.ErrUnavailable)
	}

	var parsed tokenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if parsed.AccessToken == "" {
		return "", fmt.Errorf("token response contains no access token: %w", oracle.ErrUnavailable)
	}

	c.accessToken = parsed.AccessToken
	c.expiresAt = time.UnixMilli(parsed.ExpiresAt)
	c.logger.Debug("Obtained new access token")
	return c.accessToken, nil
}
