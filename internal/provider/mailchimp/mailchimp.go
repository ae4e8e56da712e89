// Package mailchimp реализует провайдера листа ожидания поверх аудитории Mailchimp:
// каждая заявка добавляет подписчика в список.
package mailchimp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/magabrotheeeer/waitlist/internal/config"
	"github.com/magabrotheeeer/waitlist/internal/models"
	"github.com/magabrotheeeer/waitlist/internal/provider"
)

const (
	defaultStatus = "subscribed"

	titleMemberExists  = "Member Exists"
	detailMemberExists = "already a list member"
)

// Client клиент Mailchimp Marketing API v3.
type Client struct {
	apiKey     string
	listID     string
	status     string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт клиента Mailchimp. Если BaseURL не задан, он строится
// из дата-центра в суффиксе ключа: "xxxx-us6" -> https://us6.api.mailchimp.com/3.0.
func NewClient(cfg config.Mailchimp, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	status := cfg.MemberStatus
	if status == "" {
		status = defaultStatus
	}
	apiURL := strings.TrimRight(cfg.BaseURL, "/")
	if apiURL == "" {
		apiURL = baseURLFromKey(cfg.APIKey)
	}
	return &Client{
		apiKey:     cfg.APIKey,
		listID:     cfg.ListID,
		status:     status,
		apiURL:     apiURL,
		httpClient: httpClient,
	}
}

func baseURLFromKey(key string) string {
	i := strings.LastIndex(key, "-")
	if i < 0 || i == len(key)-1 {
		return ""
	}
	return "https://" + key[i+1:] + ".api.mailchimp.com/3.0"
}

// Name возвращает имя провайдера.
func (c *Client) Name() string { return "mailchimp" }

// Validate проверяет ключ, список и то, что адрес API удалось определить.
func (c *Client) Validate() error {
	if c.apiKey == "" || c.listID == "" {
		return fmt.Errorf("mailchimp: api key and list id are required: %w", provider.ErrNotConfigured)
	}
	if c.apiURL == "" {
		return fmt.Errorf("mailchimp: cannot derive data center from api key: %w", provider.ErrNotConfigured)
	}
	return nil
}

type memberRequest struct {
	EmailAddress    string            `json:"email_address"`
	Status          string            `json:"status"`
	MergeFields     map[string]string `json:"merge_fields"`
	Tags            []string          `json:"tags"`
	TimestampSignup string            `json:"timestamp_signup"`
}

type memberResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// problem формат ошибки Mailchimp (RFC 7807).
type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

func (c *Client) newRequest(ctx context.Context, path string, body any) (*http.Request, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth("waitlist", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// Submit добавляет подписчика в список.
func (c *Client) Submit(ctx context.Context, signup models.Signup) (provider.Result, error) {
	const op = "mailchimp.Submit"

	body := memberRequest{
		EmailAddress:    signup.Email,
		Status:          c.status,
		MergeFields:     map[string]string{"PLAN": string(signup.Plan)},
		Tags:            []string{string(signup.Plan), signup.Source},
		TimestampSignup: signup.SubmittedAt.UTC().Format(time.RFC3339),
	}

	req, err := c.newRequest(ctx, "/lists/"+url.PathEscape(c.listID)+"/members", body)
	if err != nil {
		return provider.Result{}, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return provider.Result{}, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return provider.Result{}, fmt.Errorf("%s: read body: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var p problem
		if err := json.Unmarshal(raw, &p); err != nil || (p.Title == "" && p.Detail == "") {
			return provider.Result{
				RawError: fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))),
			}, nil
		}
		return provider.Result{
			Duplicate: isDuplicate(p),
			RawError:  fmt.Sprintf("status %d: %s: %s", resp.StatusCode, p.Title, p.Detail),
		}, nil
	}

	var member memberResponse
	if err := json.Unmarshal(raw, &member); err != nil {
		return provider.Result{}, fmt.Errorf("%s: decode body: %w", op, err)
	}
	return provider.Result{OK: true, Identifier: member.ID}, nil
}

// isDuplicate сначала смотрит на title (стабильный код ошибки Mailchimp),
// текст detail проверяется только как запасной вариант.
func isDuplicate(p problem) bool {
	if p.Title == titleMemberExists {
		return true
	}
	return strings.Contains(strings.ToLower(p.Detail), detailMemberExists)
}
