// Package airtable реализует провайдера листа ожидания поверх таблицы Airtable:
// каждая заявка становится новой записью таблицы.
package airtable

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
	defaultBaseURL   = "https://api.airtable.com/v0"
	defaultTableName = "Signups"
	statusNew        = "New"
)

// Client клиент Airtable REST API.
type Client struct {
	apiKey     string
	baseID     string
	tableName  string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт клиента Airtable. Пустые имя таблицы и адрес API заменяются значениями по умолчанию.
func NewClient(cfg config.Airtable, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	tableName := cfg.TableName
	if tableName == "" {
		tableName = defaultTableName
	}
	apiURL := strings.TrimRight(cfg.BaseURL, "/")
	if apiURL == "" {
		apiURL = defaultBaseURL
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseID:     cfg.BaseID,
		tableName:  tableName,
		apiURL:     apiURL,
		httpClient: httpClient,
	}
}

// Name возвращает имя провайдера.
func (c *Client) Name() string { return "airtable" }

// Validate проверяет наличие ключа API и идентификатора базы.
func (c *Client) Validate() error {
	if c.apiKey == "" || c.baseID == "" {
		return fmt.Errorf("airtable: api key and base id are required: %w", provider.ErrNotConfigured)
	}
	return nil
}

type fields struct {
	Email      string `json:"Email"`
	Plan       string `json:"Plan"`
	SignupDate string `json:"Signup Date"`
	Timestamp  string `json:"Timestamp"`
	Source     string `json:"Source"`
	Status     string `json:"Status"`
}

type record struct {
	ID     string `json:"id,omitempty"`
	Fields fields `json:"fields"`
}

type createRequest struct {
	Records []record `json:"records"`
}

type createResponse struct {
	Records []record        `json:"records"`
	Error   json.RawMessage `json:"error"`
}

// apiError ошибка Airtable. Бывает объектом {type, message} или просто строкой.
type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (c *Client) newRequest(ctx context.Context, body any) (*http.Request, error) {
	endpoint := c.apiURL + "/" + url.PathEscape(c.baseID) + "/" + url.PathEscape(c.tableName)

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// Submit создаёт запись о заявке в таблице.
func (c *Client) Submit(ctx context.Context, signup models.Signup) (provider.Result, error) {
	const op = "airtable.Submit"

	ts := signup.SubmittedAt.UTC()
	body := createRequest{
		Records: []record{{
			Fields: fields{
				Email:      signup.Email,
				Plan:       string(signup.Plan),
				SignupDate: ts.Format(time.DateOnly),
				Timestamp:  ts.Format(time.RFC3339Nano),
				Source:     signup.Source,
				Status:     statusNew,
			},
		}},
	}

	req, err := c.newRequest(ctx, body)
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

	var data createResponse
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// тело ошибки может быть не JSON (например, ответ прокси)
		_ = json.Unmarshal(raw, &data)
		msg := errorMessage(data.Error)
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return provider.Result{
			Duplicate: isDuplicate(data.Error),
			RawError:  fmt.Sprintf("status %d: %s", resp.StatusCode, msg),
		}, nil
	}

	if err := json.Unmarshal(raw, &data); err != nil {
		return provider.Result{}, fmt.Errorf("%s: decode body: %w", op, err)
	}

	var id string
	if len(data.Records) > 0 {
		id = data.Records[0].ID
	}
	return provider.Result{OK: true, Identifier: id}, nil
}

func errorMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var e apiError
	if err := json.Unmarshal(raw, &e); err == nil {
		if e.Type != "" && e.Message != "" {
			return e.Type + ": " + e.Message
		}
		return e.Type + e.Message
	}
	return string(raw)
}

// isDuplicate сообщает, что Airtable отказал из-за повторной записи.
// У Airtable нет кода ошибки для дубликата, поэтому ищем подстроку в тексте.
func isDuplicate(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var e apiError
	if err := json.Unmarshal(raw, &e); err == nil {
		return strings.Contains(strings.ToLower(e.Message), "duplicate")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.Contains(strings.ToLower(s), "duplicate")
	}
	return false
}
