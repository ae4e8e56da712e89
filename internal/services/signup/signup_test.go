package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/waitlist/internal/config"
	"github.com/magabrotheeeer/waitlist/internal/metrics"
	"github.com/magabrotheeeer/waitlist/internal/models"
	"github.com/magabrotheeeer/waitlist/internal/provider"
	"github.com/magabrotheeeer/waitlist/internal/provider/airtable"
	"github.com/magabrotheeeer/waitlist/internal/provider/mailchimp"
)

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Name() string {
	return "mock"
}

func (m *MockProvider) Validate() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockProvider) Submit(ctx context.Context, signup models.Signup) (provider.Result, error) {
	args := m.Called(ctx, signup)
	return args.Get(0).(provider.Result), args.Error(1)
}

type MockStats struct {
	mock.Mock
}

func (m *MockStats) IncrPlan(ctx context.Context, plan models.Plan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishSignup(ctx context.Context, event models.SignupEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

var fixedNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func newTestService(p provider.Provider, stats Stats, pub Publisher, logOut io.Writer) *SignupService {
	if logOut == nil {
		logOut = io.Discard
	}
	log := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s := NewSignupService(log, p, stats, pub, metrics.New(prometheus.NewRegistry()))
	s.now = func() time.Time { return fixedNow }
	return s
}

var validRequest = models.SignupRequest{Email: "jonathan@example.com", Plan: "indie"}

func expectedSignup() models.Signup {
	return models.Signup{
		Email:       "jonathan@example.com",
		Plan:        models.PlanIndie,
		SubmittedAt: fixedNow,
		Source:      "Landing Page",
	}
}

func TestSignupService_Success(t *testing.T) {
	p := new(MockProvider)
	stats := new(MockStats)
	pub := new(MockPublisher)
	var logs bytes.Buffer

	p.On("Validate").Return(nil)
	p.On("Submit", mock.Anything, expectedSignup()).Return(provider.Result{OK: true, Identifier: "rec42"}, nil).Once()
	stats.On("IncrPlan", mock.Anything, models.PlanIndie).Return(nil).Once()
	pub.On("PublishSignup", mock.Anything, mock.MatchedBy(func(e models.SignupEvent) bool {
		return e.ID != "" &&
			e.Email == "jonathan@example.com" &&
			e.Plan == models.PlanIndie &&
			e.Provider == "mock" &&
			e.Identifier == "rec42" &&
			e.Source == models.Source &&
			e.CreatedAt.Equal(fixedNow)
	})).Return(nil).Once()

	s := newTestService(p, stats, pub, &logs)

	out, err := s.Signup(context.Background(), validRequest)
	require.NoError(t, err)
	assert.Equal(t, Outcome{Identifier: "rec42"}, out)

	assert.Contains(t, logs.String(), "successful signup")
	assert.Contains(t, logs.String(), "jon***@example.com")
	assert.NotContains(t, logs.String(), "jonathan@example.com")

	p.AssertExpectations(t)
	stats.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestSignupService_Duplicate(t *testing.T) {
	p := new(MockProvider)
	stats := new(MockStats)
	pub := new(MockPublisher)

	p.On("Validate").Return(nil)
	p.On("Submit", mock.Anything, mock.Anything).Return(provider.Result{Duplicate: true, RawError: "duplicate"}, nil).Once()

	s := newTestService(p, stats, pub, nil)

	out, err := s.Signup(context.Background(), validRequest)
	require.NoError(t, err)
	assert.Equal(t, Outcome{Duplicate: true}, out)

	stats.AssertNotCalled(t, "IncrPlan", mock.Anything, mock.Anything)
	pub.AssertNotCalled(t, "PublishSignup", mock.Anything, mock.Anything)
}

func TestSignupService_Upstream(t *testing.T) {
	p := new(MockProvider)
	var logs bytes.Buffer

	p.On("Validate").Return(nil)
	p.On("Submit", mock.Anything, mock.Anything).Return(provider.Result{RawError: "status 401: AUTHENTICATION_REQUIRED"}, nil).Once()

	s := newTestService(p, nil, nil, &logs)

	_, err := s.Signup(context.Background(), validRequest)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUpstream))
	assert.Contains(t, logs.String(), "AUTHENTICATION_REQUIRED")
	assert.NotContains(t, logs.String(), "jonathan@example.com")
}

func TestSignupService_TransportError(t *testing.T) {
	p := new(MockProvider)

	transportErr := errors.New("dial tcp: connection refused")
	p.On("Validate").Return(nil)
	p.On("Submit", mock.Anything, mock.Anything).Return(provider.Result{}, transportErr).Once()

	s := newTestService(p, nil, nil, nil)

	_, err := s.Signup(context.Background(), validRequest)
	require.Error(t, err)
	assert.True(t, errors.Is(err, transportErr))
	assert.False(t, errors.Is(err, ErrUpstream))
	assert.False(t, errors.Is(err, provider.ErrNotConfigured))
}

func TestSignupService_NotConfigured(t *testing.T) {
	p := new(MockProvider)
	var logs bytes.Buffer

	p.On("Validate").Return(fmt.Errorf("airtable: %w", provider.ErrNotConfigured))

	s := newTestService(p, nil, nil, &logs)

	_, err := s.Signup(context.Background(), validRequest)
	require.Error(t, err)
	assert.True(t, errors.Is(err, provider.ErrNotConfigured))
	assert.Contains(t, logs.String(), "missing provider configuration")

	p.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
}

func TestSignupService_SideEffectFailuresIgnored(t *testing.T) {
	p := new(MockProvider)
	stats := new(MockStats)
	pub := new(MockPublisher)

	p.On("Validate").Return(nil)
	p.On("Submit", mock.Anything, mock.Anything).Return(provider.Result{OK: true, Identifier: "rec1"}, nil).Once()
	stats.On("IncrPlan", mock.Anything, mock.Anything).Return(errors.New("redis down")).Once()
	pub.On("PublishSignup", mock.Anything, mock.Anything).Return(errors.New("channel closed")).Once()

	s := newTestService(p, stats, pub, nil)

	out, err := s.Signup(context.Background(), validRequest)
	require.NoError(t, err)
	assert.Equal(t, "rec1", out.Identifier)
}

func TestSignupService_CheckConfig(t *testing.T) {
	p := new(MockProvider)
	p.On("Validate").Return(nil).Once()

	s := newTestService(p, nil, nil, nil)
	assert.NoError(t, s.CheckConfig())
	assert.Equal(t, "mock", s.ProviderName())

	p.On("Validate").Return(provider.ErrNotConfigured).Once()
	assert.False(t, s.ProviderConfigured())
}

func newProviderServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSignupService_MailchimpDuplicateKeepsEmailOutOfLogs(t *testing.T) {
	srv := newProviderServer(t, http.StatusBadRequest,
		`{"title":"Member Exists","status":400,"detail":"jonathan@example.com is already a list member. Use PUT to insert or update list members."}`)
	p := mailchimp.NewClient(config.Mailchimp{APIKey: "key-us6", ListID: "list42", BaseURL: srv.URL}, srv.Client())
	var logs bytes.Buffer

	s := newTestService(p, nil, nil, &logs)

	out, err := s.Signup(context.Background(), validRequest)
	require.NoError(t, err)
	assert.True(t, out.Duplicate)

	assert.Contains(t, logs.String(), "duplicate signup accepted")
	assert.Contains(t, logs.String(), "jon***@example.com is already a list member")
	assert.NotContains(t, logs.String(), "jonathan@example.com")
}

func TestSignupService_AirtableRejectionKeepsEmailOutOfLogs(t *testing.T) {
	srv := newProviderServer(t, http.StatusUnprocessableEntity,
		`{"error":{"type":"INVALID_VALUE_FOR_COLUMN","message":"Field \"Email\" cannot accept the provided value \"Jonathan@Example.com\""}}`)
	p := airtable.NewClient(config.Airtable{APIKey: "key", BaseID: "app1", TableName: "Signups", BaseURL: srv.URL}, srv.Client())
	var logs bytes.Buffer

	s := newTestService(p, nil, nil, &logs)

	_, err := s.Signup(context.Background(), validRequest)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.NotContains(t, strings.ToLower(err.Error()), "jonathan@example.com")

	assert.Contains(t, logs.String(), "provider rejected signup")
	assert.Contains(t, logs.String(), "INVALID_VALUE_FOR_COLUMN")
	assert.NotContains(t, strings.ToLower(logs.String()), "jonathan@example.com")
}

func TestSignupService_TransportErrorKeepsEmailOutOfLogs(t *testing.T) {
	p := new(MockProvider)
	var logs bytes.Buffer

	transportErr := errors.New("relay refused jonathan@example.com")
	p.On("Validate").Return(nil)
	p.On("Submit", mock.Anything, mock.Anything).Return(provider.Result{}, transportErr).Once()

	s := newTestService(p, nil, nil, &logs)

	_, err := s.Signup(context.Background(), validRequest)
	require.Error(t, err)
	assert.ErrorIs(t, err, transportErr)
	assert.NotContains(t, err.Error(), "jonathan@example.com")
	assert.Contains(t, logs.String(), "relay refused jon***@example.com")
	assert.NotContains(t, logs.String(), "jonathan@example.com")
}
