package mask_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/waitlist/internal/lib/mask"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "regular address", in: "john.doe@example.com", want: "joh***@example.com"},
		{name: "exactly three characters", in: "bob@example.com", want: "bob***@example.com"},
		{name: "short local part", in: "ab@example.com", want: "ab***@example.com"},
		{name: "at sign inside local part", in: "we@ird@example.com", want: "we@***@example.com"},
		{name: "unicode local part", in: "пользователь@example.com", want: "пол***@example.com"},
		{name: "no at sign", in: "not-an-email", want: "not***"},
		{name: "empty", in: "", want: "***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mask.Email(tt.in)
			assert.Equal(t, tt.want, got)
			if tt.in != "" {
				assert.NotContains(t, got, tt.in)
			}
		})
	}
}

func TestRedact(t *testing.T) {
	tests := []struct {
		name string
		text string
		addr string
		want string
	}{
		{
			name: "mailchimp detail",
			text: "status 400: Member Exists: jonathan@example.com is already a list member.",
			addr: "jonathan@example.com",
			want: "status 400: Member Exists: jon***@example.com is already a list member.",
		},
		{
			name: "every occurrence, any case",
			text: "<Jane@Example.com>: rejected; jane@example.com unknown",
			addr: "jane@example.com",
			want: "<jan***@example.com>: rejected; jan***@example.com unknown",
		},
		{
			name: "regexp metacharacters in address",
			text: "a+b.c@example.com and aXb.c@example.com",
			addr: "a+b.c@example.com",
			want: "a+b***@example.com and aXb.c@example.com",
		},
		{name: "no address in text", text: "status 503: maintenance", addr: "jane@example.com", want: "status 503: maintenance"},
		{name: "empty address", text: "anything", addr: "", want: "anything"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mask.Redact(tt.text, tt.addr))
		})
	}
}

func TestErr(t *testing.T) {
	base := errors.New("550 5.1.1 <jane@example.com>: Recipient address rejected")

	err := mask.Err(base, "jane@example.com")
	assert.Equal(t, "550 5.1.1 <jan***@example.com>: Recipient address rejected", err.Error())
	assert.ErrorIs(t, err, base)

	wrapped := fmt.Errorf("op: %w", err)
	assert.NotContains(t, wrapped.Error(), "jane@example.com")
	assert.ErrorIs(t, wrapped, base)

	assert.NoError(t, mask.Err(nil, "jane@example.com"))
	assert.Equal(t, base, mask.Err(base, ""))
}
