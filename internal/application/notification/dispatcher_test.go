package notification

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/storefront-api/internal/infrastructure/mail"
)

type mockSender struct{ mock.Mock }

func (m *mockSender) Send(ctx context.Context, msg mail.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func testConfig() DispatcherConfig {
	return DispatcherConfig{
		FrontendURL: "https://shop.test/",
		From:        "no-reply@shop.test",
		SiteName:    "FashionHub",
	}
}

func TestVerificationURL_EncodesEmail(t *testing.T) {
	d := NewDispatcher(testConfig(), nil)
	got := d.VerificationURL("new+tag@example.com", "abc123")
	assert.Equal(t, "https://shop.test/verify-email?token=abc123&email=new%2Btag%40example.com", got)
}

func TestSend_NoProvider_ReportsSuccess(t *testing.T) {
	d := NewDispatcher(testConfig(), nil)
	assert.True(t, d.Send(context.Background(), "new@example.com", "New User", "tok"))
}

func TestSend_ProviderSuccess(t *testing.T) {
	s := &mockSender{}
	s.On("Send", mock.Anything, mock.MatchedBy(func(m mail.Message) bool {
		return m.To == "new@example.com" &&
			m.From == "no-reply@shop.test" &&
			m.Subject == "Email Verification - FashionHub" &&
			strings.Contains(m.HTML, "New User") &&
			strings.Contains(m.HTML, "token=tok") &&
			strings.Contains(m.HTML, "24 hours") &&
			strings.Contains(m.Text, "https://shop.test/verify-email?token=tok&email=new%40example.com")
	})).Return(nil)

	d := NewDispatcher(testConfig(), s)
	assert.True(t, d.Send(context.Background(), "new@example.com", "New User", "tok"))
	s.AssertExpectations(t)
}

func TestSend_ProviderError_ReportsFailure(t *testing.T) {
	s := &mockSender{}
	s.On("Send", mock.Anything, mock.Anything).Return(errors.New("smtp 550 mailbox unavailable"))

	d := NewDispatcher(testConfig(), s)
	assert.False(t, d.Send(context.Background(), "new@example.com", "New User", "tok"))
}

func TestRender_EscapesName(t *testing.T) {
	d := NewDispatcher(testConfig(), nil)
	html, _, err := d.render("<script>x</script>", "https://shop.test/verify-email?token=a&email=b")
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestHumanDuration(t *testing.T) {
	assert.Equal(t, "24 hours", humanDuration(24*time.Hour))
	assert.Equal(t, "1 hour", humanDuration(time.Hour))
	assert.Equal(t, "30m0s", humanDuration(30*time.Minute))
}
