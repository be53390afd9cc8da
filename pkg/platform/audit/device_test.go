package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeviceFromUserAgent(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		contains []string
	}{
		{
			name:     "desktop chrome",
			header:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			contains: []string{"Chrome", "Windows"},
		},
		{
			name:     "mobile safari",
			header:   "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			contains: []string{"Safari", "(mobile)"},
		},
		{
			name:     "crawler",
			header:   "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
			contains: []string{"bot"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeviceFromUserAgent(tt.header)
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
		})
	}
}

func TestDeviceFromUserAgentEmpty(t *testing.T) {
	assert.Empty(t, DeviceFromUserAgent("  "))
}

func TestAuditEventCategory(t *testing.T) {
	assert.Equal(t, CategoryCompliance, EventUserCreated.Category())
	assert.Equal(t, CategorySecurity, EventAuthFailed.Category())
	assert.Equal(t, CategoryOperations, EventTokenRefreshed.Category())
	assert.Equal(t, CategoryOperations, AuditEvent("something_else").Category())
}
