package contentgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatHTTPDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"with milliseconds", "2025-10-21T07:28:00.000Z", "Tue, 21 Oct 2025 07:28:00 GMT"},
		{"without fraction", "2025-10-21T07:28:00Z", "Tue, 21 Oct 2025 07:28:00 GMT"},
		{"with offset", "2025-10-21T09:28:00+02:00", "Tue, 21 Oct 2025 07:28:00 GMT"},
		{"without zone", "2025-10-21T07:28:00", "Tue, 21 Oct 2025 07:28:00 GMT"},
		{"compact form", "20251021T072800Z", "Tue, 21 Oct 2025 07:28:00 GMT"},
		{"date only", "2025-10-21", "Tue, 21 Oct 2025 00:00:00 GMT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatted, err := FormatHTTPDate(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, formatted)
		})
	}
}

func TestFormatHTTPDate_InvalidInput(t *testing.T) {
	_, err := FormatHTTPDate("yesterday")
	assert.ErrorIs(t, err, ErrorInvalidTimestamp)

	_, err = FormatHTTPDate("")
	assert.ErrorIs(t, err, ErrorInvalidTimestamp)
}
