package gravatar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trainlog/trainlog/internal/config"
)

const testHash = "973dfe463ec85785f5f95af5ba3906eedb2d931c24e69824a89ea65dba4e813b"

func TestResolverURL(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		config   *config.GravatarConfig
		expected string
	}{
		{
			name:     "disabled",
			email:    "test@example.com",
			config:   &config.GravatarConfig{Enabled: false},
			expected: "",
		},
		{
			name:     "nil config",
			email:    "test@example.com",
			expected: "",
		},
		{
			name:     "empty email",
			email:    "  ",
			config:   &config.GravatarConfig{Enabled: true},
			expected: "",
		},
		{
			name:     "no options",
			email:    "test@example.com",
			config:   &config.GravatarConfig{Enabled: true},
			expected: baseURL + testHash,
		},
		{
			name:  "all options and case normalization",
			email: "  TEST@EXAMPLE.COM ",
			config: &config.GravatarConfig{
				Enabled:      true,
				DefaultImage: "identicon",
				Rating:       "pg",
				Size:         120,
			},
			expected: baseURL + testHash + "?d=identicon&r=pg&s=120",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(tt.config)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, r.URL(tt.email))
		})
	}
}

func TestNew_InvalidOptions(t *testing.T) {
	tests := []struct {
		name   string
		config *config.GravatarConfig
	}{
		{"default image", &config.GravatarConfig{Enabled: true, DefaultImage: "kitten"}},
		{"rating", &config.GravatarConfig{Enabled: true, Rating: "nc17"}},
		{"size too large", &config.GravatarConfig{Enabled: true, Size: 4096}},
		{"negative size", &config.GravatarConfig{Enabled: true, Size: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.config)
			assert.Error(t, err)
		})
	}
}

func TestNew_InvalidOptionsIgnoredWhenDisabled(t *testing.T) {
	r, err := New(&config.GravatarConfig{Enabled: false, Rating: "nc17"})
	require.NoError(t, err)
	assert.Nil(t, r)
}
