package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{
			name:     "trailing slash removed",
			url:      "http://localhost:3003/",
			expected: "http://localhost:3003",
		},
		{
			name:     "multiple trailing slashes removed",
			url:      "http://localhost:3003///",
			expected: "http://localhost:3003",
		},
		{
			name:     "clean url unchanged",
			url:      "http://localhost:3003",
			expected: "http://localhost:3003",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeURL(tt.url))
		})
	}
}

func TestResolveURLPrecedence(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(URLEnvVar, "http://env:3003/")

	// Flag wins
	url, err := ResolveURL("http://flag:3003/")
	require.NoError(t, err)
	assert.Equal(t, "http://flag:3003", url)

	// Env second
	url, err = ResolveURL("")
	require.NoError(t, err)
	assert.Equal(t, "http://env:3003", url)
}

func TestResolveURLNothingConfigured(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(URLEnvVar, "")

	_, err := ResolveURL("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no server URL configured")
}
