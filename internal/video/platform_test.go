package video

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentify(t *testing.T) {
	tests := []struct {
		url      string
		platform Platform
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", PlatformYouTube},
		{"https://youtu.be/dQw4w9WgXcQ", PlatformYouTube},
		{"https://m.youtube.com/shorts/abc", PlatformYouTube},
		{"https://www.instagram.com/reel/Cxyz/", PlatformInstagram},
		{"https://www.tiktok.com/@user/video/123", PlatformTikTok},
		{"https://vm.tiktok.com/ZM123/", PlatformTikTok},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			p, err := Identify(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.platform, p)
		})
	}
}

func TestIdentify_PriorityOrder(t *testing.T) {
	// A YouTube link wins over any later needle in the same string.
	p, err := Identify("https://www.instagram.com/redirect?u=https://youtu.be/x")
	require.NoError(t, err)
	assert.Equal(t, PlatformYouTube, p)
}

func TestIdentify_Unrecognized(t *testing.T) {
	for _, url := range []string{"", "https://vimeo.com/123", "not a url", "https://example.com/tiktok"} {
		t.Run(url, func(t *testing.T) {
			_, err := Identify(url)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnrecognizedPlatform))
		})
	}
}

func TestNewReference(t *testing.T) {
	ref, err := NewReference("https://www.tiktok.com/@a/video/1")
	require.NoError(t, err)
	assert.Equal(t, PlatformTikTok, ref.Platform)

	_, err = NewReference("https://vimeo.com/1")
	assert.ErrorIs(t, err, ErrUnrecognizedPlatform)
}

func TestParsePlatform(t *testing.T) {
	p, ok := ParsePlatform("instagram")
	assert.True(t, ok)
	assert.Equal(t, PlatformInstagram, p)

	_, ok = ParsePlatform("todas")
	assert.False(t, ok)
}
