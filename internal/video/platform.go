// Package video identifies the platform a reference video is hosted on.
package video

import (
	"errors"
	"fmt"
	"strings"
)

type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformInstagram Platform = "instagram"
	PlatformTikTok    Platform = "tiktok"
)

// Platforms lists the supported platforms in identification priority order.
var Platforms = []Platform{PlatformYouTube, PlatformInstagram, PlatformTikTok}

var ErrUnrecognizedPlatform = errors.New("plataforma não reconhecida. Use YouTube, Instagram ou TikTok")

var platformHosts = []struct {
	platform Platform
	needles  []string
}{
	{PlatformYouTube, []string{"youtube.com", "youtu.be"}},
	{PlatformInstagram, []string{"instagram.com"}},
	{PlatformTikTok, []string{"tiktok.com"}},
}

// Identify maps a URL to its platform by substring match. The first match in
// priority order wins.
func Identify(url string) (Platform, error) {
	for _, h := range platformHosts {
		for _, needle := range h.needles {
			if strings.Contains(url, needle) {
				return h.platform, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnrecognizedPlatform, url)
}

// ParsePlatform validates a platform name.
func ParsePlatform(s string) (Platform, bool) {
	for _, p := range Platforms {
		if string(p) == s {
			return p, true
		}
	}
	return "", false
}

// Reference is a reference video whose platform was derived from its URL.
type Reference struct {
	URL      string   `json:"url"`
	Platform Platform `json:"platform"`
}

// NewReference builds a Reference, deriving the platform from url.
func NewReference(url string) (Reference, error) {
	p, err := Identify(url)
	if err != nil {
		return Reference{}, err
	}
	return Reference{URL: url, Platform: p}, nil
}

// Transcribed is a Reference together with its spoken-word transcript.
type Transcribed struct {
	Reference
	Transcription string `json:"transcription"`
}
