package transcript

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/kkdai/youtube/v2"

	"github.com/viralscript/viralscript/internal/video"
)

var youtubeIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/)([^&\n?#]+)`),
	regexp.MustCompile(`youtube\.com/embed/([^&\n?#]+)`),
	regexp.MustCompile(`youtube\.com/v/([^&\n?#]+)`),
}

// YouTubeVideoID extracts the video identifier from a YouTube URL.
func YouTubeVideoID(url string) (string, bool) {
	for _, re := range youtubeIDPatterns {
		if m := re.FindStringSubmatch(url); len(m) > 1 && m[1] != "" {
			return m[1], true
		}
	}
	return "", false
}

type captionClient interface {
	Captions(ctx context.Context, videoID, language string) ([]string, error)
}

// kkdaiClient reads caption tracks through github.com/kkdai/youtube.
type kkdaiClient struct {
	client *youtube.Client
}

func (c *kkdaiClient) Captions(ctx context.Context, videoID, language string) ([]string, error) {
	v, err := c.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("loading video metadata: %w", err)
	}
	segments, err := c.client.GetTranscriptCtx(ctx, v, language)
	if err != nil {
		return nil, fmt.Errorf("loading captions: %w", err)
	}
	out := make([]string, 0, len(segments))
	for _, seg := range segments {
		out = append(out, seg.Text)
	}
	return out, nil
}

// YouTubeSource fetches transcripts from YouTube caption tracks.
type YouTubeSource struct {
	captions captionClient
	language string
}

func NewYouTubeSource(language string) *YouTubeSource {
	return &YouTubeSource{
		captions: &kkdaiClient{client: &youtube.Client{}},
		language: language,
	}
}

func (s *YouTubeSource) Fetch(ctx context.Context, ref video.Reference) (string, error) {
	id, ok := YouTubeVideoID(ref.URL)
	if !ok {
		return "", fmt.Errorf("%w: youtube video id not found in %q", ErrTranscriptUnavailable, ref.URL)
	}

	segments, err := s.captions.Captions(ctx, id, s.language)
	if err != nil {
		return "", fmt.Errorf("%w: video %s: %v", ErrTranscriptUnavailable, id, err)
	}

	text := strings.TrimSpace(strings.Join(segments, " "))
	if text == "" {
		return "", fmt.Errorf("%w: video %s has empty captions", ErrTranscriptUnavailable, id)
	}
	return text, nil
}
