// Package transcript resolves the spoken-word transcript of reference videos.
package transcript

import (
	"context"
	"errors"
	"fmt"

	"github.com/viralscript/viralscript/internal/video"
)

var ErrTranscriptUnavailable = errors.New("transcript unavailable")

// Source fetches the transcript of one video.
type Source interface {
	Fetch(ctx context.Context, ref video.Reference) (string, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, ref video.Reference) (string, error)

func (f SourceFunc) Fetch(ctx context.Context, ref video.Reference) (string, error) {
	return f(ctx, ref)
}

// Router dispatches each reference to the source registered for its platform.
type Router struct {
	sources map[video.Platform]Source
}

func NewRouter(sources map[video.Platform]Source) *Router {
	return &Router{sources: sources}
}

// NewDefaultRouter serves YouTube from captions and the remaining platforms
// from placeholder transcripts.
func NewDefaultRouter(youtube Source) *Router {
	placeholder := NewPlaceholderSource()
	return NewRouter(map[video.Platform]Source{
		video.PlatformYouTube:   youtube,
		video.PlatformInstagram: placeholder,
		video.PlatformTikTok:    placeholder,
	})
}

func (r *Router) Fetch(ctx context.Context, ref video.Reference) (string, error) {
	src, ok := r.sources[ref.Platform]
	if !ok {
		return "", fmt.Errorf("%w: no source for platform %q", ErrTranscriptUnavailable, ref.Platform)
	}
	return src.Fetch(ctx, ref)
}
