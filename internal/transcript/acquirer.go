package transcript

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/viralscript/viralscript/internal/metrics"
	"github.com/viralscript/viralscript/internal/video"
)

// Acquirer resolves transcripts for a batch of references concurrently.
type Acquirer struct {
	source Source
}

func NewAcquirer(source Source) *Acquirer {
	return &Acquirer{source: source}
}

// AcquireAll fetches every transcript in parallel. Results keep the input
// order. The first failure cancels the remaining fetches and fails the batch.
func (a *Acquirer) AcquireAll(ctx context.Context, refs []video.Reference) ([]video.Transcribed, error) {
	out := make([]video.Transcribed, len(refs))
	g, gctx := errgroup.WithContext(ctx)

	for i, ref := range refs {
		g.Go(func() error {
			text, err := a.source.Fetch(gctx, ref)
			if err != nil {
				metrics.TranscriptFetchTotal.WithLabelValues(string(ref.Platform), "error").Inc()
				return fmt.Errorf("fetching transcript for %s: %w", ref.URL, err)
			}
			metrics.TranscriptFetchTotal.WithLabelValues(string(ref.Platform), "ok").Inc()
			out[i] = video.Transcribed{Reference: ref, Transcription: text}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if !errors.Is(err, ErrTranscriptUnavailable) {
			err = fmt.Errorf("%w: %w", ErrTranscriptUnavailable, err)
		}
		return nil, err
	}
	return out, nil
}
