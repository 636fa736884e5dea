package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/viralscript/viralscript/internal/llm"
	"github.com/viralscript/viralscript/internal/metrics"
	"github.com/viralscript/viralscript/internal/video"
)

var ErrModelCall = errors.New("language model call failed")

const (
	stageAnalysis   = "analysis"
	stageGeneration = "generation"

	analysisMaxTokens     = 2000
	analysisTemperature   = 0.3
	generationMaxTokens   = 4000
	generationTemperature = 0.7
)

// complete performs one model call for a pipeline stage and records metrics.
func complete(ctx context.Context, client llm.Client, stage string, req llm.Request) (*llm.Response, error) {
	start := time.Now()
	resp, err := client.Complete(ctx, req)
	metrics.LLMRequestDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(stage, "error").Inc()
		return nil, fmt.Errorf("%w: %s: %w", ErrModelCall, stage, err)
	}
	metrics.LLMRequestsTotal.WithLabelValues(stage, "ok").Inc()

	slog.Debug("model call completed",
		"stage", stage,
		"model", resp.Model,
		"input_tokens", resp.InputTokens,
		"output_tokens", resp.OutputTokens,
		"duration", time.Since(start),
	)
	return resp, nil
}

// Analyzer extracts the winning hook/body/CTA patterns from transcripts.
type Analyzer struct {
	client llm.Client
	model  string
}

func NewAnalyzer(client llm.Client, model string) *Analyzer {
	return &Analyzer{client: client, model: model}
}

func (a *Analyzer) Analyze(ctx context.Context, videos []video.Transcribed) (*Analysis, error) {
	if len(videos) < MinVideos || len(videos) > MaxVideos {
		return nil, fmt.Errorf("%w: analysis needs %d to %d videos, got %d", ErrValidation, MinVideos, MaxVideos, len(videos))
	}

	resp, err := complete(ctx, a.client, stageAnalysis, llm.Request{
		Model:       a.model,
		Prompt:      buildAnalysisPrompt(videos),
		MaxTokens:   analysisMaxTokens,
		Temperature: analysisTemperature,
	})
	if err != nil {
		return nil, err
	}

	analysis, err := ParseAnalysis(resp.Text)
	if err != nil {
		return nil, err
	}
	if analysis.VideosAnalyzed != len(videos) {
		slog.Debug("correcting analyzed video count", "reported", analysis.VideosAnalyzed, "actual", len(videos))
		analysis.VideosAnalyzed = len(videos)
	}
	return analysis, nil
}

// Synthesizer writes new scripts that follow an analysis.
type Synthesizer struct {
	client llm.Client
	model  string
}

func NewSynthesizer(client llm.Client, model string) *Synthesizer {
	return &Synthesizer{client: client, model: model}
}

func (s *Synthesizer) Synthesize(ctx context.Context, analysis *Analysis, theme ThemeInput, settings Settings) ([]Script, error) {
	if settings.VariationCount < MinVariations || settings.VariationCount > MaxVariations {
		return nil, fmt.Errorf("%w: num_variacoes %d outside [%d,%d]", ErrValidation, settings.VariationCount, MinVariations, MaxVariations)
	}

	prompt, err := buildGenerationPrompt(analysis, theme, settings)
	if err != nil {
		return nil, err
	}

	resp, err := complete(ctx, s.client, stageGeneration, llm.Request{
		Model:       s.model,
		Prompt:      prompt,
		MaxTokens:   generationMaxTokens,
		Temperature: generationTemperature,
	})
	if err != nil {
		return nil, err
	}

	return ParseScripts(resp.Text, settings.VariationCount)
}
