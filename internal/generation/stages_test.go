package generation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viralscript/viralscript/internal/video"
)

func transcribed(n int) []video.Transcribed {
	out := make([]video.Transcribed, n)
	for i := range out {
		out[i] = video.Transcribed{
			Reference:     video.Reference{URL: "https://youtu.be/x", Platform: video.PlatformYouTube},
			Transcription: "texto do vídeo",
		}
	}
	return out
}

func TestAnalyzer_CorrectsVideoCount(t *testing.T) {
	client := &fakeLLM{analysis: analysisReply}
	a, err := NewAnalyzer(client, "model-a").Analyze(context.Background(), transcribed(2))
	require.NoError(t, err)

	assert.Equal(t, 2, a.VideosAnalyzed)
	assert.EqualValues(t, 1, client.analysisCalls.Load())
	prompt := client.lastPrompt.Load().(string)
	assert.Contains(t, prompt, "VÍDEO 1 (YOUTUBE)")
	assert.Contains(t, prompt, "VÍDEO 2 (YOUTUBE)")
}

func TestAnalyzer_RejectsVideoCount(t *testing.T) {
	client := &fakeLLM{analysis: analysisReply}
	for _, n := range []int{0, 6} {
		_, err := NewAnalyzer(client, "m").Analyze(context.Background(), transcribed(n))
		assert.ErrorIs(t, err, ErrValidation)
	}
	assert.Zero(t, client.analysisCalls.Load())
}

func TestAnalyzer_Errors(t *testing.T) {
	_, err := NewAnalyzer(&fakeLLM{analysisErr: errors.New("overloaded")}, "m").Analyze(context.Background(), transcribed(1))
	assert.ErrorIs(t, err, ErrModelCall)

	_, err = NewAnalyzer(&fakeLLM{analysis: "não sei"}, "m").Analyze(context.Background(), transcribed(1))
	assert.ErrorIs(t, err, ErrMalformedAnalysis)
}

func TestSynthesizer(t *testing.T) {
	client := &fakeLLM{scripts: scriptsReply(7)}
	theme := ThemeInput{Type: ThemeLink, Content: "https://loja.exemplo.com/curso", TargetAudience: "iniciantes", Objective: ObjectiveSale}
	settings := Settings{VariationCount: 7, VideoDuration: Duration60to90, Platform: TargetAll}

	analysis, err := ParseAnalysis(analysisReply)
	require.NoError(t, err)

	scripts, err := NewSynthesizer(client, "m").Synthesize(context.Background(), analysis, theme, settings)
	require.NoError(t, err)
	assert.Len(t, scripts, 7)

	prompt := client.lastPrompt.Load().(string)
	assert.Contains(t, prompt, "Link: https://loja.exemplo.com/curso")
	assert.Contains(t, prompt, "Público-alvo: iniciantes")
	assert.Contains(t, prompt, "Duração desejada: 60-90s")
	assert.Contains(t, prompt, "pergunta_provocativa")
}

func TestSynthesizer_Errors(t *testing.T) {
	analysis := &Analysis{}
	settings := Settings{VariationCount: 5, VideoDuration: Duration15to30, Platform: "tiktok"}

	_, err := NewSynthesizer(&fakeLLM{}, "m").Synthesize(context.Background(), analysis, ThemeInput{}, Settings{VariationCount: 4})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewSynthesizer(&fakeLLM{scriptsErr: errors.New("timeout")}, "m").Synthesize(context.Background(), analysis, ThemeInput{}, settings)
	assert.ErrorIs(t, err, ErrModelCall)

	_, err = NewSynthesizer(&fakeLLM{scripts: "[]"}, "m").Synthesize(context.Background(), analysis, ThemeInput{}, settings)
	assert.ErrorIs(t, err, ErrMalformedScript)
}
