// Package generation turns reference videos and a new theme into video
// scripts: it validates requests, analyzes transcripts for winning patterns
// and synthesizes new scripts from those patterns.
package generation

import (
	"errors"
	"time"

	"github.com/viralscript/viralscript/internal/video"
)

var (
	ErrValidation        = errors.New("invalid generation request")
	ErrMalformedAnalysis = errors.New("malformed analysis response")
	ErrMalformedScript   = errors.New("malformed script response")
)

type ThemeType string

const (
	ThemeDescription ThemeType = "descricao"
	ThemeLink        ThemeType = "link"
)

type Objective string

const (
	ObjectiveLeads      Objective = "leads"
	ObjectiveSale       Objective = "venda"
	ObjectiveEngagement Objective = "engajamento"
)

type VideoDuration string

const (
	Duration15to30 VideoDuration = "15-30s"
	Duration30to60 VideoDuration = "30-60s"
	Duration60to90 VideoDuration = "60-90s"
	Duration90Plus VideoDuration = "90s+"
)

// TargetPlatform is the main platform a script is written for. It extends
// video.Platform with "todas".
type TargetPlatform string

const TargetAll TargetPlatform = "todas"

const (
	MinVideos      = 1
	MaxVideos      = 5
	MinVariations  = 5
	MaxVariations  = 10
	MinThemeLength = 20
)

// VideoInput is a reference video as submitted. Platform is optional; the
// pipeline always uses the platform derived from URL.
type VideoInput struct {
	URL      string `json:"url"`
	Platform string `json:"platform,omitempty"`
}

type ThemeInput struct {
	Type           ThemeType `json:"tipo"`
	Content        string    `json:"conteudo"`
	TargetAudience string    `json:"publico_alvo,omitempty"`
	Objective      Objective `json:"objetivo,omitempty"`
}

type Settings struct {
	VariationCount int            `json:"num_variacoes"`
	VideoDuration  VideoDuration  `json:"duracao_video"`
	Platform       TargetPlatform `json:"plataforma_principal"`
}

// Request is the generation payload. Pointer fields distinguish absent
// sections from empty ones.
type Request struct {
	Videos         []VideoInput `json:"videos_referencia,omitempty"`
	SavedPatternID string       `json:"padrao_salvo_id,omitempty"`
	Theme          *ThemeInput  `json:"novo_tema"`
	Settings       *Settings    `json:"configuracoes"`
}

type HookPattern struct {
	Type               string   `json:"tipo"`
	Frequency          string   `json:"frequencia"`
	AvgDurationSeconds float64  `json:"duracao_media_segundos"`
	Examples           []string `json:"exemplos"`
}

type BodyPattern struct {
	DominantStructure string   `json:"estrutura_dominante"`
	AvgPointCount     float64  `json:"num_pontos_medio"`
	CommonElements    []string `json:"elementos_comuns"`
}

type CTAPattern struct {
	DominantType string   `json:"tipo_dominante"`
	AvgPlacement string   `json:"posicionamento_medio"`
	Examples     []string `json:"exemplos"`
}

// Analysis is the consolidated hook/body/CTA description of the reference
// videos.
type Analysis struct {
	VideosAnalyzed int           `json:"videos_analisados"`
	HookPatterns   []HookPattern `json:"padroes_ganchos"`
	BodyPattern    BodyPattern   `json:"padroes_corpo"`
	CTAPattern     CTAPattern    `json:"padroes_cta"`
}

type ScriptSection struct {
	Text   string `json:"texto"`
	Timing string `json:"timing"`
	Type   string `json:"tipo,omitempty"`
}

type ScriptBody struct {
	Text       string   `json:"texto"`
	Timing     string   `json:"timing"`
	Structure  string   `json:"estrutura,omitempty"`
	MainPoints []string `json:"pontos_principais"`
}

type Script struct {
	ID                       string           `json:"id"`
	Number                   int              `json:"numero"`
	Title                    string           `json:"titulo"`
	AdherenceScore           float64          `json:"score_aderencia"`
	EstimatedDurationSeconds float64          `json:"duracao_estimada_segundos"`
	RecommendedPlatforms     []video.Platform `json:"plataformas_recomendadas"`
	Hook                     ScriptSection    `json:"gancho"`
	Body                     ScriptBody       `json:"corpo"`
	CTA                      ScriptSection    `json:"cta"`
	CreationNotes            string           `json:"notas_criacao"`
}

// Response is the generation result returned to clients.
type Response struct {
	RequestID      string    `json:"request_id"`
	Timestamp      time.Time `json:"timestamp"`
	SavedPatternID string    `json:"padrao_salvo_id,omitempty"`
	Analysis       *Analysis `json:"analise_consolidada"`
	Scripts        []Script  `json:"roteiros_gerados"`
}
