package generation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/viralscript/viralscript/internal/video"
)

var (
	validDurations       = []VideoDuration{Duration15to30, Duration30to60, Duration60to90, Duration90Plus}
	validTargetPlatforms = []TargetPlatform{"instagram", "tiktok", "youtube", TargetAll}
	validObjectives      = []Objective{ObjectiveLeads, ObjectiveSale, ObjectiveEngagement}
)

// ValidationResult lists every problem found in a request.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ValidationError rejects a request with the messages of a ValidationResult.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Errors, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// RequestValidator checks the structure of generation requests. It never
// stops at the first problem.
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validate: validator.New()}
}

func (v *RequestValidator) Validate(req *Request) ValidationResult {
	var errs []string
	if req == nil {
		req = &Request{}
	}

	switch {
	case req.Videos != nil:
		errs = append(errs, v.checkVideos(req.Videos)...)
	case req.SavedPatternID == "":
		errs = append(errs, "Envie vídeos de referência ou selecione um padrão salvo")
	}
	if req.SavedPatternID != "" && v.validate.Var(req.SavedPatternID, "uuid") != nil {
		errs = append(errs, "padrao_salvo_id inválido")
	}

	if req.Theme == nil {
		errs = append(errs, "novo_tema é obrigatório")
	} else {
		t := req.Theme
		if t.Type != ThemeDescription && t.Type != ThemeLink {
			errs = append(errs, `novo_tema.tipo deve ser "descricao" ou "link"`)
		}
		if len([]rune(strings.TrimSpace(t.Content))) < MinThemeLength {
			errs = append(errs, fmt.Sprintf("novo_tema.conteudo deve ter pelo menos %d caracteres", MinThemeLength))
		}
		if t.Objective != "" && !slices.Contains(validObjectives, t.Objective) {
			errs = append(errs, "novo_tema.objetivo inválido")
		}
	}

	if req.Settings == nil {
		errs = append(errs, "configuracoes é obrigatório")
	} else {
		s := req.Settings
		if s.VariationCount < MinVariations || s.VariationCount > MaxVariations {
			errs = append(errs, fmt.Sprintf("num_variacoes deve estar entre %d e %d", MinVariations, MaxVariations))
		}
		if !slices.Contains(validDurations, s.VideoDuration) {
			errs = append(errs, "duracao_video inválida")
		}
		if !slices.Contains(validTargetPlatforms, s.Platform) {
			errs = append(errs, "plataforma_principal inválida")
		}
	}

	if errs == nil {
		errs = []string{}
	}
	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

func (v *RequestValidator) checkVideos(videos []VideoInput) []string {
	var errs []string
	switch {
	case len(videos) < MinVideos:
		errs = append(errs, "Envie pelo menos 1 vídeo de referência")
	case len(videos) > MaxVideos:
		errs = append(errs, fmt.Sprintf("Máximo de %d vídeos de referência permitido", MaxVideos))
	}

	for i, in := range videos {
		n := i + 1
		url := strings.TrimSpace(in.URL)
		if url == "" {
			errs = append(errs, fmt.Sprintf("Vídeo %d: URL é obrigatória", n))
			continue
		}
		if v.validate.Var(url, "url") != nil {
			errs = append(errs, fmt.Sprintf("Vídeo %d: URL inválida", n))
			continue
		}

		derived, err := video.Identify(url)
		if err != nil {
			errs = append(errs, fmt.Sprintf("Vídeo %d: Plataforma não reconhecida. Use YouTube, Instagram ou TikTok", n))
			continue
		}
		if in.Platform == "" {
			continue
		}
		declared, ok := video.ParsePlatform(in.Platform)
		switch {
		case !ok:
			errs = append(errs, fmt.Sprintf("Vídeo %d: Plataforma inválida", n))
		case declared != derived:
			errs = append(errs, fmt.Sprintf("Vídeo %d: Plataforma %s não corresponde à URL (%s)", n, declared, derived))
		}
	}
	return errs
}

// references converts validated inputs into references whose platform is
// derived from the URL.
func references(videos []VideoInput) ([]video.Reference, error) {
	refs := make([]video.Reference, 0, len(videos))
	for _, in := range videos {
		ref, err := video.NewReference(strings.TrimSpace(in.URL))
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}
