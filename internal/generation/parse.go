package generation

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/viralscript/viralscript/internal/video"
)

// ParseAnalysis decodes the consolidated analysis from a model reply that may
// wrap the JSON object in prose or markdown.
func ParseAnalysis(text string) (*Analysis, error) {
	var (
		result  *Analysis
		lastErr = errNoJSON
	)
	eachCandidate(text, '{', '}', func(candidate string) bool {
		var keys map[string]json.RawMessage
		if err := json.Unmarshal([]byte(candidate), &keys); err != nil {
			lastErr = err
			return false
		}
		if !hasAny(keys, "padroes_ganchos", "padroes_corpo", "padroes_cta") {
			lastErr = errors.New("object has no pattern fields")
			return false
		}
		var a Analysis
		if err := json.Unmarshal([]byte(candidate), &a); err != nil {
			lastErr = err
			return false
		}
		result = &a
		return true
	})
	if result == nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedAnalysis, lastErr)
	}

	if result.HookPatterns == nil {
		result.HookPatterns = []HookPattern{}
	}
	if result.BodyPattern.CommonElements == nil {
		result.BodyPattern.CommonElements = []string{}
	}
	if result.CTAPattern.Examples == nil {
		result.CTAPattern.Examples = []string{}
	}
	return result, nil
}

func hasAny(m map[string]json.RawMessage, keys ...string) bool {
	for _, k := range keys {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

// ParseScripts decodes the script list from a model reply. Entries that fail
// validation are dropped; at most variationCount scripts are returned.
func ParseScripts(text string, variationCount int) ([]Script, error) {
	var (
		scripts []Script
		lastErr = errNoJSON
	)
	eachCandidate(text, '[', ']', func(candidate string) bool {
		var raw []json.RawMessage
		if err := json.Unmarshal([]byte(candidate), &raw); err != nil {
			lastErr = err
			return false
		}
		kept := decodeScripts(raw)
		if len(kept) == 0 {
			lastErr = fmt.Errorf("none of %d entries is a valid script", len(raw))
			return false
		}
		scripts = kept
		return true
	})
	if scripts == nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedScript, lastErr)
	}

	if variationCount > 0 && len(scripts) > variationCount {
		scripts = scripts[:variationCount]
	}
	if len(scripts) < variationCount {
		slog.Warn("model returned fewer scripts than requested",
			"requested", variationCount,
			"valid", len(scripts),
		)
	}
	return scripts, nil
}

func decodeScripts(raw []json.RawMessage) []Script {
	out := make([]Script, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, item := range raw {
		var s Script
		if err := json.Unmarshal(item, &s); err != nil {
			slog.Warn("dropping undecodable script", "index", i, "error", err)
			continue
		}
		if err := normalizeScript(&s); err != nil {
			slog.Warn("dropping invalid script", "index", i, "error", err)
			continue
		}

		s.Number = len(out) + 1
		if s.ID == "" || seen[s.ID] {
			s.ID = fmt.Sprintf("rot-%d", s.Number)
		}
		seen[s.ID] = true
		out = append(out, s)
	}
	return out
}

// normalizeScript validates s and cleans fields that can be repaired.
func normalizeScript(s *Script) error {
	s.Title = strings.TrimSpace(s.Title)
	switch {
	case s.Title == "":
		return errors.New("missing titulo")
	case strings.TrimSpace(s.Hook.Text) == "":
		return errors.New("missing gancho.texto")
	case strings.TrimSpace(s.Body.Text) == "":
		return errors.New("missing corpo.texto")
	case strings.TrimSpace(s.CTA.Text) == "":
		return errors.New("missing cta.texto")
	case s.AdherenceScore < 0 || s.AdherenceScore > 10:
		return fmt.Errorf("score_aderencia %.2f outside [0,10]", s.AdherenceScore)
	case s.EstimatedDurationSeconds <= 0:
		return fmt.Errorf("duracao_estimada_segundos %.2f must be positive", s.EstimatedDurationSeconds)
	}

	s.RecommendedPlatforms = normalizePlatforms(s.RecommendedPlatforms)
	if s.Body.MainPoints == nil {
		s.Body.MainPoints = []string{}
	}
	return nil
}

// normalizePlatforms keeps known platforms once each and expands "todas".
func normalizePlatforms(in []video.Platform) []video.Platform {
	out := make([]video.Platform, 0, len(video.Platforms))
	seen := make(map[video.Platform]bool, len(video.Platforms))
	add := func(p video.Platform) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, raw := range in {
		name := strings.ToLower(strings.TrimSpace(string(raw)))
		if name == string(TargetAll) {
			for _, p := range video.Platforms {
				add(p)
			}
			continue
		}
		if p, ok := video.ParsePlatform(name); ok {
			add(p)
		}
	}
	return out
}
