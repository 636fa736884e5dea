package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/viralscript/viralscript/internal/governance/quota"
	"github.com/viralscript/viralscript/internal/llm"
	inats "github.com/viralscript/viralscript/internal/nats"
	"github.com/viralscript/viralscript/internal/patterns"
	"github.com/viralscript/viralscript/internal/transcript"
	"github.com/viralscript/viralscript/internal/video"
)

const analysisReply = `Claro! Segue a análise:
{
  "videos_analisados": 7,
  "padroes_ganchos": [
    {"tipo": "pergunta_provocativa", "frequencia": "2/2", "duracao_media_segundos": 3.5, "exemplos": ["Você sabia?"]}
  ],
  "padroes_corpo": {"estrutura_dominante": "problema_solucao", "num_pontos_medio": 3, "elementos_comuns": ["prova social"]},
  "padroes_cta": {"tipo_dominante": "urgencia", "posicionamento_medio": "ultimos_5s", "exemplos": ["Link na bio"]}
}`

func scriptsReply(n int) string {
	items := make([]map[string]any, n)
	for i := range items {
		items[i] = map[string]any{
			"id":                        fmt.Sprintf("rot-%d", i+1),
			"numero":                    i + 1,
			"titulo":                    fmt.Sprintf("Roteiro %d", i+1),
			"score_aderencia":           8.5,
			"duracao_estimada_segundos": 45,
			"plataformas_recomendadas":  []string{"youtube", "tiktok"},
			"gancho":                    map[string]any{"texto": "Você ainda faz isso?", "timing": "0-3s", "tipo": "pergunta"},
			"corpo":                     map[string]any{"texto": "Três passos simples.", "timing": "3-40s", "pontos_principais": []string{"a", "b", "c"}},
			"cta":                       map[string]any{"texto": "Link na bio", "timing": "40-45s", "tipo": "urgencia"},
			"notas_criacao":             "Segue o padrão vencedor.",
		}
	}
	data, _ := json.Marshal(items)
	return "```json\n" + string(data) + "\n```"
}

// fakeLLM answers analysis and generation prompts with canned replies.
type fakeLLM struct {
	analysis    string
	scripts     string
	analysisErr error
	scriptsErr  error

	analysisCalls   atomic.Int32
	generationCalls atomic.Int32
	lastPrompt      atomic.Value
}

func (f *fakeLLM) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.lastPrompt.Store(req.Prompt)
	if strings.Contains(req.Prompt, "VÍDEOS DE REFERÊNCIA") {
		f.analysisCalls.Add(1)
		if f.analysisErr != nil {
			return nil, f.analysisErr
		}
		return &llm.Response{Text: f.analysis, Model: req.Model}, nil
	}
	f.generationCalls.Add(1)
	if f.scriptsErr != nil {
		return nil, f.scriptsErr
	}
	return &llm.Response{Text: f.scripts, Model: req.Model}, nil
}

// memQuota books generations under a mutex, like the conditional updates of
// the quota store.
type memQuota struct {
	mu    sync.Mutex
	used  int
	limit int
}

func (q *memQuota) status() *quota.Status {
	return &quota.Status{
		GenerationsUsed:      q.used,
		GenerationsLimit:     q.limit,
		GenerationsRemaining: max(0, q.limit-q.used),
		WithinQuota:          q.used < q.limit,
		ResetDate:            time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (q *memQuota) CheckAndMaybeReset(context.Context, uuid.UUID) (*quota.Status, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.status(), nil
}

func (q *memQuota) Consume(_ context.Context, userID uuid.UUID) (*quota.Reservation, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.used >= q.limit {
		return nil, &quota.ExceededError{Status: q.status()}
	}
	q.used++
	return &quota.Reservation{UserID: userID, Month: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)}, nil
}

func (q *memQuota) Refund(context.Context, *quota.Reservation) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.used > 0 {
		q.used--
	}
	return nil
}

func (q *memQuota) Reject(status *quota.Status) error {
	return &quota.ExceededError{Status: status}
}

func (q *memQuota) Used() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.used
}

type memPatterns struct {
	mu      sync.Mutex
	items   map[uuid.UUID]*patterns.Pattern
	saveErr error
}

func newMemPatterns() *memPatterns {
	return &memPatterns{items: make(map[uuid.UUID]*patterns.Pattern)}
}

func (m *memPatterns) Save(_ context.Context, ownerID uuid.UUID, name string, urls []string, analysis any) (*patterns.Pattern, error) {
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	data, err := json.Marshal(analysis)
	if err != nil {
		return nil, err
	}
	p := &patterns.Pattern{ID: uuid.New(), OwnerUserID: ownerID, Name: name, SourceURLs: urls, Analysis: data}
	m.mu.Lock()
	m.items[p.ID] = p
	m.mu.Unlock()
	return p, nil
}

func (m *memPatterns) GetOwned(_ context.Context, ownerID, id uuid.UUID) (*patterns.Pattern, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return nil, patterns.ErrNotFound
	}
	if p.OwnerUserID != ownerID {
		return nil, patterns.ErrForbidden
	}
	return p, nil
}

type recordingEvents struct {
	mu     sync.Mutex
	events []inats.AuditEvent
}

func (r *recordingEvents) PublishAuditEvent(_ context.Context, e inats.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingEvents) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.EventType
	}
	return out
}

func staticTranscripts() *transcript.Acquirer {
	return transcript.NewAcquirer(transcript.SourceFunc(func(_ context.Context, ref video.Reference) (string, error) {
		return "Transcrição de " + ref.URL, nil
	}))
}

func failingTranscripts() *transcript.Acquirer {
	return transcript.NewAcquirer(transcript.SourceFunc(func(context.Context, video.Reference) (string, error) {
		return "", errors.New("captions disabled")
	}))
}

func validRequest() *Request {
	return &Request{
		Videos: []VideoInput{
			{URL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", Platform: "youtube"},
			{URL: "https://youtu.be/9bZkp7q19f0"},
		},
		Theme: &ThemeInput{
			Type:    ThemeDescription,
			Content: "Mentoria de vendas online",
		},
		Settings: &Settings{
			VariationCount: 5,
			VideoDuration:  Duration30to60,
			Platform:       "youtube",
		},
	}
}
