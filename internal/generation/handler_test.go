package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viralscript/viralscript/internal/auth"
	"github.com/viralscript/viralscript/internal/governance/quota"
	"github.com/viralscript/viralscript/internal/patterns"
	"github.com/viralscript/viralscript/internal/transcript"
	"github.com/viralscript/viralscript/internal/video"
)

type stubGenerator struct {
	resp *Response
	err  error
}

func (s *stubGenerator) Generate(context.Context, uuid.UUID, *Request) (*Response, error) {
	return s.resp, s.err
}

type stubBurst struct {
	allow bool
	err   error
	calls int
}

func (s *stubBurst) Allow(context.Context, uuid.UUID) (bool, error) {
	s.calls++
	return s.allow, s.err
}

func postGenerate(t *testing.T, h *Handler, body any, authenticated bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate", &buf)
	if authenticated {
		ctx := auth.WithUserClaims(req.Context(), &auth.AccessClaims{UserID: uuid.NewString()})
		req = req.WithContext(ctx)
	}
	rec := httptest.NewRecorder()
	h.Generate(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestHandler_Generate(t *testing.T) {
	f := newFixture(4, staticTranscripts())
	h := NewHandler(f.svc, &stubBurst{allow: true})

	rec := postGenerate(t, h, validRequest(), true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "request_id")
	assert.Contains(t, body, "timestamp")
	assert.NotContains(t, body, "data")

	var analysis Analysis
	require.NoError(t, json.Unmarshal(body["analise_consolidada"], &analysis))
	assert.Equal(t, 2, analysis.VideosAnalyzed)

	var scripts []Script
	require.NoError(t, json.Unmarshal(body["roteiros_gerados"], &scripts))
	assert.Len(t, scripts, 5)
}

func TestHandler_Unauthenticated(t *testing.T) {
	h := NewHandler(&stubGenerator{}, nil)
	rec := postGenerate(t, h, validRequest(), false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_MalformedBody(t *testing.T) {
	h := NewHandler(&stubGenerator{}, nil)
	rec := postGenerate(t, h, "{not json", true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_BurstLimited(t *testing.T) {
	h := NewHandler(&stubGenerator{resp: &Response{}}, &stubBurst{allow: false})
	rec := postGenerate(t, h, validRequest(), true)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// A limiter outage does not block generations.
	h = NewHandler(&stubGenerator{resp: &Response{}}, &stubBurst{err: errors.New("redis down")})
	rec = postGenerate(t, h, validRequest(), true)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_InvalidPayloadSkipsBurstWindow(t *testing.T) {
	burst := &stubBurst{allow: true}
	gen := &stubGenerator{resp: &Response{}}
	h := NewHandler(gen, burst)

	req := validRequest()
	req.Settings.VariationCount = 3
	rec := postGenerate(t, h, req, true)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorBody(t, rec), "num_variacoes")
	assert.Zero(t, burst.calls)

	rec = postGenerate(t, h, validRequest(), true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, burst.calls)
}

func TestHandler_ErrorMapping(t *testing.T) {
	exceeded := &quota.ExceededError{Status: &quota.Status{
		GenerationsUsed: 4, GenerationsLimit: 4, ResetDate: time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC),
	}}

	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"validation", &ValidationError{Errors: []string{"a", "b"}}, http.StatusBadRequest, "a; b"},
		{"platform", fmt.Errorf("x: %w", video.ErrUnrecognizedPlatform), http.StatusBadRequest, ""},
		{"quota", exceeded, http.StatusTooManyRequests, "Limite mensal de gerações atingido (4/4). Novo ciclo em 01/11/2026"},
		{"pattern missing", fmt.Errorf("loading: %w", patterns.ErrNotFound), http.StatusNotFound, ""},
		{"pattern foreign", fmt.Errorf("loading: %w", patterns.ErrForbidden), http.StatusForbidden, ""},
		{"transcript", fmt.Errorf("%w: captions off", transcript.ErrTranscriptUnavailable), http.StatusBadGateway, "upstream service failed, please try again"},
		{"model", fmt.Errorf("%w: analysis: 529", ErrModelCall), http.StatusBadGateway, "upstream service failed, please try again"},
		{"malformed", fmt.Errorf("%w: eof", ErrMalformedAnalysis), http.StatusBadGateway, ""},
		{"other", errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&stubGenerator{err: tt.err}, nil)
			rec := postGenerate(t, h, validRequest(), true)

			assert.Equal(t, tt.code, rec.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, errorBody(t, rec))
			}
		})
	}
}
