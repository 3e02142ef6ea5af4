package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"sparkgen-api/internal/application/generation"
	"sparkgen-api/internal/domain/entity"
	"sparkgen-api/internal/interfaces/http/middleware"
	apperrors "sparkgen-api/pkg/errors"
)

type stubGenerator struct {
	calls int
	res   *generation.Result
	err   error
}

func (s *stubGenerator) Generate(_ context.Context, _ entity.Identity, _ string, _ json.RawMessage) (*generation.Result, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.res, nil
}

type stubVerifier struct {
	ident *entity.Identity
	err   error
	calls int
}

func (s *stubVerifier) Verify(_ context.Context, _ string) (*entity.Identity, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.ident, nil
}

func newTestRouter(verifier middleware.TokenVerifier, gen Generator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	h := NewGenerateHandler(gen, 0)
	engine.POST("/v1/generate", middleware.Auth(verifier), h.Generate)
	return engine
}

func TestGenerateUnauthorizedSkipsEverything(t *testing.T) {
	gen := &stubGenerator{}
	verifier := &stubVerifier{err: errors.New("bad signature")}
	engine := newTestRouter(verifier, gen)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"garbage header", "garbage"},
		{"invalid token", "Bearer not-a-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/generate",
				strings.NewReader(`{"type":"caption","payload":{"topic":"x"}}`))
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", w.Code)
			}
		})
	}

	if gen.calls != 0 {
		t.Errorf("generator invoked %d times on unauthorized requests, want 0", gen.calls)
	}
}

func TestGenerateSuccess(t *testing.T) {
	remaining := 4
	gen := &stubGenerator{res: &generation.Result{
		Result:           `{"captions":["x"]}`,
		CreditsDeducted:  1,
		RemainingCredits: &remaining,
	}}
	verifier := &stubVerifier{ident: &entity.Identity{UID: "uid-1"}}
	engine := newTestRouter(verifier, gen)

	req := httptest.NewRequest(http.MethodPost, "/v1/generate",
		strings.NewReader(`{"type":"caption","payload":{"topic":"x"}}`))
	req.Header.Set("Authorization", "Bearer token")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var body struct {
		Result           string `json:"result"`
		CreditsDeducted  int    `json:"creditsDeducted"`
		RemainingCredits *int   `json:"remainingCredits"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if body.CreditsDeducted != 1 || body.RemainingCredits == nil || *body.RemainingCredits != 4 {
		t.Errorf("unexpected billing fields: %+v", body)
	}
}

func TestGenerateErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"insufficient credits", apperrors.ErrInsufficientCredits, http.StatusTooManyRequests},
		{"unknown type", apperrors.ErrUnknownRequestType, http.StatusNotFound},
		{"missing input", apperrors.ErrMissingInput, http.StatusBadRequest},
		{"provider failure", apperrors.ErrProviderFailure, http.StatusInternalServerError},
		{"no image", apperrors.ErrNoImageReturned, http.StatusInternalServerError},
	}

	verifier := &stubVerifier{ident: &entity.Identity{UID: "uid-1"}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestRouter(verifier, &stubGenerator{err: tt.err})
			req := httptest.NewRequest(http.MethodPost, "/v1/generate",
				strings.NewReader(`{"type":"caption","payload":{"topic":"x"}}`))
			req.Header.Set("Authorization", "Bearer token")
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (body: %s)", w.Code, tt.want, w.Body.String())
			}

			var body struct {
				Error string `json:"error"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.Error == "" {
				t.Errorf("error envelope missing human-readable message: %s", w.Body.String())
			}
		})
	}
}

func TestGenerateMalformedBody(t *testing.T) {
	verifier := &stubVerifier{ident: &entity.Identity{UID: "uid-1"}}
	gen := &stubGenerator{}
	engine := newTestRouter(verifier, gen)

	req := httptest.NewRequest(http.MethodPost, "/v1/generate", strings.NewReader(`{not json`))
	req.Header.Set("Authorization", "Bearer token")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if gen.calls != 0 {
		t.Error("generator must not run on malformed body")
	}
}
