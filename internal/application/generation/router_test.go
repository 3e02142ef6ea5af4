package generation

import (
	"encoding/json"
	"testing"

	apperrors "sparkgen-api/pkg/errors"
)

func mustParse(t *testing.T, typeStr, payload string) *Envelope {
	t.Helper()
	env, err := ParseEnvelope(typeStr, json.RawMessage(payload))
	if err != nil {
		t.Fatalf("ParseEnvelope(%q) failed: %v", typeStr, err)
	}
	return env
}

func TestResolveCostTable(t *testing.T) {
	tests := []struct {
		typeStr string
		payload string
		want    int
	}{
		{"caption", `{"topic":"coffee"}`, 1},
		{"idea", `{"topic":"coffee"}`, 1},
		{"tweet", `{"topic":"coffee"}`, 1},
		{"videoScript", `{"topic":"coffee"}`, 1},
		{"post", `{"topic":"coffee"}`, 1},
		{"image", `{"topic":"coffee"}`, 2},
		{"smartImage", `{"topic":"coffee"}`, 1},
		{"generateRoadmapBatch", `{"goal":"grow"}`, 0},
		{"finalGuide", `{"goal":"grow"}`, 0},
		{"generateModuleSteps", `{"moduleTitle":"m1"}`, 0},
		{"generateChecklist", `{"goal":"grow"}`, 0},
		{"generatePillars", `{"niche":"fitness"}`, 0},
		{"payForGuideReset", `{}`, 10},
	}

	for _, tt := range tests {
		t.Run(tt.typeStr, func(t *testing.T) {
			env := mustParse(t, tt.typeStr, tt.payload)
			got, err := Resolve(env)
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %d credits, want %d", tt.typeStr, got, tt.want)
			}
		})
	}
}

func TestResolvePostMultipliesByVariations(t *testing.T) {
	env := mustParse(t, "post", `{"topic":"coffee","options":{"numVariations":3}}`)
	got, err := Resolve(env)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != 3 {
		t.Errorf("post with 3 variations costs %d, want 3", got)
	}
}

func TestResolvePostDefaultsToOneVariation(t *testing.T) {
	env := mustParse(t, "post", `{"topic":"coffee"}`)
	got, err := Resolve(env)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != 1 {
		t.Errorf("post without variations costs %d, want 1", got)
	}
}

func TestResolveRejectsMissingTopicAndImage(t *testing.T) {
	for _, typeStr := range []string{"caption", "idea", "tweet", "post", "videoScript"} {
		t.Run(typeStr, func(t *testing.T) {
			env := mustParse(t, typeStr, `{}`)
			_, err := Resolve(env)
			appErr := apperrors.AsAppError(err)
			if appErr == nil || appErr.Code != apperrors.CodeMissingInput {
				t.Fatalf("expected missing input error, got %v", err)
			}
			if appErr.HTTPStatus != 400 {
				t.Errorf("missing input maps to HTTP %d, want 400", appErr.HTTPStatus)
			}
		})
	}
}

func TestResolveAcceptsImageInsteadOfTopic(t *testing.T) {
	env := mustParse(t, "caption", `{"image":"YWJj"}`)
	if _, err := Resolve(env); err != nil {
		t.Fatalf("caption with image only should pass validation, got %v", err)
	}
}

func TestResolveFlowTypesExemptFromInputRule(t *testing.T) {
	env := mustParse(t, "generateRoadmapBatch", `{}`)
	if _, err := Resolve(env); err != nil {
		t.Fatalf("flow type should not require topic/image, got %v", err)
	}
}

func TestParseEnvelopeUnknownType(t *testing.T) {
	_, err := ParseEnvelope("summonDragons", json.RawMessage(`{}`))
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeUnknownRequestType {
		t.Fatalf("expected unknown type error, got %v", err)
	}
	if appErr.HTTPStatus != 404 {
		t.Errorf("unknown type maps to HTTP %d, want 404", appErr.HTTPStatus)
	}
}

func TestParseEnvelopeUnwrapsDataWrapper(t *testing.T) {
	env := mustParse(t, "caption", `{"data":{"topic":"coffee"}}`)
	if env.Text == nil || env.Text.Topic != "coffee" {
		t.Fatalf("wrapped payload not unwrapped: %+v", env.Text)
	}
}

func TestParseEnvelopeRejectsUnknownFields(t *testing.T) {
	_, err := ParseEnvelope("caption", json.RawMessage(`{"topic":"coffee","bogus":true}`))
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeMalformedPayload {
		t.Fatalf("expected malformed payload error, got %v", err)
	}
}

func TestParseEnvelopeRejectsInvalidImageBase64(t *testing.T) {
	tests := []struct {
		typeStr string
		payload string
	}{
		{"caption", `{"topic":"coffee","image":"%%%not-base64%%%"}`},
		{"smartImage", `{"topic":"coffee","referenceImage":"%%%not-base64%%%"}`},
	}
	for _, tt := range tests {
		_, err := ParseEnvelope(tt.typeStr, json.RawMessage(tt.payload))
		appErr := apperrors.AsAppError(err)
		if appErr == nil || appErr.Code != apperrors.CodeMalformedPayload {
			t.Fatalf("%s: expected malformed payload error, got %v", tt.typeStr, err)
		}
	}
}

func TestParseEnvelopeDecodesImageWithDataURI(t *testing.T) {
	env := mustParse(t, "caption", `{"topic":"x","image":"data:image/png;base64,YWJj"}`)
	if string(env.Text.ImageData) != "abc" {
		t.Errorf("image bytes = %q, want %q", env.Text.ImageData, "abc")
	}
	if env.Text.ImageMIME != "image/png" {
		t.Errorf("image mime = %q, want image/png", env.Text.ImageMIME)
	}
}

func TestHeavyTierSelection(t *testing.T) {
	heavy := []Type{TypeRoadmapBatch, TypeFinalGuide, TypeModuleSteps, TypeChecklist, TypePillars}
	for _, tp := range heavy {
		if !IsHeavy(tp) {
			t.Errorf("%s should use the heavy model tier", tp)
		}
	}
	light := []Type{TypeCaption, TypeIdea, TypeTweet, TypePost, TypeVideoScript}
	for _, tp := range light {
		if IsHeavy(tp) {
			t.Errorf("%s should use the light model tier", tp)
		}
	}
}
