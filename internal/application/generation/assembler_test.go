package generation

import (
	"strings"
	"testing"

	"sparkgen-api/internal/application/generation/prompt"
	"sparkgen-api/internal/domain/entity"
)

func testAccount() *entity.Account {
	acc := entity.NewAccount("uid-1", "a@b.test", "Ada", 5)
	acc.Brand = entity.BrandProfile{
		Name:     "Acme Coffee",
		Industry: "food & beverage",
		Tone:     "warm and witty",
		Audience: "young professionals",
	}
	return acc
}

func buildPrompt(t *testing.T, typeStr, payload string) Prompt {
	t.Helper()
	env := mustParse(t, typeStr, payload)
	a := NewAssembler(prompt.NewRegistry())
	p, err := a.Build(env, testAccount())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return p
}

func TestBuildIncludesBrandContext(t *testing.T) {
	p := buildPrompt(t, "caption", `{"topic":"new espresso blend"}`)
	if !strings.Contains(p.User, "Acme Coffee") {
		t.Error("brand name missing from prompt")
	}
	if !strings.Contains(p.User, "young professionals") {
		t.Error("audience missing from prompt")
	}
}

func TestBuildBrandOptOut(t *testing.T) {
	p := buildPrompt(t, "caption", `{"topic":"new espresso blend","options":{"noBrandContext":true}}`)
	if strings.Contains(p.User, "Acme Coffee") {
		t.Error("brand context present despite opt-out")
	}
	if !strings.Contains(p.User, "neutral, professional") {
		t.Error("tone must fall back to neutral, professional on opt-out")
	}
}

func TestBuildToneFallback(t *testing.T) {
	p := buildPrompt(t, "caption", `{"topic":"x"}`)
	if !strings.Contains(p.User, "neutral, professional") {
		t.Error("tone must fall back to neutral, professional when no tags given")
	}

	p = buildPrompt(t, "caption", `{"topic":"x","options":{"toneTags":["playful","bold"]}}`)
	if !strings.Contains(p.User, "playful, bold") {
		t.Errorf("tone tags not rendered: %q", p.User)
	}
}

func TestBuildTweetWordCountConstraint(t *testing.T) {
	p := buildPrompt(t, "tweet", `{"topic":"x","options":{"wordCount":20}}`)
	if !strings.Contains(p.User, "Target word count: 20 words") {
		t.Errorf("word count target missing: %q", p.User)
	}
	if !strings.Contains(p.User, "17-23") {
		t.Errorf("plus/minus three window missing: %q", p.User)
	}
	if !strings.Contains(p.System, "REJECTED") {
		t.Error("rejection examples missing from tweet system prompt")
	}
}

func TestBuildVideoScriptBeats(t *testing.T) {
	tests := []struct {
		length string
		want   string
	}{
		{"short", "intro must contain exactly 1 entries, mainContent exactly 3 entries, outro exactly 1 entries"},
		{"medium", "intro must contain exactly 2 entries, mainContent exactly 5 entries, outro exactly 2 entries"},
		{"long", "intro must contain exactly 3 entries, mainContent exactly 8 entries, outro exactly 3 entries"},
	}
	for _, tt := range tests {
		t.Run(tt.length, func(t *testing.T) {
			p := buildPrompt(t, "videoScript", `{"topic":"x","options":{"videoLength":"`+tt.length+`"}}`)
			if !strings.Contains(p.User, tt.want) {
				t.Errorf("beat sizing for %s missing, got %q", tt.length, p.User)
			}
		})
	}
}

func TestBuildFlowToolAllowList(t *testing.T) {
	p := buildPrompt(t, "generateRoadmapBatch",
		`{"goal":"grow a channel","verifiedTools":[{"name":"CapCut","url":"https://capcut.com"},{"name":"Notion"}]}`)
	if !strings.Contains(p.User, "CapCut") || !strings.Contains(p.User, "Notion") {
		t.Errorf("verified tools missing from prompt: %q", p.User)
	}
	if !strings.Contains(p.User, "Persona: Systems Engineer") {
		t.Errorf("persona missing: %q", p.User)
	}
	if !strings.Contains(p.System, "NEVER invent") {
		t.Error("tool invention ban missing from flow system prompt")
	}
}

func TestBuildFlowEmptyAllowList(t *testing.T) {
	p := buildPrompt(t, "generateChecklist", `{"goal":"launch"}`)
	if !strings.Contains(p.User, "allow-list is EMPTY") {
		t.Errorf("empty allow-list must be declared explicitly: %q", p.User)
	}
}

func TestBuildImageContextInstruction(t *testing.T) {
	p := buildPrompt(t, "caption", `{"topic":"x","image":"YWJj"}`)
	if !strings.Contains(p.User, "PRIMARY context") {
		t.Errorf("image-as-primary-context instruction missing: %q", p.User)
	}
}

func TestBuildPostVariationCount(t *testing.T) {
	p := buildPrompt(t, "post", `{"topic":"x","options":{"numVariations":3}}`)
	if !strings.Contains(p.User, "exactly 3 variations") {
		t.Errorf("variation count missing: %q", p.User)
	}
}

func TestFlowPersonas(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{TypeRoadmapBatch, "Systems Engineer"},
		{TypeFinalGuide, "Viral Engineer"},
		{TypeModuleSteps, "Execution Coach"},
		{TypeChecklist, "Operations Auditor"},
		{TypePillars, "Brand Architect"},
	}
	for _, tt := range tests {
		if got := flowPersona(tt.typ); !strings.HasPrefix(got, tt.want) {
			t.Errorf("flowPersona(%s) = %q, want prefix %q", tt.typ, got, tt.want)
		}
	}
}

func TestAdvancedBlockAlwaysDeclaresStance(t *testing.T) {
	block := buildAdvancedBlock(Options{})
	if !strings.Contains(block, "Do not use emojis.") || !strings.Contains(block, "Do not include hashtags.") {
		t.Errorf("default stances missing: %q", block)
	}

	block = buildAdvancedBlock(Options{IncludeEmojis: true, IncludeHashtags: true})
	if !strings.Contains(block, "Include fitting emojis.") || !strings.Contains(block, "Include relevant hashtags.") {
		t.Errorf("opt-in stances missing: %q", block)
	}
}
