package provider

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"sparkgen-api/internal/application/generation/prompt"
)

type stubTextClient struct {
	lastSystem string
	lastUser   string
	lastModel  string
	result     *TextResult
	err        error
}

func (s *stubTextClient) Generate(_ context.Context, system, user, modelName string) (*TextResult, error) {
	s.lastSystem = system
	s.lastUser = user
	s.lastModel = modelName
	if s.err != nil {
		return nil, s.err
	}
	if s.result != nil {
		return s.result, nil
	}
	return &TextResult{Content: "ok", Model: modelName}, nil
}

type mediaCall struct {
	kind   string
	model  string
	prompt string
}

type stubMediaClient struct {
	calls []mediaCall

	textByModel map[string]*TextResult
	textErrs    map[string]error

	imageResult *ImageResult
	imageErr    error
}

func (s *stubMediaClient) GenerateText(_ context.Context, model, system string, parts []MediaPart) (*TextResult, error) {
	s.calls = append(s.calls, mediaCall{kind: "text", model: model})
	if err, ok := s.textErrs[model]; ok && err != nil {
		return nil, err
	}
	if res, ok := s.textByModel[model]; ok {
		return res, nil
	}
	return &TextResult{Content: "brief", Model: model}, nil
}

func (s *stubMediaClient) GenerateImage(_ context.Context, model, promptText string) (*ImageResult, error) {
	s.calls = append(s.calls, mediaCall{kind: "image", model: model, prompt: promptText})
	if s.imageErr != nil {
		return nil, s.imageErr
	}
	if s.imageResult != nil {
		return s.imageResult, nil
	}
	return &ImageResult{Data: []byte{0x89}, MIMEType: "image/png", Model: model}, nil
}

type recordingSink struct {
	mu      sync.Mutex
	samples []CostSample
}

func (r *recordingSink) Record(_ context.Context, sample CostSample) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, sample)
}

func testModels() Models {
	return Models{
		Light:          "light-model",
		Heavy:          "heavy-model",
		Vision:         "vision-primary",
		VisionFallback: "vision-fallback",
		Strategist:     "strategist-model",
		ImageGen:       "image-gen-model",
	}
}

func newTestAdapter(text TextClient, media MediaClient, sink CostSink) *Adapter {
	return NewAdapter(text, media, prompt.NewRegistry(), testModels(), sink)
}

func TestGenerateTextTierSelection(t *testing.T) {
	text := &stubTextClient{}
	a := newTestAdapter(text, &stubMediaClient{}, nil)

	if _, err := a.GenerateText(context.Background(), TextRequest{System: "s", User: "u"}); err != nil {
		t.Fatalf("GenerateText failed: %v", err)
	}
	if text.lastModel != "light-model" {
		t.Errorf("default tier used %q, want light-model", text.lastModel)
	}

	if _, err := a.GenerateText(context.Background(), TextRequest{System: "s", User: "u", Heavy: true}); err != nil {
		t.Fatalf("GenerateText failed: %v", err)
	}
	if text.lastModel != "heavy-model" {
		t.Errorf("heavy tier used %q, want heavy-model", text.lastModel)
	}
}

func TestGenerateTextVisionChain(t *testing.T) {
	text := &stubTextClient{}
	media := &stubMediaClient{
		textByModel: map[string]*TextResult{
			"vision-primary": {Content: "a latte on a wooden table", Model: "vision-primary"},
		},
	}
	a := newTestAdapter(text, media, nil)

	_, err := a.GenerateText(context.Background(), TextRequest{
		System:    "s",
		User:      "Topic: coffee",
		ImageData: []byte{1, 2, 3},
		ImageMIME: "image/jpeg",
	})
	if err != nil {
		t.Fatalf("GenerateText failed: %v", err)
	}

	if len(media.calls) != 1 || media.calls[0].model != "vision-primary" {
		t.Fatalf("expected one vision call to primary model, got %+v", media.calls)
	}
	if !strings.Contains(text.lastUser, "a latte on a wooden table") {
		t.Errorf("creative brief not fed into text stage: %q", text.lastUser)
	}
}

func TestVisionFallbackOrder(t *testing.T) {
	media := &stubMediaClient{
		textErrs: map[string]error{"vision-primary": errors.New("model overloaded")},
		textByModel: map[string]*TextResult{
			"vision-fallback": {Content: "brief from fallback", Model: "vision-fallback"},
		},
	}
	a := newTestAdapter(&stubTextClient{}, media, nil)

	_, err := a.GenerateText(context.Background(), TextRequest{
		System:    "s",
		User:      "u",
		ImageData: []byte{1},
		ImageMIME: "image/png",
	})
	if err != nil {
		t.Fatalf("fallback should rescue vision stage: %v", err)
	}

	if len(media.calls) != 2 {
		t.Fatalf("expected primary then fallback, got %+v", media.calls)
	}
	if media.calls[0].model != "vision-primary" || media.calls[1].model != "vision-fallback" {
		t.Errorf("wrong attempt order: %+v", media.calls)
	}
}

func TestVisionBothModelsFailPropagates(t *testing.T) {
	media := &stubMediaClient{
		textErrs: map[string]error{
			"vision-primary":  errors.New("down"),
			"vision-fallback": errors.New("also down"),
		},
	}
	a := newTestAdapter(&stubTextClient{}, media, nil)

	_, err := a.GenerateText(context.Background(), TextRequest{
		System: "s", User: "u", ImageData: []byte{1}, ImageMIME: "image/png",
	})
	if err == nil {
		t.Fatal("expected error when both vision models fail")
	}
}

func TestSmartImageUsesStrategistPrompt(t *testing.T) {
	media := &stubMediaClient{
		textByModel: map[string]*TextResult{
			"strategist-model": {
				Content: `{"analysis":"a","archetype":"b","composition":"c","platformPrompts":{"YouTube":"yt prompt","Instagram":"ig prompt"}}`,
				Model:   "strategist-model",
			},
		},
	}
	sink := &recordingSink{}
	a := newTestAdapter(&stubTextClient{}, media, sink)

	out, err := a.GenerateSmartImage(context.Background(), SmartImageRequest{
		Topic:       "how to brew",
		Platform:    "instagram reels",
		AspectRatio: "9:16",
	})
	if err != nil {
		t.Fatalf("GenerateSmartImage failed: %v", err)
	}
	if len(out.Data) == 0 {
		t.Fatal("no image data returned")
	}

	last := media.calls[len(media.calls)-1]
	if last.kind != "image" {
		t.Fatalf("last call should be image generation, got %+v", last)
	}
	if !strings.Contains(last.prompt, "ig prompt") {
		t.Errorf("platform prompt not used: %q", last.prompt)
	}
	if !strings.Contains(last.prompt, "1080x1920") {
		t.Errorf("aspect ratio pixels missing: %q", last.prompt)
	}
	if !strings.Contains(last.prompt, "omit it") {
		t.Errorf("text accuracy suffix missing: %q", last.prompt)
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.samples) != 1 {
		t.Errorf("expected one cost sample, got %d", len(sink.samples))
	}
}

func TestSmartImageStrategistFailureFallsBack(t *testing.T) {
	media := &stubMediaClient{
		textErrs: map[string]error{"strategist-model": errors.New("strategist exploded")},
	}
	a := newTestAdapter(&stubTextClient{}, media, nil)

	out, err := a.GenerateSmartImage(context.Background(), SmartImageRequest{
		Topic:    "how to brew",
		Platform: "YouTube",
	})
	if err != nil {
		t.Fatalf("strategist failure must not propagate: %v", err)
	}
	if len(out.Data) == 0 {
		t.Fatal("fallback path returned no image")
	}

	last := media.calls[len(media.calls)-1]
	if !strings.Contains(last.prompt, "how to brew") {
		t.Errorf("fallback prompt should carry the topic: %q", last.prompt)
	}
}

func TestSmartImageUnparseableStrategyFallsBack(t *testing.T) {
	media := &stubMediaClient{
		textByModel: map[string]*TextResult{
			"strategist-model": {Content: "sorry, I cannot help with that", Model: "strategist-model"},
		},
	}
	a := newTestAdapter(&stubTextClient{}, media, nil)

	_, err := a.GenerateSmartImage(context.Background(), SmartImageRequest{Topic: "t", Platform: "YouTube"})
	if err != nil {
		t.Fatalf("unparseable strategy must degrade, not fail: %v", err)
	}
}

func TestSmartImageNoInlineImage(t *testing.T) {
	media := &stubMediaClient{imageErr: ErrNoInlineImage}
	a := newTestAdapter(&stubTextClient{}, media, nil)

	_, err := a.GenerateSmartImage(context.Background(), SmartImageRequest{Topic: "t"})
	if !errors.Is(err, ErrNoInlineImage) {
		t.Fatalf("expected ErrNoInlineImage, got %v", err)
	}
}

func TestMatchPlatform(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"YouTube", "YouTube"},
		{"youtube shorts", "YouTube"},
		{"Instagram", "Instagram"},
		{"twitter", "Twitter-X"},
		{"x", "Twitter-X"},
		{"Facebook page", "Facebook"},
		{"LinkedIn", "LinkedIn"},
		{"tiktok", "YouTube"},
		{"", "YouTube"},
	}
	for _, tt := range tests {
		if got := matchPlatform(tt.in); got != tt.want {
			t.Errorf("matchPlatform(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFinishImagePromptDefaultsTo169(t *testing.T) {
	out := finishImagePrompt("base", "unknown-ratio")
	if !strings.Contains(out, "1920x1080") {
		t.Errorf("unknown ratio should default to 16:9 pixels: %q", out)
	}
}
