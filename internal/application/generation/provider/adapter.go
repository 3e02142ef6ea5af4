package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"sparkgen-api/internal/application/generation/norm"
	"sparkgen-api/internal/application/generation/prompt"
	"sparkgen-api/pkg/logger"
	"sparkgen-api/pkg/metrics"
)

var tracer = otel.Tracer("provider")

// Models 适配器使用的模型档位
type Models struct {
	// Light 常规类型的快速文本模型
	Light string
	// Heavy 结构化/策略类型的大文本模型
	Heavy string
	// Vision 首选视觉模型
	Vision string
	// VisionFallback 首选失败后重试一次的备用视觉模型
	VisionFallback string
	// Strategist 缩略图策略师模型
	Strategist string
	// ImageGen 图像合成模型
	ImageGen string
}

// TextRequest 文本/视觉管线入参
type TextRequest struct {
	System      string
	User        string
	ImageData   []byte
	ImageMIME   string
	Heavy       bool
	AccountID   string
	RequestType string
}

// ImageRequest 简单图像管线入参
type ImageRequest struct {
	Prompt      string
	AccountID   string
	RequestType string
}

// SmartImageRequest 策略师图像管线入参
type SmartImageRequest struct {
	Topic         string
	Platform      string
	AspectRatio   string
	ReferenceData []byte
	ReferenceMIME string
	AccountID     string
	RequestType   string
}

// ThumbnailStrategy 策略师阶段产物，生命周期仅限单次请求
type ThumbnailStrategy struct {
	Analysis        string            `json:"analysis"`
	Archetype       string            `json:"archetype"`
	Composition     string            `json:"composition"`
	PlatformPrompts map[string]string `json:"platformPrompts"`
}

// Adapter 对外部生成式模型的调用编排。
// 文本管线带可选的 视觉→简报→文本 两段链；
// 图像管线带 策略师→合成 两段链，策略师失败时静默降级为模板提示词。
type Adapter struct {
	text     TextClient
	media    MediaClient
	registry *prompt.Registry
	models   Models
	sink     CostSink
}

// NewAdapter 创建适配器
func NewAdapter(text TextClient, media MediaClient, registry *prompt.Registry, models Models, sink CostSink) *Adapter {
	return &Adapter{
		text:     text,
		media:    media,
		registry: registry,
		models:   models,
		sink:     sink,
	}
}

// GenerateText 文本/视觉管线。
// 有输入图片时先调用视觉模型产出创意简报，简报并入原提示词后再走文本模型；
// 两段严格串行。视觉阶段首选模型失败后切换备用模型重试一次。
func (a *Adapter) GenerateText(ctx context.Context, req TextRequest) (*TextResult, error) {
	ctx, span := tracer.Start(ctx, "Adapter.GenerateText",
		trace.WithAttributes(attribute.String("request.type", req.RequestType)))
	defer span.End()

	user := req.User
	if len(req.ImageData) > 0 {
		brief, err := a.visionBrief(ctx, req.ImageData, req.ImageMIME)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		user = user + "\n\nCreative brief derived from the attached image:\n" + brief
	}

	modelName := a.models.Light
	if req.Heavy {
		modelName = a.models.Heavy
	}

	out, err := a.text.Generate(ctx, req.System, user, modelName)
	if err != nil {
		span.RecordError(err)
		metrics.ProviderCallsTotal.WithLabelValues("text", modelName, "error").Inc()
		return nil, err
	}
	metrics.ProviderCallsTotal.WithLabelValues("text", out.Model, "ok").Inc()
	return out, nil
}

// visionBrief 视觉阶段：描述图片并产出创意简报
func (a *Adapter) visionBrief(ctx context.Context, data []byte, mimeType string) (string, error) {
	instruction, err := a.registry.System(prompt.PromptVisionBriefV1)
	if err != nil {
		return "", err
	}

	parts := []MediaPart{
		{Data: data, MIMEType: mimeType},
		{Text: instruction},
	}

	out, err := tryModels(ctx, []string{a.models.Vision, a.models.VisionFallback},
		func(ctx context.Context, model string) (*TextResult, error) {
			res, err := a.media.GenerateText(ctx, model, "", parts)
			if err != nil {
				metrics.ProviderCallsTotal.WithLabelValues("vision", model, "error").Inc()
				return nil, err
			}
			metrics.ProviderCallsTotal.WithLabelValues("vision", model, "ok").Inc()
			return res, nil
		})
	if err != nil {
		return "", fmt.Errorf("vision brief failed: %w", err)
	}
	return out.Content, nil
}

// GenerateImage 简单图像管线：固定模板单次合成
func (a *Adapter) GenerateImage(ctx context.Context, req ImageRequest) (*ImageResult, error) {
	ctx, span := tracer.Start(ctx, "Adapter.GenerateImage")
	defer span.End()

	out, err := a.media.GenerateImage(ctx, a.models.ImageGen, req.Prompt)
	if err != nil {
		span.RecordError(err)
		metrics.ProviderCallsTotal.WithLabelValues("image", a.models.ImageGen, "error").Inc()
		return nil, err
	}
	metrics.ProviderCallsTotal.WithLabelValues("image", out.Model, "ok").Inc()

	a.recordCost(ctx, req.AccountID, req.RequestType, "gemini", out.Model, out.PromptTokens, out.CompletionTokens)
	return out, nil
}

// GenerateSmartImage 策略师图像管线：
// 策略师产出各平台提示词 → 选平台 → 加画幅与文字渲染约束 → 单次合成。
// 策略师失败或返回不可解析的 JSON 时降级为模板提示词，绝不向调用方传播。
// 合成调用只携带最终提示词，参考图不直接进入合成，避免原样复制。
func (a *Adapter) GenerateSmartImage(ctx context.Context, req SmartImageRequest) (*ImageResult, error) {
	ctx, span := tracer.Start(ctx, "Adapter.GenerateSmartImage")
	defer span.End()

	platformPrompt := a.strategistPrompt(ctx, req)
	finished := finishImagePrompt(platformPrompt, req.AspectRatio)

	out, err := a.media.GenerateImage(ctx, a.models.ImageGen, finished)
	if err != nil {
		span.RecordError(err)
		metrics.ProviderCallsTotal.WithLabelValues("image", a.models.ImageGen, "error").Inc()
		return nil, err
	}
	metrics.ProviderCallsTotal.WithLabelValues("image", out.Model, "ok").Inc()

	a.recordCost(ctx, req.AccountID, req.RequestType, "gemini", out.Model, out.PromptTokens, out.CompletionTokens)
	return out, nil
}

// strategistPrompt 策略师阶段；任何失败都降级为模板提示词
func (a *Adapter) strategistPrompt(ctx context.Context, req SmartImageRequest) string {
	strategy, err := a.runStrategist(ctx, req)
	if err != nil {
		logger.Warn(ctx, "thumbnail strategist degraded to template prompt", "error", err)
		return fallbackImagePrompt(req.Topic, req.Platform)
	}

	platform := matchPlatform(req.Platform)
	p, ok := strategy.PlatformPrompts[platform]
	if !ok || strings.TrimSpace(p) == "" {
		return fallbackImagePrompt(req.Topic, req.Platform)
	}
	return p
}

func (a *Adapter) runStrategist(ctx context.Context, req SmartImageRequest) (*ThumbnailStrategy, error) {
	system, err := a.registry.System(prompt.PromptThumbnailStrategistV1)
	if err != nil {
		return nil, err
	}

	parts := []MediaPart{{Text: fmt.Sprintf(
		"Topic: %s\nTarget platform: %s\nAspect ratio: %s",
		req.Topic, req.Platform, req.AspectRatio)}}
	if len(req.ReferenceData) > 0 {
		parts = append(parts, MediaPart{Data: req.ReferenceData, MIMEType: req.ReferenceMIME})
	}

	out, err := a.media.GenerateText(ctx, a.models.Strategist, system, parts)
	if err != nil {
		metrics.ProviderCallsTotal.WithLabelValues("strategist", a.models.Strategist, "error").Inc()
		return nil, fmt.Errorf("strategist call failed: %w", err)
	}
	metrics.ProviderCallsTotal.WithLabelValues("strategist", out.Model, "ok").Inc()

	jsonText := norm.ExtractJSONObject(out.Content)
	var strategy ThumbnailStrategy
	if err := json.Unmarshal([]byte(jsonText), &strategy); err != nil {
		return nil, fmt.Errorf("strategist returned unparseable JSON: %w", err)
	}
	if len(strategy.PlatformPrompts) == 0 {
		return nil, fmt.Errorf("strategist returned no platform prompts")
	}
	return &strategy, nil
}

// recordCost 异步尽力而为的成本遥测，失败不影响请求
func (a *Adapter) recordCost(ctx context.Context, accountID, requestType, providerName, model string, promptTokens, completionTokens int) {
	if a.sink == nil {
		return
	}
	a.sink.Record(ctx, CostSample{
		AccountID:        accountID,
		RequestType:      requestType,
		Provider:         providerName,
		Model:            model,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
	})
}

// 平台键有序表；子串匹配，未命中默认 YouTube
var platformKeys = []struct {
	key    string
	tokens []string
}{
	{"YouTube", []string{"youtube"}},
	{"Instagram", []string{"instagram"}},
	{"Twitter-X", []string{"twitter", "twitter-x"}},
	{"Facebook", []string{"facebook"}},
	{"LinkedIn", []string{"linkedin"}},
}

func matchPlatform(input string) string {
	in := strings.ToLower(strings.TrimSpace(input))
	if in == "x" {
		return "Twitter-X"
	}
	for _, p := range platformKeys {
		for _, token := range p.tokens {
			if strings.Contains(in, token) {
				return p.key
			}
		}
	}
	return "YouTube"
}

// 固定画幅到像素尺寸的映射
var aspectRatioPixels = map[string]string{
	"16:9": "1920x1080 pixels (16:9 landscape)",
	"9:16": "1080x1920 pixels (9:16 portrait)",
	"1:1":  "1080x1080 pixels (1:1 square)",
	"4:5":  "1080x1350 pixels (4:5 portrait)",
}

// finishImagePrompt 给平台提示词加画幅前缀和文字渲染约束后缀
func finishImagePrompt(platformPrompt, aspectRatio string) string {
	pixels, ok := aspectRatioPixels[strings.TrimSpace(aspectRatio)]
	if !ok {
		pixels = aspectRatioPixels["16:9"]
	}
	return fmt.Sprintf(
		"Generate an image at exactly %s.\n\n%s\n\nText rendering accuracy is critical: if you cannot render text perfectly, omit it.",
		pixels, platformPrompt)
}

// fallbackImagePrompt 策略师不可用时的通用模板提示词
func fallbackImagePrompt(topic, platform string) string {
	if strings.TrimSpace(platform) == "" {
		platform = "YouTube"
	}
	return fmt.Sprintf(
		"A bold, high-contrast %s thumbnail about %q. One dominant subject, dramatic lighting, vivid complementary colors, clean uncluttered background, composition readable at small sizes. No watermarks, no borders.",
		platform, topic)
}
