// Package gemini 提供视觉与图像生成模型客户端实现
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"sparkgen-api/internal/application/generation/provider"
)

// Client Gemini API 客户端，承担视觉理解与图像合成两类调用
type Client struct {
	client *genai.Client
}

// NewClient 创建 Gemini 客户端
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Client{client: c}, nil
}

// GenerateText 多模态输入，文本输出
func (c *Client) GenerateText(ctx context.Context, model, system string, parts []provider.MediaPart) (*provider.TextResult, error) {
	gparts := make([]*genai.Part, 0, len(parts))
	for _, p := range parts {
		if len(p.Data) > 0 {
			gparts = append(gparts, genai.NewPartFromBytes(p.Data, p.MIMEType))
			continue
		}
		if p.Text != "" {
			gparts = append(gparts, genai.NewPartFromText(p.Text))
		}
	}
	if len(gparts) == 0 {
		return nil, fmt.Errorf("no input parts")
	}

	cfg := &genai.GenerateContentConfig{}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	contents := []*genai.Content{genai.NewContentFromParts(gparts, genai.RoleUser)}
	resp, err := c.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini API error: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	var content string
	if resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if part.Text != "" {
				content += part.Text
			}
		}
	}

	res := &provider.TextResult{Content: content, Model: model}
	fillUsage(resp, &res.PromptTokens, &res.CompletionTokens)
	return res, nil
}

// GenerateImage 纯文本提示词，图像输出。
// 取响应中第一个内联图像；没有则返回 provider.ErrNoInlineImage。
func (c *Client) GenerateImage(ctx context.Context, model, prompt string) (*provider.ImageResult, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}

	resp, err := c.client.Models.GenerateContent(ctx, model, genai.Text(prompt), cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini API error: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, provider.ErrNoInlineImage
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				res := &provider.ImageResult{
					Data:     part.InlineData.Data,
					MIMEType: part.InlineData.MIMEType,
					Model:    model,
				}
				fillUsage(resp, &res.PromptTokens, &res.CompletionTokens)
				return res, nil
			}
		}
	}

	return nil, provider.ErrNoInlineImage
}

// fillUsage 提取 token 用量
func fillUsage(resp *genai.GenerateContentResponse, prompt, completion *int) {
	if resp.UsageMetadata == nil {
		return
	}
	*prompt = int(resp.UsageMetadata.PromptTokenCount)
	*completion = int(resp.UsageMetadata.CandidatesTokenCount)
}
