// Package provider 封装对外部生成式模型的调用编排
package provider

import (
	"context"
	"errors"
)

// TextResult 文本模型调用结果
type TextResult struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
}

// ImageResult 图像模型调用结果
type ImageResult struct {
	Data             []byte
	MIMEType         string
	Model            string
	PromptTokens     int
	CompletionTokens int
}

// MediaPart 多模态输入片段：文本或内联二进制数据二选一
type MediaPart struct {
	Text     string
	Data     []byte
	MIMEType string
}

// TextClient 快速文本模型客户端（OpenAI 协议族）
type TextClient interface {
	// Generate 单轮生成；modelName 为空时使用客户端默认模型
	Generate(ctx context.Context, system, user, modelName string) (*TextResult, error)
}

// MediaClient 视觉/图像模型客户端
type MediaClient interface {
	// GenerateText 多模态输入，文本输出
	GenerateText(ctx context.Context, model, system string, parts []MediaPart) (*TextResult, error)

	// GenerateImage 纯文本提示词，图像输出。
	// 响应中无内联图像时返回 ErrNoInlineImage。
	GenerateImage(ctx context.Context, model, prompt string) (*ImageResult, error)
}

// ErrNoInlineImage 图像调用完成但响应不含任何内联图像
var ErrNoInlineImage = errors.New("response contains no inline image part")

// CostSample 单次模型调用的成本采样，交给遥测落库
type CostSample struct {
	AccountID        string
	RequestType      string
	Provider         string
	Model            string
	PromptTokens     int
	CompletionTokens int
}

// CostSink 成本遥测接收端。实现必须自行保证尽力而为语义：
// 记录失败不得影响调用方。
type CostSink interface {
	Record(ctx context.Context, sample CostSample)
}
