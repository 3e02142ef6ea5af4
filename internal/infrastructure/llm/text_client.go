// Package llm 提供文本模型客户端实现
package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"sparkgen-api/internal/application/generation/provider"
)

// EinoTextClient 基于 Eino ChatModel 的 TextClient 实现
type EinoTextClient struct {
	factory *EinoFactory
}

// NewEinoTextClient 创建文本客户端
func NewEinoTextClient(factory *EinoFactory) *EinoTextClient {
	return &EinoTextClient{factory: factory}
}

// Generate 单轮生成
func (c *EinoTextClient) Generate(ctx context.Context, system, user, modelName string) (*provider.TextResult, error) {
	chatModel, err := c.factory.Default(ctx)
	if err != nil {
		return nil, err
	}

	msgs := make([]*schema.Message, 0, 2)
	if system != "" {
		msgs = append(msgs, schema.SystemMessage(system))
	}
	msgs = append(msgs, schema.UserMessage(user))

	var opts []model.Option
	if modelName != "" {
		opts = append(opts, model.WithModel(modelName))
	}

	out, err := chatModel.Generate(ctx, msgs, opts...)
	if err != nil {
		return nil, fmt.Errorf("text generation failed: %w", err)
	}
	if out == nil {
		return nil, fmt.Errorf("empty llm response")
	}

	res := &provider.TextResult{
		Content: out.Content,
		Model:   modelName,
	}
	if out.ResponseMeta != nil && out.ResponseMeta.Usage != nil {
		res.PromptTokens = out.ResponseMeta.Usage.PromptTokens
		res.CompletionTokens = out.ResponseMeta.Usage.CompletionTokens
	}
	return res, nil
}
