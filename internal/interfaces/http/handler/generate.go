// Package handler 提供 HTTP 请求处理器
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"sparkgen-api/internal/application/generation"
	"sparkgen-api/internal/domain/entity"
	"sparkgen-api/internal/interfaces/http/dto"
	"sparkgen-api/internal/interfaces/http/middleware"
	apperrors "sparkgen-api/pkg/errors"
	"sparkgen-api/pkg/logger"
)

// DefaultRequestCeiling 平台级单请求墙钟上限
const DefaultRequestCeiling = 540 * time.Second

// Generator 生成编排入口
type Generator interface {
	Generate(ctx context.Context, ident entity.Identity, typeStr string, payload json.RawMessage) (*generation.Result, error)
}

// GenerateHandler 生成请求处理器
type GenerateHandler struct {
	service Generator
	ceiling time.Duration
}

// NewGenerateHandler 创建生成处理器
func NewGenerateHandler(service Generator, ceiling time.Duration) *GenerateHandler {
	if ceiling <= 0 {
		ceiling = DefaultRequestCeiling
	}
	return &GenerateHandler{
		service: service,
		ceiling: ceiling,
	}
}

// Generate 处理一次生成请求
// @Summary 内容生成
// @Description 按类型生成内容并扣减信用点
// @Tags Generation
// @Accept json
// @Produce json
// @Router /v1/generate [post]
func (h *GenerateHandler) Generate(c *gin.Context) {
	ident, ok := middleware.IdentityFromContext(c)
	if !ok {
		dto.RespondError(c, apperrors.ErrTokenMissing)
		return
	}

	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.RespondError(c, apperrors.ErrMalformedPayload.WithDetail(err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.ceiling)
	defer cancel()

	start := time.Now()
	res, err := h.service.Generate(ctx, ident, req.Type, req.Payload)
	if err != nil {
		logger.Warn(ctx, "generation failed",
			"type", req.Type,
			"uid", ident.UID,
			"elapsed_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		dto.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.GenerateResponse{
		Result:           res.Result,
		CreditsDeducted:  res.CreditsDeducted,
		RemainingCredits: res.RemainingCredits,
	})
}
