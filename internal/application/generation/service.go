package generation

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"sparkgen-api/internal/application/generation/norm"
	"sparkgen-api/internal/application/generation/provider"
	"sparkgen-api/internal/application/ledger"
	"sparkgen-api/internal/domain/entity"
	apperrors "sparkgen-api/pkg/errors"
	"sparkgen-api/pkg/metrics"
)

var tracer = otel.Tracer("generation")

// Result 单次生成的响应。
// RemainingCredits 仅在本次请求实际计费时回填；零成本类型不读台账。
type Result struct {
	Result           string
	CreditsDeducted  int
	RemainingCredits *int
}

// Service 内容生成编排：
// 路由 → 计费 → 提示词装配 → 模型调用 → 归一化。
// 每次调用严格请求作用域内串行，除台账外不持有跨请求状态。
type Service struct {
	ledger    *ledger.Ledger
	assembler *Assembler
	adapter   *provider.Adapter
}

// NewService 创建编排服务
func NewService(l *ledger.Ledger, assembler *Assembler, adapter *provider.Adapter) *Service {
	return &Service{
		ledger:    l,
		assembler: assembler,
		adapter:   adapter,
	}
}

// Generate 处理一次生成请求。
// 校验失败发生在任何台账变更之前；台账失败发生在任何模型调用之前；
// 扣费成功后模型调用失败不回冲。
func (s *Service) Generate(ctx context.Context, ident entity.Identity, typeStr string, payload json.RawMessage) (*Result, error) {
	ctx, span := tracer.Start(ctx, "Service.Generate",
		trace.WithAttributes(attribute.String("request.type", typeStr)))
	defer span.End()

	start := time.Now()
	res, err := s.generate(ctx, ident, typeStr, payload)

	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
	}
	metrics.GenerationRequestsTotal.WithLabelValues(typeStr, status).Inc()
	metrics.GenerationDuration.WithLabelValues(typeStr).Observe(time.Since(start).Seconds())
	return res, err
}

func (s *Service) generate(ctx context.Context, ident entity.Identity, typeStr string, payload json.RawMessage) (*Result, error) {
	env, err := ParseEnvelope(typeStr, payload)
	if err != nil {
		return nil, err
	}

	cost, err := Resolve(env)
	if err != nil {
		return nil, err
	}

	res := &Result{CreditsDeducted: cost}
	if cost > 0 {
		remaining, err := s.charge(ctx, ident, cost)
		if err != nil {
			return nil, err
		}
		res.RemainingCredits = &remaining
		metrics.CreditsChargedTotal.WithLabelValues(string(env.Type)).Add(float64(cost))
	}

	// 付费重置是纯计费操作，扣费成功即完成，不触达任何模型
	if env.Type == TypeGuideReset {
		res.Result = "ok"
		return res, nil
	}

	switch env.Type {
	case TypeImage:
		err = s.generateImage(ctx, env, ident, res)
	case TypeSmartImage:
		err = s.generateSmartImage(ctx, env, ident, res)
	default:
		err = s.generateText(ctx, env, ident, res)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) charge(ctx context.Context, ident entity.Identity, cost int) (int, error) {
	remaining, err := s.ledger.ChargeOrReject(ctx, ident, cost)
	if err != nil {
		var insufficient ledger.InsufficientCreditsError
		if errors.As(err, &insufficient) {
			return 0, apperrors.ErrInsufficientCredits.WithDetail(
				fmt.Sprintf("needed %d credits, have %d", insufficient.Needed, insufficient.Have))
		}
		return 0, err
	}
	return remaining, nil
}

func (s *Service) generateText(ctx context.Context, env *Envelope, ident entity.Identity, res *Result) error {
	account, err := s.lookupAccount(ctx, ident)
	if err != nil {
		return err
	}

	p, err := s.assembler.Build(env, account)
	if err != nil {
		return apperrors.ErrProviderFailure.WithError(err)
	}

	req := provider.TextRequest{
		System:      p.System,
		User:        p.User,
		Heavy:       IsHeavy(env.Type),
		AccountID:   ident.UID,
		RequestType: string(env.Type),
	}
	if env.Text != nil && len(env.Text.ImageData) > 0 {
		req.ImageData = env.Text.ImageData
		req.ImageMIME = env.Text.ImageMIME
	}

	out, err := s.adapter.GenerateText(ctx, req)
	if err != nil {
		return apperrors.ErrProviderFailure.WithError(err)
	}

	res.Result = norm.StripCodeFence(out.Content)
	return nil
}

func (s *Service) generateImage(ctx context.Context, env *Envelope, ident entity.Identity, res *Result) error {
	account, err := s.lookupAccount(ctx, ident)
	if err != nil {
		return err
	}

	p, err := s.assembler.Build(env, account)
	if err != nil {
		return apperrors.ErrProviderFailure.WithError(err)
	}

	out, err := s.adapter.GenerateImage(ctx, provider.ImageRequest{
		Prompt:      p.System + "\n\n" + p.User,
		AccountID:   ident.UID,
		RequestType: string(env.Type),
	})
	if err != nil {
		return wrapImageError(err)
	}

	res.Result = imageDataURI(out)
	return nil
}

func (s *Service) generateSmartImage(ctx context.Context, env *Envelope, ident entity.Identity, res *Result) error {
	req := provider.SmartImageRequest{
		Topic:       env.SmartImage.Topic,
		Platform:    env.SmartImage.Platform,
		AspectRatio: env.SmartImage.AspectRatio,
		AccountID:   ident.UID,
		RequestType: string(env.Type),
	}
	if len(env.SmartImage.ReferenceData) > 0 {
		req.ReferenceData = env.SmartImage.ReferenceData
		req.ReferenceMIME = env.SmartImage.ReferenceMIME
	}

	out, err := s.adapter.GenerateSmartImage(ctx, req)
	if err != nil {
		return wrapImageError(err)
	}

	res.Result = imageDataURI(out)
	return nil
}

func wrapImageError(err error) error {
	if errors.Is(err, provider.ErrNoInlineImage) {
		return apperrors.ErrNoImageReturned
	}
	return apperrors.ErrProviderFailure.WithError(err)
}

func imageDataURI(out *provider.ImageResult) string {
	mimeType := out.MIMEType
	if mimeType == "" {
		mimeType = "image/png"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(out.Data)
}

// lookupAccount 读取生成分支所需的账户视图；smartImage 不依赖账户上下文，不走此路径
func (s *Service) lookupAccount(ctx context.Context, ident entity.Identity) (*entity.Account, error) {
	account, err := s.ledger.GetAccount(ctx, ident)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "account lookup failed")
	}
	return account, nil
}
