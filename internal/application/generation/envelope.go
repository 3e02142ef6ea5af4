// Package generation 实现内容生成编排核心
package generation

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"strings"

	apperrors "sparkgen-api/pkg/errors"
)

// Type 生成请求类型
type Type string

// 支持的请求类型
const (
	TypeCaption     Type = "caption"
	TypeIdea        Type = "idea"
	TypeTweet       Type = "tweet"
	TypePost        Type = "post"
	TypeVideoScript Type = "videoScript"

	TypeImage      Type = "image"
	TypeSmartImage Type = "smartImage"

	TypeRoadmapBatch Type = "generateRoadmapBatch"
	TypeFinalGuide   Type = "finalGuide"
	TypeModuleSteps  Type = "generateModuleSteps"
	TypeChecklist    Type = "generateChecklist"
	TypePillars      Type = "generatePillars"

	TypeGuideReset Type = "payForGuideReset"
)

// Options 通用生成选项
type Options struct {
	NumVariations   int      `json:"numVariations,omitempty"`
	WordCount       int      `json:"wordCount,omitempty"`
	ToneTags        []string `json:"toneTags,omitempty"`
	Language        string   `json:"language,omitempty"`
	Length          string   `json:"length,omitempty"`
	Platform        string   `json:"platform,omitempty"`
	IncludeEmojis   bool     `json:"includeEmojis,omitempty"`
	IncludeHashtags bool     `json:"includeHashtags,omitempty"`
	VideoLength     string   `json:"videoLength,omitempty"`
	NoBrandContext  bool     `json:"noBrandContext,omitempty"`
}

// TextPayload 文本类请求载荷（caption/idea/tweet/post/videoScript）
type TextPayload struct {
	Topic         string  `json:"topic,omitempty"`
	Image         string  `json:"image,omitempty"` // base64 编码
	ImageMIMEType string  `json:"imageMimeType,omitempty"`
	Options       Options `json:"options,omitempty"`

	// 解析阶段解码得到，非法 base64 在任何计费之前拒绝
	ImageData []byte `json:"-"`
	ImageMIME string `json:"-"`
}

// VerifiedTool 流程类请求允许引用的已验证工具
type VerifiedTool struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// FlowPayload 流程类请求载荷（roadmap/guide/checklist/pillars）。
// 上下文是结构化数据而非自由文本，因此不受 topic/image 必填约束。
type FlowPayload struct {
	Goal          string         `json:"goal,omitempty"`
	Niche         string         `json:"niche,omitempty"`
	BatchIndex    int            `json:"batchIndex,omitempty"`
	ModuleTitle   string         `json:"moduleTitle,omitempty"`
	Steps         []string       `json:"steps,omitempty"`
	VerifiedTools []VerifiedTool `json:"verifiedTools,omitempty"`
	Options       Options        `json:"options,omitempty"`
}

// ImagePayload 简单图像请求载荷
type ImagePayload struct {
	Topic   string  `json:"topic,omitempty"`
	Options Options `json:"options,omitempty"`
}

// SmartImagePayload 策略师图像请求载荷
type SmartImagePayload struct {
	Topic             string `json:"topic,omitempty"`
	Platform          string `json:"platform,omitempty"`
	AspectRatio       string `json:"aspectRatio,omitempty"`
	ReferenceImage    string `json:"referenceImage,omitempty"` // base64 编码
	ReferenceMIMEType string `json:"referenceMimeType,omitempty"`

	// 解析阶段解码得到，非法 base64 在任何计费之前拒绝
	ReferenceData []byte `json:"-"`
	ReferenceMIME string `json:"-"`
}

// Envelope 按类型展开的请求信封。每种类型只携带自己的载荷变体。
type Envelope struct {
	Type       Type
	Text       *TextPayload
	Flow       *FlowPayload
	Image      *ImagePayload
	SmartImage *SmartImagePayload
}

// IsFlow 是否为流程类请求
func (e *Envelope) IsFlow() bool {
	return e.Flow != nil
}

// ParseEnvelope 解析请求载荷为类型化信封。
// 载荷可能被包装成 {"data": {...}}，透明拆包。
// 未知字段在边界直接拒绝，不做运行期字段探测。
func ParseEnvelope(typeStr string, raw json.RawMessage) (*Envelope, error) {
	t := Type(strings.TrimSpace(typeStr))
	if t == "" {
		return nil, apperrors.ErrUnknownRequestType.WithDetail("type is empty")
	}

	payload := unwrapData(raw)

	env := &Envelope{Type: t}
	var err error
	switch t {
	case TypeCaption, TypeIdea, TypeTweet, TypePost, TypeVideoScript:
		env.Text = &TextPayload{}
		err = strictUnmarshal(payload, env.Text)
	case TypeRoadmapBatch, TypeFinalGuide, TypeModuleSteps, TypeChecklist, TypePillars:
		env.Flow = &FlowPayload{}
		err = strictUnmarshal(payload, env.Flow)
	case TypeImage:
		env.Image = &ImagePayload{}
		err = strictUnmarshal(payload, env.Image)
	case TypeSmartImage:
		env.SmartImage = &SmartImagePayload{}
		err = strictUnmarshal(payload, env.SmartImage)
	case TypeGuideReset:
		// 无载荷
	default:
		return nil, apperrors.ErrUnknownRequestType.WithDetail(string(t))
	}

	if err != nil {
		return nil, apperrors.ErrMalformedPayload.WithDetail(err.Error())
	}

	// 图像字节在解析边界解码，确保载荷类错误先于任何台账变更暴露
	if env.Text != nil && env.Text.Image != "" {
		data, mimeType, derr := decodeImage(env.Text.Image, env.Text.ImageMIMEType)
		if derr != nil {
			return nil, apperrors.ErrMalformedPayload.WithDetail("image is not valid base64")
		}
		env.Text.ImageData = data
		env.Text.ImageMIME = mimeType
	}
	if env.SmartImage != nil && env.SmartImage.ReferenceImage != "" {
		data, mimeType, derr := decodeImage(env.SmartImage.ReferenceImage, env.SmartImage.ReferenceMIMEType)
		if derr != nil {
			return nil, apperrors.ErrMalformedPayload.WithDetail("referenceImage is not valid base64")
		}
		env.SmartImage.ReferenceData = data
		env.SmartImage.ReferenceMIME = mimeType
	}
	return env, nil
}

// decodeImage 解码 base64 图像，兼容 data URI 前缀
func decodeImage(encoded, mimeType string) ([]byte, string, error) {
	if idx := strings.Index(encoded, ";base64,"); idx >= 0 {
		if mimeType == "" && strings.HasPrefix(encoded, "data:") {
			mimeType = encoded[len("data:"):idx]
		}
		encoded = encoded[idx+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", err
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return data, mimeType, nil
}

// unwrapData 拆开 {"data": {...}} 包装
func unwrapData(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("{}")
	}
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapper); err == nil && len(wrapper.Data) > 0 &&
		!bytes.Equal(wrapper.Data, []byte("null")) {
		return wrapper.Data
	}
	return raw
}

// strictUnmarshal 拒绝未知字段的解码
func strictUnmarshal(raw json.RawMessage, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
