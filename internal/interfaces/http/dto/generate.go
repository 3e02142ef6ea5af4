package dto

import "encoding/json"

// GenerateRequest 生成请求体。payload 可能被包装成 {"data": {...}}，
// 拆包在应用层完成。
type GenerateRequest struct {
	Type    string          `json:"type" binding:"required"`
	Payload json.RawMessage `json:"payload"`
}

// GenerateResponse 生成成功响应
type GenerateResponse struct {
	Result           string `json:"result"`
	CreditsDeducted  int    `json:"creditsDeducted"`
	RemainingCredits *int   `json:"remainingCredits,omitempty"`
}
