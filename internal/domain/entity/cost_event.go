// Package entity 定义领域实体
package entity

import (
	"time"
)

// CostEvent 单次模型调用的成本遥测记录。
// 仅追加写入，失败不影响请求本身。
type CostEvent struct {
	ID               string    `json:"id" gorm:"primaryKey;column:id"`
	AccountID        string    `json:"account_id"`
	RequestType      string    `json:"request_type"`
	Provider         string    `json:"provider"`
	Model            string    `json:"model"`
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	CostUSD          float64   `json:"cost_usd"`
	CreatedAt        time.Time `json:"created_at"`
}

// TableName GORM 表名
func (CostEvent) TableName() string {
	return "generation_cost_events"
}
