// Package entity 定义领域实体
package entity

import (
	"time"
)

// AccountPlan 账户套餐
type AccountPlan string

const (
	AccountPlanFree AccountPlan = "free"
	AccountPlanPro  AccountPlan = "pro"
)

// BrandProfile 品牌上下文，在引导流程中填写（由外部界面维护）
type BrandProfile struct {
	Name     string `json:"name,omitempty"`
	Industry string `json:"industry,omitempty"`
	Tone     string `json:"tone,omitempty"`
	Audience string `json:"audience,omitempty"`
}

// Account 账户实体，按身份提供方的 uid 作主键。
// 余额只允许 CreditLedger 在事务内变更。
type Account struct {
	ID          string       `json:"id" gorm:"primaryKey;column:id"`
	Email       string       `json:"email"`
	Name        string       `json:"name"`
	Plan        AccountPlan  `json:"plan"`
	Credits     int          `json:"credits"`
	CreditsUsed int          `json:"credits_used"`
	Banned      bool         `json:"banned"`
	Brand       BrandProfile `json:"brand" gorm:"embedded;embeddedPrefix:brand_"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// TableName GORM 表名
func (Account) TableName() string {
	return "accounts"
}

// NewAccount 以初始余额惰性建号
func NewAccount(uid, email, name string, startingCredits int) *Account {
	now := time.Now()
	return &Account{
		ID:        uid,
		Email:     email,
		Name:      name,
		Plan:      AccountPlanFree,
		Credits:   startingCredits,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CanAfford 检查余额是否足以支付
func (a *Account) CanAfford(cost int) bool {
	return a.Credits >= cost
}
