// Package entity 定义领域实体
package entity

// Identity 通过身份令牌验证得到的调用方身份
type Identity struct {
	UID   string `json:"uid"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}
