package dto

// AccountResponse 账户视图
type AccountResponse struct {
	ID          string        `json:"id"`
	Email       string        `json:"email,omitempty"`
	Name        string        `json:"name,omitempty"`
	Plan        string        `json:"plan"`
	Credits     int           `json:"credits"`
	CreditsUsed int           `json:"creditsUsed"`
	Brand       BrandResponse `json:"brand"`
}

// BrandResponse 品牌画像视图
type BrandResponse struct {
	Name     string `json:"name,omitempty"`
	Industry string `json:"industry,omitempty"`
	Tone     string `json:"tone,omitempty"`
	Audience string `json:"audience,omitempty"`
}
