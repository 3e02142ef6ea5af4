// Package telemetry 实现成本遥测落库与外发
package telemetry

import "strings"

// modelPrice 每百万 token 的美元单价
type modelPrice struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// 已知模型价目表；未收录模型计 0 成本但仍记录 token 数
var priceTable = map[string]modelPrice{
	"gemini-2.0-flash":                     {InputPerMillion: 0.10, OutputPerMillion: 0.40},
	"gemini-1.5-flash":                     {InputPerMillion: 0.075, OutputPerMillion: 0.30},
	"gemini-2.0-flash-exp-image-generation": {InputPerMillion: 0.10, OutputPerMillion: 30.00},
	"llama-3.1-8b-instant":                 {InputPerMillion: 0.05, OutputPerMillion: 0.08},
	"llama-3.3-70b-versatile":              {InputPerMillion: 0.59, OutputPerMillion: 0.79},
}

// EstimateUSD 估算一次调用的美元成本
func EstimateUSD(model string, promptTokens, completionTokens int) float64 {
	price, ok := priceTable[normalizeModel(model)]
	if !ok {
		return 0
	}
	in := float64(promptTokens) / 1_000_000 * price.InputPerMillion
	out := float64(completionTokens) / 1_000_000 * price.OutputPerMillion
	return in + out
}

func normalizeModel(model string) string {
	return strings.ToLower(strings.TrimSpace(model))
}
