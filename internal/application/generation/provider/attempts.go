package provider

import (
	"context"
	"fmt"
)

// tryModels 按给定顺序依次尝试各模型，返回第一个成功结果。
// 全部失败时返回最后一个错误。
func tryModels[T any](ctx context.Context, models []string, call func(ctx context.Context, model string) (T, error)) (T, error) {
	var zero T
	var lastErr error
	for _, m := range models {
		if m == "" {
			continue
		}
		out, err := call(ctx, m)
		if err == nil {
			return out, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no models configured")
	}
	return zero, lastErr
}
