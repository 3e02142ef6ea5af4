// Package generation 实现内容生成编排核心
package generation

import (
	apperrors "sparkgen-api/pkg/errors"
)

// 固定成本表。流程类子调用计 0 点：它们在引导流程的入口处整体计费。
var costTable = map[Type]int{
	TypeCaption:     1,
	TypeIdea:        1,
	TypeTweet:       1,
	TypePost:        1, // × numVariations
	TypeVideoScript: 1,

	TypeImage:      2,
	TypeSmartImage: 1,

	TypeRoadmapBatch: 0,
	TypeFinalGuide:   0,
	TypeModuleSteps:  0,
	TypeChecklist:    0,
	TypePillars:      0,

	TypeGuideReset: 10,
}

// 结构化/策略类型走大模型档位
var heavyTypes = map[Type]bool{
	TypeRoadmapBatch: true,
	TypeFinalGuide:   true,
	TypeModuleSteps:  true,
	TypeChecklist:    true,
	TypePillars:      true,
}

// Resolve 解析请求类型的成本并校验输入规则。
// 校验失败发生在任何台账变更之前。
func Resolve(env *Envelope) (requiredCredits int, err error) {
	cost, ok := costTable[env.Type]
	if !ok {
		return 0, apperrors.ErrUnknownRequestType.WithDetail(string(env.Type))
	}

	switch env.Type {
	case TypePost:
		n := env.Text.Options.NumVariations
		if n < 1 {
			n = 1
		}
		cost = n * cost
		if err := requireTopicOrImage(env.Text.Topic, env.Text.Image); err != nil {
			return 0, err
		}
	case TypeCaption, TypeIdea, TypeTweet, TypeVideoScript:
		if err := requireTopicOrImage(env.Text.Topic, env.Text.Image); err != nil {
			return 0, err
		}
	case TypeImage:
		if err := requireTopicOrImage(env.Image.Topic, ""); err != nil {
			return 0, err
		}
	case TypeSmartImage:
		if err := requireTopicOrImage(env.SmartImage.Topic, env.SmartImage.ReferenceImage); err != nil {
			return 0, err
		}
	default:
		// 流程类请求携带结构化上下文，payForGuideReset 无载荷，均豁免输入校验
	}

	return cost, nil
}

// IsHeavy 该类型是否使用大模型档位
func IsHeavy(t Type) bool {
	return heavyTypes[t]
}

// Cost 返回类型的单位成本；未知类型计 0
func Cost(t Type) int {
	return costTable[t]
}

// requireTopicOrImage 校验 topic 或 image 至少一项非空
func requireTopicOrImage(topic, image string) error {
	if topic == "" && image == "" {
		return apperrors.ErrMissingInput.WithDetail("either topic or image must be provided")
	}
	return nil
}
