package generation

import (
	"fmt"
	"strings"

	"sparkgen-api/internal/domain/entity"
)

// buildBrandBlock 渲染品牌上下文块；调用方退出个性化时返回空
func buildBrandBlock(brand entity.BrandProfile, opts Options) string {
	if opts.NoBrandContext {
		return ""
	}

	var lines []string
	if strings.TrimSpace(brand.Name) != "" {
		lines = append(lines, "Brand: "+strings.TrimSpace(brand.Name))
	}
	if strings.TrimSpace(brand.Industry) != "" {
		lines = append(lines, "Industry: "+strings.TrimSpace(brand.Industry))
	}
	if strings.TrimSpace(brand.Tone) != "" {
		lines = append(lines, "Brand voice: "+strings.TrimSpace(brand.Tone))
	}
	if strings.TrimSpace(brand.Audience) != "" {
		lines = append(lines, "Target audience: "+strings.TrimSpace(brand.Audience))
	}
	if len(lines) == 0 {
		return ""
	}

	return "Brand context (use it to shape voice and relevance):\n" + strings.Join(lines, "\n")
}

// buildToneLine 渲染语气指令；未给出或退出个性化时回退为中性专业
func buildToneLine(opts Options) string {
	if opts.NoBrandContext || len(opts.ToneTags) == 0 {
		return "Tone: neutral, professional."
	}

	tags := make([]string, 0, len(opts.ToneTags))
	for _, t := range opts.ToneTags {
		if s := strings.TrimSpace(t); s != "" {
			tags = append(tags, s)
		}
	}
	if len(tags) == 0 {
		return "Tone: neutral, professional."
	}
	return "Tone: " + strings.Join(tags, ", ") + "."
}

// buildAdvancedBlock 渲染按类型通用的高级指令
func buildAdvancedBlock(opts Options) string {
	var lines []string
	if opts.Length != "" {
		lines = append(lines, "Length: "+opts.Length+".")
	}
	if opts.Language != "" {
		lines = append(lines, "Write in "+opts.Language+".")
	}
	if opts.Platform != "" {
		lines = append(lines, "Target platform: "+opts.Platform+".")
	}
	if opts.IncludeEmojis {
		lines = append(lines, "Include fitting emojis.")
	} else {
		lines = append(lines, "Do not use emojis.")
	}
	if opts.IncludeHashtags {
		lines = append(lines, "Include relevant hashtags.")
	} else {
		lines = append(lines, "Do not include hashtags.")
	}
	// emoji/hashtag 立场总是显式声明，块恒非空
	return "Instructions:\n" + strings.Join(lines, "\n")
}

// buildToolAllowListBlock 渲染已验证工具白名单块。
// 空白名单也要显式声明，模板要求模型在该情形下不得引用任何工具。
func buildToolAllowListBlock(tools []VerifiedTool) string {
	var b strings.Builder
	b.WriteString("Verified tool allow-list (reference ONLY these, by exact name):\n")
	has := false
	for i := range tools {
		t := tools[i]
		if strings.TrimSpace(t.Name) == "" {
			continue
		}
		has = true
		b.WriteString("- ")
		b.WriteString(strings.TrimSpace(t.Name))
		if strings.TrimSpace(t.URL) != "" {
			b.WriteString(" (")
			b.WriteString(strings.TrimSpace(t.URL))
			b.WriteString(")")
		}
		b.WriteString("\n")
	}
	if !has {
		return "Verified tool allow-list is EMPTY: do not reference any tool by name."
	}
	return strings.TrimSpace(b.String())
}

// buildImageContextLine 输入图片存在时追加的主上下文指令
func buildImageContextLine() string {
	return "An image is attached. Treat the image as the PRIMARY context for this request; the topic text, if any, is secondary."
}

// buildWordCountBlock 推特字数硬约束
func buildWordCountBlock(wordCount int) string {
	if wordCount <= 0 {
		wordCount = 20
	}
	return fmt.Sprintf("Target word count: %d words. Acceptable range: %d-%d words.", wordCount, wordCount-3, wordCount+3)
}

// videoBeats 按视频长度档位返回三段结构的节拍数
func videoBeats(videoLength string) (intro, main, outro int) {
	switch strings.ToLower(strings.TrimSpace(videoLength)) {
	case "long":
		return 3, 8, 3
	case "medium":
		return 2, 5, 2
	default:
		return 1, 3, 1
	}
}

// flowPersona 流程类请求的多智能体人设
func flowPersona(t Type) string {
	switch t {
	case TypeRoadmapBatch:
		return "Systems Engineer — you design step sequences that compound, where every step unlocks the next"
	case TypeFinalGuide:
		return "Viral Engineer — you turn plans into content angles with maximum shareability"
	case TypeModuleSteps:
		return "Execution Coach — you break modules into actions a beginner finishes today"
	case TypeChecklist:
		return "Operations Auditor — you catch the missing steps everyone else forgets"
	case TypePillars:
		return "Brand Architect — you define the few content pillars a brand can own for years"
	default:
		return "Content Strategist"
	}
}
