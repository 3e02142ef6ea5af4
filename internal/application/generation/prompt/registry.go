// Package prompt 管理生成提示词模板与装配
package prompt

import (
	"embed"
	"fmt"
	"strings"
	"sync"
)

//go:embed templates/*.txt
var templatesFS embed.FS

type PromptID string

const (
	PromptCaptionV1             PromptID = "caption_v1"
	PromptIdeaV1                PromptID = "idea_v1"
	PromptTweetV1               PromptID = "tweet_v1"
	PromptPostV1                PromptID = "post_v1"
	PromptVideoScriptV1         PromptID = "video_script_v1"
	PromptFlowBatchV1           PromptID = "flow_batch_v1"
	PromptImageV1               PromptID = "image_v1"
	PromptThumbnailStrategistV1 PromptID = "thumbnail_strategist_v1"
	PromptVisionBriefV1         PromptID = "vision_brief_v1"
)

// Registry 缓存嵌入式系统提示词，首次读取后常驻内存
type Registry struct {
	mu    sync.RWMutex
	cache map[PromptID]string
}

func NewRegistry() *Registry {
	return &Registry{
		cache: make(map[PromptID]string),
	}
}

// System 返回指定模板的系统提示词文本
func (r *Registry) System(id PromptID) (string, error) {
	if r == nil {
		return "", fmt.Errorf("prompt registry is nil")
	}

	r.mu.RLock()
	if text, ok := r.cache[id]; ok {
		r.mu.RUnlock()
		return text, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if text, ok := r.cache[id]; ok {
		return text, nil
	}

	path, err := resolvePromptFile(id)
	if err != nil {
		return "", err
	}
	text, err := readEmbeddedText(path)
	if err != nil {
		return "", err
	}
	r.cache[id] = text
	return text, nil
}

func resolvePromptFile(id PromptID) (string, error) {
	switch id {
	case PromptCaptionV1:
		return "templates/caption_v1.system.txt", nil
	case PromptIdeaV1:
		return "templates/idea_v1.system.txt", nil
	case PromptTweetV1:
		return "templates/tweet_v1.system.txt", nil
	case PromptPostV1:
		return "templates/post_v1.system.txt", nil
	case PromptVideoScriptV1:
		return "templates/video_script_v1.system.txt", nil
	case PromptFlowBatchV1:
		return "templates/flow_batch_v1.system.txt", nil
	case PromptImageV1:
		return "templates/image_v1.system.txt", nil
	case PromptThumbnailStrategistV1:
		return "templates/thumbnail_strategist_v1.system.txt", nil
	case PromptVisionBriefV1:
		return "templates/vision_brief_v1.system.txt", nil
	default:
		return "", fmt.Errorf("unknown prompt id: %s", id)
	}
}

func readEmbeddedText(path string) (string, error) {
	b, err := templatesFS.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
