package generation

import (
	"fmt"
	"strings"

	"sparkgen-api/internal/application/generation/prompt"
	"sparkgen-api/internal/domain/entity"
)

// Prompt 装配完成的提示词
type Prompt struct {
	System string
	User   string
}

// Assembler 把类型化信封和账户上下文装配成完整提示词
type Assembler struct {
	registry *prompt.Registry
}

func NewAssembler(registry *prompt.Registry) *Assembler {
	return &Assembler{registry: registry}
}

// Build 按请求类型渲染提示词。
// 品牌上下文、语气回退、高级指令和输出契约都在这里拼装完成，
// 下游 Provider 只负责把字符串送给模型。
func (a *Assembler) Build(env *Envelope, account *entity.Account) (Prompt, error) {
	switch env.Type {
	case TypeCaption:
		return a.buildText(prompt.PromptCaptionV1, env.Text, account)
	case TypeIdea:
		return a.buildText(prompt.PromptIdeaV1, env.Text, account)
	case TypeTweet:
		return a.buildTweet(env.Text, account)
	case TypePost:
		return a.buildPost(env.Text, account)
	case TypeVideoScript:
		return a.buildVideoScript(env.Text, account)
	case TypeRoadmapBatch, TypeFinalGuide, TypeModuleSteps, TypeChecklist, TypePillars:
		return a.buildFlow(env.Type, env.Flow)
	case TypeImage:
		return a.buildImage(env.Image, account)
	default:
		return Prompt{}, fmt.Errorf("no prompt template for type %q", env.Type)
	}
}

func (a *Assembler) buildText(id prompt.PromptID, p *TextPayload, account *entity.Account) (Prompt, error) {
	system, err := a.registry.System(id)
	if err != nil {
		return Prompt{}, err
	}

	sections := []string{"Topic: " + strings.TrimSpace(p.Topic)}
	appendSection(&sections, buildBrandBlock(account.Brand, p.Options))
	sections = append(sections, buildToneLine(p.Options))
	appendSection(&sections, buildAdvancedBlock(p.Options))
	if p.Image != "" {
		sections = append(sections, buildImageContextLine())
	}

	return Prompt{System: system, User: strings.Join(sections, "\n\n")}, nil
}

func (a *Assembler) buildTweet(p *TextPayload, account *entity.Account) (Prompt, error) {
	base, err := a.buildText(prompt.PromptTweetV1, p, account)
	if err != nil {
		return Prompt{}, err
	}
	base.User = base.User + "\n\n" + buildWordCountBlock(p.Options.WordCount)
	return base, nil
}

func (a *Assembler) buildPost(p *TextPayload, account *entity.Account) (Prompt, error) {
	base, err := a.buildText(prompt.PromptPostV1, p, account)
	if err != nil {
		return Prompt{}, err
	}
	n := p.Options.NumVariations
	if n < 1 {
		n = 1
	}
	base.User = base.User + "\n\n" + fmt.Sprintf("Produce exactly %d variations.", n)
	return base, nil
}

func (a *Assembler) buildVideoScript(p *TextPayload, account *entity.Account) (Prompt, error) {
	base, err := a.buildText(prompt.PromptVideoScriptV1, p, account)
	if err != nil {
		return Prompt{}, err
	}
	intro, main, outro := videoBeats(p.Options.VideoLength)
	base.User = base.User + "\n\n" + fmt.Sprintf(
		"Structure: intro must contain exactly %d entries, mainContent exactly %d entries, outro exactly %d entries.",
		intro, main, outro)
	return base, nil
}

func (a *Assembler) buildFlow(t Type, p *FlowPayload) (Prompt, error) {
	system, err := a.registry.System(prompt.PromptFlowBatchV1)
	if err != nil {
		return Prompt{}, err
	}

	sections := []string{"Persona: " + flowPersona(t)}
	if strings.TrimSpace(p.Goal) != "" {
		sections = append(sections, "Goal: "+strings.TrimSpace(p.Goal))
	}
	if strings.TrimSpace(p.Niche) != "" {
		sections = append(sections, "Niche: "+strings.TrimSpace(p.Niche))
	}
	if strings.TrimSpace(p.ModuleTitle) != "" {
		sections = append(sections, "Module: "+strings.TrimSpace(p.ModuleTitle))
	}
	if t == TypeRoadmapBatch {
		sections = append(sections, fmt.Sprintf("Batch index: %d", p.BatchIndex))
	}
	if len(p.Steps) > 0 {
		sections = append(sections, "Existing steps:\n- "+strings.Join(p.Steps, "\n- "))
	}
	sections = append(sections, buildToolAllowListBlock(p.VerifiedTools))
	sections = append(sections, "Output schema:\n"+flowSchema(t))

	return Prompt{System: system, User: strings.Join(sections, "\n\n")}, nil
}

func (a *Assembler) buildImage(p *ImagePayload, account *entity.Account) (Prompt, error) {
	system, err := a.registry.System(prompt.PromptImageV1)
	if err != nil {
		return Prompt{}, err
	}

	sections := []string{"Topic: " + strings.TrimSpace(p.Topic)}
	appendSection(&sections, buildBrandBlock(account.Brand, p.Options))

	return Prompt{System: system, User: strings.Join(sections, "\n\n")}, nil
}

// flowSchema 每种流程类型的输出契约
func flowSchema(t Type) string {
	switch t {
	case TypeRoadmapBatch:
		return `{"modules": [{"title": "...", "objective": "...", "steps": ["..."]}]}`
	case TypeFinalGuide:
		return `{"guide": {"title": "...", "summary": "...", "sections": [{"heading": "...", "content": "..."}]}}`
	case TypeModuleSteps:
		return `{"steps": [{"title": "...", "action": "...", "doneWhen": "..."}]}`
	case TypeChecklist:
		return `{"checklist": [{"item": "...", "why": "..."}]}`
	case TypePillars:
		return `{"pillars": [{"name": "...", "description": "...", "exampleTopics": ["..."]}]}`
	default:
		return `{}`
	}
}

func appendSection(sections *[]string, block string) {
	if block != "" {
		*sections = append(*sections, block)
	}
}
