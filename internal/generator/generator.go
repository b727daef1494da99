// Package generator 调用大模型把文本转换为结构化的微学习脚本。
package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"microlearning-go/internal/model"
	"microlearning-go/pkg/llm"
	"microlearning-go/pkg/log"
)

var (
	errMissingKeys  = errors.New("response missing required keys ('summary', 'slides')")
	errEmptySlides  = errors.New("'slides' must be a non-empty list")
	errSummaryType  = errors.New("'summary' must be a string")
	leadingFenceRe  = regexp.MustCompile("^```(?:json)?\\s*")
	trailingFenceRe = regexp.MustCompile("\\s*```$")
)

// Result 是一次生成的结果：要么得到脚本，要么不可用。
type Result struct {
	script *model.Script
}

// Ready 构造一个成功的结果。
func Ready(s model.Script) Result {
	return Result{script: &s}
}

// Unavailable 构造一个失败的结果。
func Unavailable() Result {
	return Result{}
}

// Script 返回生成的脚本，ok 为 false 表示不可用。
func (r Result) Script() (model.Script, bool) {
	if r.script == nil {
		return model.Script{}, false
	}
	return *r.script, true
}

// Generator 把文本交给大模型生成脚本。
type Generator struct {
	llmClient llm.Client
}

// New 创建一个 Generator 实例。
func New(llmClient llm.Client) *Generator {
	return &Generator{llmClient: llmClient}
}

// Generate 不会返回错误：调用失败、解析失败、校验失败都归为 Unavailable。
func (g *Generator) Generate(ctx context.Context, text string) Result {
	raw, err := g.llmClient.Complete(ctx, BuildPrompt(text))
	if err != nil {
		log.Error("[Generate] 调用大模型失败", err)
		return Unavailable()
	}

	script, err := ParseScript(raw)
	if err != nil {
		log.Errorw("[Generate] 无法解析模型输出", "error", err, "raw_len", len(raw))
		return Unavailable()
	}

	log.Infof("[Generate] 脚本生成成功，共 %d 张幻灯片", len(script.Slides))
	return Ready(script)
}

// stripFences 去掉模型有时会加上的 ``` 或 ```json 代码块包裹。
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = leadingFenceRe.ReplaceAllString(s, "")
	s = trailingFenceRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// ParseScript 解析并校验模型返回的 JSON。
func ParseScript(raw string) (model.Script, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(stripFences(raw)), &fields); err != nil {
		return model.Script{}, fmt.Errorf("invalid JSON: %w", err)
	}

	summaryRaw, hasSummary := fields["summary"]
	slidesRaw, hasSlides := fields["slides"]
	if !hasSummary || !hasSlides {
		return model.Script{}, errMissingKeys
	}

	var script model.Script
	if string(summaryRaw) == "null" {
		return model.Script{}, errSummaryType
	}
	if err := json.Unmarshal(summaryRaw, &script.Summary); err != nil {
		return model.Script{}, errSummaryType
	}
	if err := json.Unmarshal(slidesRaw, &script.Slides); err != nil {
		return model.Script{}, fmt.Errorf("invalid slides: %w", err)
	}
	if len(script.Slides) == 0 {
		return model.Script{}, errEmptySlides
	}
	return script, nil
}
