// Package tokenizer 提供基于 tiktoken 的 token 计数与截断，
// 编码数据不可用时回退到字符估算。
package tokenizer

import (
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// modelEncodings 将模型名称映射到其 tiktoken 编码。
var modelEncodings = map[string]string{
	"gpt-4o":        "o200k_base",
	"gpt-4o-mini":   "o200k_base",
	"gpt-4-turbo":   "cl100k_base",
	"gpt-4":         "cl100k_base",
	"gpt-3.5-turbo": "cl100k_base",
}

// Counter counts and truncates text by token budget for a given model.
// tiktoken encodings are loaded lazily; when loading fails (offline
// environments), a character-based estimator is used instead.
type Counter struct {
	model    string
	encoding string

	once    sync.Once
	enc     *tiktoken.Tiktoken
	initErr error
}

// NewCounter creates a token counter for the given model.
// Unknown models fall back to cl100k_base with prefix matching.
func NewCounter(model string) *Counter {
	encoding, ok := modelEncodings[model]
	if !ok {
		for prefix, e := range modelEncodings {
			if len(model) >= len(prefix) && model[:len(prefix)] == prefix {
				encoding, ok = e, true
				break
			}
		}
	}
	if !ok {
		encoding = "cl100k_base"
	}
	return &Counter{model: model, encoding: encoding}
}

func (c *Counter) init() error {
	c.once.Do(func() {
		enc, err := tiktoken.GetEncoding(c.encoding)
		if err != nil {
			c.initErr = fmt.Errorf("init tiktoken encoding %s: %w", c.encoding, err)
			return
		}
		c.enc = enc
	})
	return c.initErr
}

// CountTokens returns the token count of text, estimating when the
// encoding is unavailable.
func (c *Counter) CountTokens(text string) int {
	if text == "" {
		return 0
	}
	if err := c.init(); err == nil {
		return len(c.enc.Encode(text, nil, nil))
	}
	return estimateTokens(text)
}

// Truncate returns text cut down to at most maxTokens tokens.
// maxTokens <= 0 returns text unchanged.
func (c *Counter) Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 || text == "" {
		return text
	}
	if err := c.init(); err == nil {
		tokens := c.enc.Encode(text, nil, nil)
		if len(tokens) <= maxTokens {
			return text
		}
		return c.enc.Decode(tokens[:maxTokens])
	}
	return truncateEstimated(text, maxTokens)
}

// estimateTokens 区分 CJK 与 ASCII 字符的粗略估算。
// CJK 约 1.5 字符/token，ASCII 约 4 字符/token。
func estimateTokens(text string) int {
	totalChars := utf8.RuneCountInString(text)
	cjkCount := 0
	for _, r := range text {
		if isCJK(r) {
			cjkCount++
		}
	}
	estimated := int(float64(cjkCount)/1.5 + float64(totalChars-cjkCount)/4.0)
	if estimated == 0 {
		estimated = 1
	}
	return estimated
}

func truncateEstimated(text string, maxTokens int) string {
	budget := float64(maxTokens)
	var out []rune
	for _, r := range text {
		if isCJK(r) {
			budget -= 1.0 / 1.5
		} else {
			budget -= 1.0 / 4.0
		}
		if budget < 0 {
			break
		}
		out = append(out, r)
	}
	if len(out) == utf8.RuneCountInString(text) {
		return text
	}
	return string(out)
}

func isCJK(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) || // CJK Unified Ideographs
		(r >= 0x3400 && r <= 0x4DBF) || // CJK Extension A
		(r >= 0x3040 && r <= 0x30FF) || // Hiragana + Katakana
		(r >= 0xAC00 && r <= 0xD7AF) // Hangul syllables
}
