// Package textfilter drops recognizer replies that describe the absence of
// subtitles instead of transcribing them.
package textfilter

import (
	"strings"
	"unicode/utf8"
)

const (
	keywordMaxLen = 20
	shortMaxLen   = 15
)

var noSubtitlePhrases = []string{
	"no subtitle",
	"no subtitles",
	"no text",
	"no readable text",
	"nothing found",
	"empty",
	"n/a",
	"无字幕",
	"没有字幕",
	"无文字",
	"没有文字",
	"无可读文本",
	"没有可读文本",
	"未发现",
	"未找到",
	"无内容",
	"空字符串",
}

var metaTokens = []string{
	"subtitle",
	"caption",
	"text",
	"content",
	"screenshot",
	"frame",
	"video",
	"image",
	"字幕",
	"文本",
	"文字",
	"内容",
	"截图",
	"画面",
	"视频",
	"图片",
}

// Filter returns "" when raw looks like a descriptive non-subtitle reply and
// raw unchanged otherwise.
func Filter(raw string) string {
	if raw == "" {
		return ""
	}
	folded := strings.ToLower(strings.TrimSpace(raw))
	if folded == "" {
		return ""
	}
	n := utf8.RuneCountInString(folded)

	for _, p := range noSubtitlePhrases {
		if !strings.Contains(folded, p) {
			continue
		}
		if n <= keywordMaxLen || folded == p {
			return ""
		}
	}

	if n <= shortMaxLen {
		for _, tok := range metaTokens {
			if strings.Contains(folded, tok) {
				return ""
			}
		}
	}
	return raw
}
