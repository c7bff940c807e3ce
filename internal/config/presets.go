package config

import "sort"

const (
	PresetDefault = "只返回图片中的可读字幕文本"
	PresetStrict  = "只返回图片中的可读字幕文本。规则：如果图片中没有字幕文本，请返回空字符串，不要任何解释或说明。" +
		"规则：只输出字幕文本本身；不要描述位置、颜色、背景、字体等；不要包含'图片中显示'或'内容为'等句式；不要引号或任何额外说明。"
	PresetJSON = "只返回字幕文本的JSON数组，不要任何额外说明"
)

var presets = map[string]string{
	"default":     PresetDefault,
	"strict":      PresetStrict,
	"json_format": PresetJSON,
}

func Preset(name string) (string, bool) {
	p, ok := presets[name]
	return p, ok
}

func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
