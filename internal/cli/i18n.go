package cli

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("zh", l10n.LexiconMap{
		// Commands
		"Extract burned-in subtitles from a video":         "从视频中提取硬字幕",
		"Print frame rate, frame count, size and duration": "显示帧率、帧数、尺寸和时长",
		"Save one frame with the crop region outlined":     "保存一帧并标出识别区域",
		"List recent extraction jobs":                      "列出最近的提取任务",
		"List recognizer profiles and prompt presets":      "列出识别配置和提示词预设",
		"Extracting subtitles":                             "正在提取字幕",
		"error: %s":                                        "错误：%s",
		"Frame %d (%d ms) saved to %s":                     "第 %d 帧（%d 毫秒）已保存到 %s",

		// Report
		"Status":          "状态",
		"Job":             "任务",
		"Video":           "视频",
		"Started":         "开始时间",
		"Finished":        "结束时间",
		"Elapsed":         "耗时",
		"Frames":          "帧数",
		"Region":          "识别区域",
		"full frame":      "整帧",
		"Sample interval": "采样间隔",
		"Min duration":    "最短时长",
		"Entries":         "字幕条数",
		"Model":           "模型",
		"Endpoint":        "接口地址",
		"Output":          "输出文件",
		"Write error":     "写入错误",
		"Error":           "错误",
		"Size":            "尺寸",
		"Frame rate":      "帧率",
		"Duration":        "时长",
		"assumed":         "默认值",
		"Profiles":        "识别配置",
		"Prompt presets":  "提示词预设",

		"nothing written (no subtitles found)": "未写入文件（未识别到字幕）",

		// Status
		"idle":      "空闲",
		"running":   "运行中",
		"done":      "已完成",
		"cancelled": "已取消",
		"errored":   "出错",
	})
}
