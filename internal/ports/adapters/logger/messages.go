package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("zh", l10n.LexiconMap{
		// Extraction
		"Started job %s on %s (%.3f fps, %d frames)": "任务 %s 已开始：%s（%.3f fps，%d 帧）",
		"Sampling every %d frames (%d ms)":            "每 %d 帧采样一次（%d 毫秒）",
		"Failed to open video %s: %v":                 "无法打开视频 %s：%v",
		"Recognition failed at frame %d: %v":          "第 %d 帧识别失败：%v",
		"Filtered reply at %d ms: %q":                 "已过滤 %d 毫秒处的回复：%q",
		"Skipped sample at %d ms: %v":                 "已跳过 %d 毫秒处的采样：%v",
		"Closing video stream: %v":                    "关闭视频流：%v",
		"Failed to write subtitles: %v":               "写入字幕失败：%v",
		"Job %s finished with %d entries":             "任务 %s 完成，共 %d 条字幕",
		"Job %s cancelled with %d entries":            "任务 %s 已取消，保留 %d 条字幕",
		"Job %s failed: %v":                           "任务 %s 失败：%v",
		"Failed to record job %s: %v":                 "记录任务 %s 失败：%v",

		// Pipeline
		"Recognizer: %s (%s)": "识别服务：%s（%s）",
		"Output: %s":          "输出：%s",
		"Report written: %s":  "报告已写入：%s",

		// Metrics
		"metrics server listening on %s": "指标服务监听于 %s",
		"metrics server error: %v":       "指标服务错误：%v",

		// Signals
		"Interrupted, writing partial results...": "已中断，正在写入已识别的结果...",
	})
}
