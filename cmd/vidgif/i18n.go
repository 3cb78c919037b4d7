// Package main provides localization for the vidgif CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Root command
		"Play video files and clip ranges to animated GIF": "動画ファイルを再生し、範囲をアニメーションGIFに切り出し",

		// Subcommands
		"Show container metadata for a video file":                 "動画ファイルのコンテナ情報を表示",
		"Clip a time range to an animated GIF":                     "時間範囲をアニメーションGIFに切り出し",
		"Extract a single frame as a PNG image":                    "1フレームをPNG画像として抽出",
		"Play a video file once, with audio when mpv is available": "動画ファイルを1回再生（mpvがあれば音声付き）",

		// Global flags
		"Log level (debug, info, warn, error)": "ログレベル（debug, info, warn, error）",
		"Suppress all log output":              "全てのログ出力を抑制",
		"Configuration YAML file path":         "設定YAMLファイルのパス",
		"Path to ffmpeg executable (falls back to FFMPEG_PATH env, then system default)":   "ffmpeg実行ファイルのパス（FFMPEG_PATH環境変数、システムデフォルトの順に使用）",
		"Path to ffprobe executable (falls back to FFPROBE_PATH env, then system default)": "ffprobe実行ファイルのパス（FFPROBE_PATH環境変数、システムデフォルトの順に使用）",

		// Export flags
		"Clip start in seconds": "切り出し開始秒",
		"Clip end in seconds":   "切り出し終了秒",
		"Output GIF file path (default: export_<start>s-<end>s.gif)": "出力GIFファイルパス（デフォルト: export_<開始>s-<終了>s.gif）",
		"Output frame rate (default: 10)":                            "出力フレームレート（デフォルト: 10）",
		"Size preset (small, medium, large, xlarge)":                 "サイズプリセット（small, medium, large, xlarge）",
		"Quality preset (low, medium, high)":                         "品質プリセット（low, medium, high）",
		"Skip the ffmpeg palette pipeline and always extract frames": "ffmpegパレットパイプラインを使わず常にフレーム抽出",

		// Preview flags
		"Position in seconds":    "位置（秒）",
		"Output PNG file path":   "出力PNGファイルパス",
		"Maximum preview width":  "プレビューの最大幅",
		"Maximum preview height": "プレビューの最大高さ",

		// Play flags
		"Disable audio playback": "音声再生を無効化",
		"Audio volume (0-100)":   "音量（0-100）",

		// Probe output
		"File":        "ファイル",
		"Dimensions":  "解像度",
		"Frame Rate":  "フレームレート",
		"Frame Count": "フレーム数",
		"Duration":    "再生時間",

		// Runtime messages
		"a video file argument is required":       "動画ファイル引数が必要です",
		"Estimated output size: about %s":         "推定出力サイズ: 約 %s",
		"Exporting %s (%.1f-%.1f s) to %s":        "%s（%.1f〜%.1f秒）を %s に書き出し中",
		"Output saved to %s":                      "出力を %s に保存しました",
		"Interrupted, shutting down...":           "中断されました。シャットダウン中...",
		"mpv not found, continuing without sound": "mpvが見つかりません。音声なしで続行します",
		"Playback finished":                       "再生が終了しました",
	})
}
