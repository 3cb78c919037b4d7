package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Session level messages (info)
		"Loaded %s":                     "%s を読み込みました",
		"Playback started":              "再生を開始しました",
		"Playback paused":               "再生を一時停止しました",
		"Playback stopped":              "再生を停止しました",
		"Playback finished":             "再生が終了しました",
		"Interrupted, shutting down...": "中断されました。シャットダウン中...",

		// Export messages
		"Exporting %s (%d-%d s) to %s": "%s (%d-%d 秒) を %s へ書き出し中",
		"Export progress: %d%%":        "書き出し進捗: %d%%",
		"Export completed: %s":         "書き出しが完了しました: %s",
		"Export cancelled":             "書き出しがキャンセルされました",
		"Estimated size: %s":           "推定サイズ: %s",

		// Decoder messages
		"Probing %s":                     "%s を解析中",
		"Restarting decoder at frame %d": "フレーム %d でデコーダーを再起動中",
		"container reports no frame rate, assuming %v fps": "コンテナがフレームレートを報告しないため %v fps とみなします",

		// Audio messages
		"Audio backend unavailable, continuing without sound: %s": "音声バックエンドが利用できません。無音で続行します: %s",
		"Audio error: %s": "音声エラー: %s",

		// Warnings
		"Stepping too fast, frame steps paused briefly":             "フレーム送りが速すぎます。少しの間停止します",
		"GIFs longer than 30 seconds can produce very large files":  "30秒を超えるGIFは非常に大きなファイルになる可能性があります",
		"GIFs longer than 15 seconds may produce large files":       "15秒を超えるGIFは大きなファイルになる可能性があります",
		"Palette pipeline failed, falling back to frame export: %s": "パレットパイプラインが失敗しました。フレーム書き出しにフォールバックします: %s",

		// Errors
		"Failed to open media: %s":   "メディアを開けませんでした: %s",
		"Failed to export GIF: %s":   "GIFの書き出しに失敗しました: %s",
		"Failed to write output: %s": "出力の書き込みに失敗しました: %s",
	})
}
