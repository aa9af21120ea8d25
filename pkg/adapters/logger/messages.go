package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Recording lifecycle (info)
		"Encoding %dx%d at %s fps with %s": "%dx%d, %s fps を %s でエンコードします",
		"Launching render host":            "レンダーホストを起動中",
		"Navigating to %s":                 "%s へ移動中",
		"Page loaded, recording started":   "ページの読み込みが完了し、録画を開始しました",
		"Interrupted, shutting down...":    "中断されました。シャットダウン中...",
		"Duration limit %s reached":        "録画時間の上限 %s に達しました",
		"Frame limit %d reached":           "フレーム数の上限 %d に達しました",
		"Stopping recording":               "録画を停止中",
		"Recorded %d frames to %s":         "%d フレームを %s に録画しました",
		"Output saved to %s":               "出力を %s に保存しました",
		"Summary saved to %s":              "サマリーを %s に保存しました",

		// Recording failures (error)
		"Failed to start encoder: %s":      "エンコーダーの起動に失敗しました: %s",
		"Failed to launch render host: %s": "レンダーホストの起動に失敗しました: %s",
		"Failed to navigate: %s":           "ページへの移動に失敗しました: %s",
		"Encoding failed: %s":              "エンコードに失敗しました: %s",
		"Failed to save summary: %s":       "サマリーの保存に失敗しました: %s",
		"Failed to close render host: %s":  "レンダーホストの終了に失敗しました: %s",
		"Failed to release output lock: %s": "出力ロックの解放に失敗しました: %s",
		"Aborting recording: %v":           "録画を中止します: %v",
		"Second interrupt, aborting":       "2回目の中断を受信したため中止します",

		// Capture scheduler
		"Surface loaded, capture enabled":                         "描画面の読み込みが完了し、キャプチャを有効化しました",
		"Requesting snapshot #%d":                                 "スナップショット #%d を要求中",
		"Captured frame %d (%d bytes)":                            "フレーム %d をキャプチャしました (%d バイト)",
		"Snapshot failed, frame dropped: %v":                      "スナップショットに失敗したためフレームを破棄しました: %v",
		"Snapshot returned no data, frame dropped":                "スナップショットが空だったためフレームを破棄しました",
		"Stopping capture (outstanding=%v)":                       "キャプチャを停止中 (処理中=%v)",
		"Grace period expired with a snapshot in flight, abandoning it": "猶予時間が経過したため処理中のスナップショットを破棄します",
		"Discarding snapshot that arrived after shutdown":         "停止後に届いたスナップショットを破棄します",
		"End of stream sent after %d frames":                      "%d フレームの後にストリーム終端を送信しました",
		"Failed to enqueue frame %d: %v":                          "フレーム %d のキュー投入に失敗しました: %v",
		"Failed to enqueue end of stream: %v":                     "ストリーム終端のキュー投入に失敗しました: %v",
		"Failed to save snapshot %d: %v":                          "スナップショット %d の保存に失敗しました: %v",

		// Encoder worker
		"Pushed frame %d at %v":                   "フレーム %d を %v に配置しました",
		"Dropping frame %d: %v":                   "フレーム %d を破棄します: %v",
		"Dropping frame %d after %d busy retries": "%d 回のビジー再試行の後、フレーム %d を破棄します",
		"End of stream received":                  "ストリーム終端を受信しました",
		"Encoded %d frames, last pts %v":          "%d フレームをエンコードしました (最終 pts %v)",
		"Frame channel closed without end of stream": "ストリーム終端なしでフレームチャネルが閉じられました",
		"Finalize after failure: %v":              "失敗後のファイナライズ: %v",

		// Backends
		"Selected %s backend (requested %s)": "%s バックエンドを選択しました (要求: %s)",
		"%s not available, falling back to %s": "%s が利用できないため %s にフォールバックします",
		"ffmpeg not found, falling back to the built-in MP4 writer (JPEG samples)": "ffmpegが見つからないため内蔵MP4ライター (JPEGサンプル) にフォールバックします",
		"ffmpeg not found, falling back to the built-in Motion-JPEG writer":        "ffmpegが見つからないため内蔵Motion-JPEGライターにフォールバックします",
		"Started %s (%s) for %s":               "%s (%s) を %s 用に起動しました",
		"ffmpeg wrote %d frames to %s":         "ffmpegが %d フレームを %s に書き込みました",
		"Writing %s at %dx%d, timescale %d":    "%s を %dx%d, タイムスケール %d で書き込み中",
		"Wrote %d samples in %d fragments":     "%d サンプルを %d フラグメントに書き込みました",
		"Wrote %d frames to %s":                "%d フレームを %s に書き込みました",

		// Hosts
		"Chrome not found, installing Chromium via Playwright": "Chromeが見つからないため、PlaywrightでChromiumをインストールします",
		"Using Chrome at %s":                                   "%s のChromeを使用します",
		"VNC error: %v":                                        "VNCエラー: %v",
		"VNC framebuffer is %dx%d, recording expects %dx%d":    "VNCフレームバッファは %dx%d ですが、録画サイズは %dx%d です",
		"Surface loaded":                                       "描画面の読み込みが完了しました",
		"Captured %dx%d snapshot (%d bytes)":                   "%dx%d のスナップショットを取得しました (%d バイト)",
	})
}
