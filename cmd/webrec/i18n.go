package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Flag categories
		"Output":   "出力先",
		"Capture":  "キャプチャ",
		"Browser":  "ブラウザ設定",
		"Encoding": "エンコード",
		"Logging":  "ログ",

		// Commands
		"Record a rendered surface into a constant-frame-rate video": "描画面を固定フレームレートの動画として記録",
		"Record a page into a constant-frame-rate video":             "ページを固定フレームレートの動画として記録",
		"Capture a single frame as PNG":                              "1フレームをPNGとして保存",
		"Show the video track timing of an MP4 file":                 "MP4ファイルの映像トラックのタイミングを表示",
		"Show version information":                                   "バージョン情報を表示",
		"webrec version %s":                                          "webrec バージョン %s",

		// Output flags
		"Output video file (default: output.mkv)":                "出力動画ファイル（デフォルト: output.mkv）",
		"Output PNG file":                                        "出力PNGファイル",
		"Frame rate: 30, 30000/1001 or 29.97 (default: 30)":      "フレームレート: 30, 30000/1001 または 29.97（デフォルト: 30）",
		"Stop after this many frames":                            "このフレーム数で停止",
		"Stop after this long (e.g., 10s)":                       "この時間で停止（例: 10s）",
		"Wait this long for an in-flight capture when stopping":  "停止時に処理中のキャプチャを待つ時間",
		"Write the recording summary as JSON to this file":       "録画サマリーをJSONでこのファイルに書き出す",
		"Save every captured snapshot for debugging":             "デバッグ用にすべてのスナップショットを保存",
		"Debug output directory (default: ./debug)":              "デバッグ出力ディレクトリ（デフォルト: ./debug）",

		// Encoding flags
		"Encoder backend (auto, ffmpeg, mp4, mjpeg)":          "エンコーダーバックエンド (auto, ffmpeg, mp4, mjpeg)",
		"Encoder quality (0-100)":                             "エンコード品質 (0-100)",
		"Preferred ffmpeg codec (repeatable, tried in order)": "優先するffmpegコーデック（複数指定可、順に試行）",
		"Path to the ffmpeg binary":                           "ffmpegバイナリのパス",
		"Frames per fragment for the built-in MP4 writer":     "内蔵MP4ライターのフラグメントあたりのフレーム数",

		// Capture flags
		"Load settings from a YAML or TOML file":     "YAMLまたはTOMLファイルから設定を読み込む",
		"Capture width in pixels (default: 1920)":    "キャプチャ幅（ピクセル、デフォルト: 1920）",
		"Capture height in pixels (default: 1080)":   "キャプチャ高さ（ピクセル、デフォルト: 1080）",
		"Render host (chrome, playwright, vnc, pattern)": "レンダーホスト (chrome, playwright, vnc, pattern)",
		"Snapshot image format (png, jpeg, webp)":    "スナップショットの画像形式 (png, jpeg, webp)",
		"Snapshot JPEG/WebP quality (0-100)":         "スナップショットのJPEG/WebP品質 (0-100)",
		"Maximum wait for the page to load":          "ページ読み込みの最大待機時間",
		"Extra wait after the page has loaded":       "ページ読み込み後の追加待機時間",

		// Browser flags
		"Run browser in non-headless mode":                "ブラウザを非ヘッドレスモードで実行",
		"Path to Chrome executable":                       "Chrome実行ファイルのパス",
		"Override the browser user agent":                 "ブラウザのユーザーエージェントを上書き",
		"Extra HTTP header as 'Name: value' (repeatable)": "追加HTTPヘッダー 'Name: value'（複数指定可）",
		"Ignore HTTPS certificate errors":                 "HTTPS証明書エラーを無視",
		"HTTP proxy server (e.g., http://proxy:8080)":     "HTTPプロキシサーバー（例: http://proxy:8080）",
		"Use an incognito browser context":                "シークレットモードのブラウザコンテキストを使用",
		"VNC server address (host:port)":                  "VNCサーバーのアドレス (host:port)",
		"VNC password":                                    "VNCパスワード",

		// Logging flags
		"Verbosity (0 = quiet, 1 = info, 2 = debug)":  "詳細度 (0 = 出力なし, 1 = 情報, 2 = デバッグ)",
		"Log level (debug, info, warn, error, quiet)": "ログレベル (debug, info, warn, error, quiet)",
		"Prefix log lines with the time":              "ログ行の先頭に時刻を付ける",

		// Inspect flags
		"Number of samples to list (0 lists all)": "表示するサンプル数（0ですべて）",
		"Print the report as JSON":                "レポートをJSONで出力",

		// Errors
		"Error: %s": "エラー: %s",
		"Invalid header %q, expected 'Name: value'": "不正なヘッダー %q です。'Name: value' 形式で指定してください",
		"An MP4 file argument is required":          "MP4ファイルを引数に指定してください",
	})
}
