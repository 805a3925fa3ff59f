package handler

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var staticFiles embed.FS

// NewStaticHandler は埋め込み済み静的ファイル（JS）を配信するハンドラーを返す。
// /static/ プレフィックスで公開する。
func NewStaticHandler() http.Handler {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		// embedディレクトリ名の不一致はプログラミングエラー
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
