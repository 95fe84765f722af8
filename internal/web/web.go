// Package web はランディングページのテンプレートと静的アセットを埋め込みで提供する。
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/hitoshi/usercrud/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// IndexPage はランディングページの描画データ。
type IndexPage struct {
	Users []*model.User
}

// ErrorPage はエラーページの描画データ。
type ErrorPage struct {
	Status  int
	Message string
}

// Renderer は埋め込みテンプレートをHTMLとして描画する。
type Renderer struct {
	templates *template.Template
}

// NewRenderer は埋め込みテンプレートを解析してRendererを生成する。
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{templates: tmpl}, nil
}

// MustNewRenderer はNewRendererのpanic版。埋め込みテンプレートは固定のため起動時とテストで使う。
func MustNewRenderer() *Renderer {
	r, err := NewRenderer()
	if err != nil {
		panic(err)
	}
	return r
}

// Render は指定テンプレートを描画してwに書き込む。
// 描画はバッファ上で行い、失敗時は何も書き込まずにエラーを返す。
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data any) error {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// StaticHandler は/public配下の静的アセットを配信するハンドラーを返す。
// prefixはルーターでマウントしたパス（例: "/public/"）。ディレクトリは一覧せず404を返す。
func StaticHandler(prefix string) http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix(prefix, http.FileServer(http.FS(fileOnlyFS{sub})))
}

// fileOnlyFS はディレクトリのOpenをfs.ErrNotExistとして扱うfs.FS。
type fileOnlyFS struct {
	fsys fs.FS
}

func (f fileOnlyFS) Open(name string) (fs.File, error) {
	file, err := f.fsys.Open(name)
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}

	return file, nil
}
