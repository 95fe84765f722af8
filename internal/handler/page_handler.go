package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hitoshi/usercrud/internal/model"
	"github.com/hitoshi/usercrud/internal/web"
)

// UserLister はランディングページが必要とするサービスインターフェース。
type UserLister interface {
	List(ctx context.Context) ([]*model.User, error)
}

// PageHandler はHTMLページのハンドラー。
type PageHandler struct {
	users    UserLister
	renderer *web.Renderer
}

// NewPageHandler はPageHandlerを生成する。
func NewPageHandler(users UserLister, renderer *web.Renderer) *PageHandler {
	return &PageHandler{
		users:    users,
		renderer: renderer,
	}
}

// Index は全ユーザーを一覧表示するランディングページを返す。
// ストア障害時は503のエラーページを返す。
// GET /
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		logServiceError(r, "render index", err)
		h.render(w, r, http.StatusServiceUnavailable, "error.html", web.ErrorPage{
			Status:  http.StatusServiceUnavailable,
			Message: "The user store is currently unavailable. Please try again later.",
		})
		return
	}

	h.render(w, r, http.StatusOK, "index.html", web.IndexPage{Users: users})
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if err := h.renderer.Render(w, status, name, data); err != nil {
		slog.ErrorContext(r.Context(), "failed to render page",
			slog.String("template", name),
			slog.String("error", err.Error()),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
