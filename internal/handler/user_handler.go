package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/usercrud/internal/middleware"
	"github.com/hitoshi/usercrud/internal/model"
)

// maxRequestBodyBytes はリクエストボディの上限サイズ。
const maxRequestBodyBytes = 1 << 20

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	Create(ctx context.Context, firstName, lastName string) (*model.User, error)
	Get(ctx context.Context, id int64) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
	Update(ctx context.Context, id int64, firstName, lastName string) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// UserHandlerConfig はユーザーハンドラーの設定を保持する。
type UserHandlerConfig struct {
	// NotFoundStatus は GET /users/{id} で該当なしの場合のステータス（200または404）。
	NotFoundStatus int
}

// UserHandler はユーザーCRUDのHTTPハンドラー。
type UserHandler struct {
	service        UserServiceInterface
	notFoundStatus int
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface, config UserHandlerConfig) *UserHandler {
	status := config.NotFoundStatus
	if status == 0 {
		status = http.StatusOK
	}
	return &UserHandler{
		service:        service,
		notFoundStatus: status,
	}
}

// userRequest はPOST/PUTのリクエストボディ。
type userRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// userResponse はユーザー1件のレスポンス。
type userResponse struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// usersResponse はユーザー一覧のレスポンス。
type usersResponse struct {
	Users []userResponse `json:"users"`
}

// successResponse はPUT/DELETEのレスポンス。
type successResponse struct {
	Success bool `json:"success"`
}

// emptyResponse は空オブジェクト {} を表す。
type emptyResponse struct{}

// ListUsers は全ユーザーを返す。
// GET /users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		logServiceError(r, "list users", err)
		middleware.WriteJSON(w, http.StatusServiceUnavailable, usersResponse{Users: []userResponse{}})
		return
	}

	resp := usersResponse{Users: make([]userResponse, 0, len(users))}
	for _, u := range users {
		resp.Users = append(resp.Users, toUserResponse(u))
	}

	middleware.WriteJSON(w, http.StatusOK, resp)
}

// GetUser は指定IDのユーザーを返す。存在しない場合は空オブジェクトを返す。
// GET /users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUserID(r)
	if !ok {
		middleware.WriteJSON(w, h.notFoundStatus, emptyResponse{})
		return
	}

	user, err := h.service.Get(r.Context(), id)
	switch {
	case err == nil:
		middleware.WriteJSON(w, http.StatusOK, toUserResponse(user))
	case model.IsNotFound(err):
		middleware.WriteJSON(w, h.notFoundStatus, emptyResponse{})
	default:
		logServiceError(r, "get user", err)
		middleware.WriteJSON(w, http.StatusServiceUnavailable, emptyResponse{})
	}
}

// CreateUser はユーザーを作成し、採番済みのレコードを返す。
// POST /users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	req, err := decodeUserRequest(w, r)
	if err != nil {
		slog.WarnContext(r.Context(), "invalid request body",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.RequestIDFromContext(r.Context())),
		)
		middleware.WriteJSON(w, http.StatusBadRequest, emptyResponse{})
		return
	}

	user, err := h.service.Create(r.Context(), req.FirstName, req.LastName)
	switch {
	case err == nil:
		middleware.WriteJSON(w, http.StatusOK, toUserResponse(user))
	case model.IsValidation(err):
		middleware.WriteJSON(w, http.StatusBadRequest, emptyResponse{})
	default:
		logServiceError(r, "create user", err)
		middleware.WriteJSON(w, http.StatusServiceUnavailable, emptyResponse{})
	}
}

// UpdateUser は指定IDのユーザーの姓名を更新する。
// PUT /users/{id}
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUserID(r)
	if !ok {
		middleware.WriteJSON(w, http.StatusOK, successResponse{Success: false})
		return
	}

	req, err := decodeUserRequest(w, r)
	if err != nil {
		middleware.WriteJSON(w, http.StatusOK, successResponse{Success: false})
		return
	}

	updated, err := h.service.Update(r.Context(), id, req.FirstName, req.LastName)
	h.writeSuccess(w, r, "update user", updated, err)
}

// DeleteUser は指定IDのユーザーを削除する。
// DELETE /users/{id}
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUserID(r)
	if !ok {
		middleware.WriteJSON(w, http.StatusOK, successResponse{Success: false})
		return
	}

	deleted, err := h.service.Delete(r.Context(), id)
	h.writeSuccess(w, r, "delete user", deleted, err)
}

// writeSuccess はPUT/DELETEの結果を {"success": bool} として書き込む。
// ストア障害のみ503とし、検証エラーは200でfalseを返す。
func (h *UserHandler) writeSuccess(w http.ResponseWriter, r *http.Request, op string, ok bool, err error) {
	switch {
	case err == nil:
		middleware.WriteJSON(w, http.StatusOK, successResponse{Success: ok})
	case model.IsValidation(err) || model.IsNotFound(err):
		middleware.WriteJSON(w, http.StatusOK, successResponse{Success: false})
	default:
		logServiceError(r, op, err)
		middleware.WriteJSON(w, http.StatusServiceUnavailable, successResponse{Success: false})
	}
}

// SetupUserRoutes はユーザーCRUDのルーティングを設定したchi.Routerを返す。
func SetupUserRoutes(service UserServiceInterface, config UserHandlerConfig) http.Handler {
	r := chi.NewRouter()
	mountUserRoutes(r, NewUserHandler(service, config))
	return r
}

func mountUserRoutes(r chi.Router, h *UserHandler) {
	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.ListUsers)
		r.Post("/", h.CreateUser)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetUser)
			r.Put("/", h.UpdateUser)
			r.Delete("/", h.DeleteUser)
		})
	})
}

// --- ヘルパー関数 ---

// toUserResponse はmodel.UserからAPIレスポンスに変換する。
func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

// parseUserID はURLパラメータのIDを解釈する。
// 数値でない、または正でないIDは存在しないIDとして扱う。
func parseUserID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// decodeUserRequest はボディを上限付きでJSONデコードする。
func decodeUserRequest(w http.ResponseWriter, r *http.Request) (userRequest, error) {
	var req userRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return userRequest{}, err
	}
	return req, nil
}

// logServiceError はサービス層の失敗を記録する。ドライバの詳細はクライアントに返さない。
func logServiceError(r *http.Request, op string, err error) {
	slog.ErrorContext(r.Context(), "service error",
		slog.String("op", op),
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.RequestIDFromContext(r.Context())),
	)
}
