package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hm-community/hmnet/internal/model"
)

// PeopleServiceInterface は連絡先ハンドラーが必要とするサービスインターフェース。
type PeopleServiceInterface interface {
	List(ctx context.Context, limit int) ([]*model.Person, error)
	Get(ctx context.Context, id string) (*model.Person, error)
	Create(ctx context.Context, input *model.Person) (*model.Person, error)
	Update(ctx context.Context, id string, input *model.Person) (*model.Person, error)
	Delete(ctx context.Context, id string) error
}

// PeopleHandler は連絡先ディレクトリのHTTPハンドラー。
type PeopleHandler struct {
	service PeopleServiceInterface
}

// NewPeopleHandler はPeopleHandlerを生成する。
func NewPeopleHandler(service PeopleServiceInterface) *PeopleHandler {
	return &PeopleHandler{service: service}
}

// personRequest は連絡先の作成・更新リクエストのボディ。
// id、created_at、updated_atはサーバー側で決まるため受け付けない。
type personRequest struct {
	Name      string  `json:"name"`
	Nickname  *string `json:"nickname"`
	Gender    *string `json:"gender"`
	Birthday  *string `json:"birthday"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email"`
	City      *string `json:"city"`
	Resources *string `json:"resources"`
	Needs     *string `json:"needs"`
}

// toPerson はリクエストボディをドメインモデルに変換する。
func (req *personRequest) toPerson() *model.Person {
	return &model.Person{
		Name:      req.Name,
		Nickname:  req.Nickname,
		Gender:    req.Gender,
		Birthday:  req.Birthday,
		Phone:     req.Phone,
		Email:     req.Email,
		City:      req.City,
		Resources: req.Resources,
		Needs:     req.Needs,
	}
}

// List は連絡先の一覧を返す。
// GET /api/people/?limit=10
func (h *PeopleHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("limitは整数で指定してください"))
			return
		}
		limit = parsed
	}

	people, err := h.service.List(r.Context(), limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	// 0件でもnullではなく空配列を返す
	if people == nil {
		people = []*model.Person{}
	}
	writeJSON(w, http.StatusOK, people)
}

// Get は連絡先の詳細を返す。
// GET /api/people/{id}
func (h *PeopleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	person, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, person)
}

// Create は連絡先を作成する。
// POST /api/people/
func (h *PeopleHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := decodePersonRequest(w, r)
	if !ok {
		return
	}

	created, err := h.service.Create(r.Context(), req.toPerson())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, created)
}

// Update は連絡先の全フィールドを置き換える。
// PUT /api/people/{id}
func (h *PeopleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	req, ok := decodePersonRequest(w, r)
	if !ok {
		return
	}

	updated, err := h.service.Update(r.Context(), id, req.toPerson())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// Delete は連絡先を削除する。
// DELETE /api/people/{id}
func (h *PeopleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// decodePersonRequest はリクエストボディを解析する。失敗時はエラーレスポンスを書き込む。
func decodePersonRequest(w http.ResponseWriter, r *http.Request) (*personRequest, bool) {
	var req personRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     model.ErrCodeInvalidRequest,
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return nil, false
	}
	return &req, true
}
