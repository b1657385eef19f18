package handler

import (
	"context"
	"net/http"

	"github.com/hm-community/hmnet/internal/model"
)

// NetworkServiceInterface はネットワーク統計ハンドラーが必要とするサービスインターフェース。
type NetworkServiceInterface interface {
	Stats(ctx context.Context) (*model.NetworkStats, error)
}

// NetworkHandler はネットワーク統計のHTTPハンドラー。
type NetworkHandler struct {
	service NetworkServiceInterface
}

// NewNetworkHandler はNetworkHandlerを生成する。
func NewNetworkHandler(service NetworkServiceInterface) *NetworkHandler {
	return &NetworkHandler{service: service}
}

// Stats はネットワーク全体の統計を返す。
// GET /api/network/stat
func (h *NetworkHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
