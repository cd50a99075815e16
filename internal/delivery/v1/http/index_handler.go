package http

import (
	"net/http"

	"github.com/DRSN-tech/go-recommender/internal/usecase"
	"github.com/DRSN-tech/go-recommender/pkg/logger"
)

type IndexHandler struct {
	indexUsecase usecase.IndexUC
	logger       logger.Logger
}

func NewIndexHandler(indexUsecase usecase.IndexUC, logger logger.Logger) *IndexHandler {
	return &IndexHandler{indexUsecase: indexUsecase, logger: logger}
}

// syncIndex
//
//	@Summary		Синхронизация векторного индекса
//	@Description	Переносит эмбеддинги каталога в Qdrant и удаляет архивные товары
//	@Tags			admin
//	@Produce		json
//	@Success		200	{object}	SyncIndexResponse
//	@Failure		503	{object}	ErrorResponse
//	@Router			/admin/index/sync [post]
func (h *IndexHandler) syncIndex(w http.ResponseWriter, r *http.Request) {
	res, err := h.indexUsecase.SyncIndex(r.Context())
	if err != nil {
		h.logger.Errorf(err, "index sync failed")
		WriteError(w, err)
		return
	}

	h.logger.Infof("index synced: %d upserted, %d deleted", res.Upserted, res.Deleted)
	WriteSuccess(w, http.StatusOK, &SyncIndexResponse{Upserted: res.Upserted, Deleted: res.Deleted})
}
