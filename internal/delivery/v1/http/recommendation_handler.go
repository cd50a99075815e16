package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/DRSN-tech/go-recommender/internal/cfg"
	"github.com/DRSN-tech/go-recommender/internal/usecase"
	"github.com/DRSN-tech/go-recommender/pkg/e"
	"github.com/DRSN-tech/go-recommender/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	SessionHeader = "X-Session-ID"

	msgFeaturedFallback = "No order history found, showing featured products."
)

type RecommendationHandler struct {
	recUsecase usecase.RecommendationUC
	session    *cfg.SessionCfg
	logger     logger.Logger
}

func NewRecommendationHandler(recUsecase usecase.RecommendationUC, session *cfg.SessionCfg, logger logger.Logger) *RecommendationHandler {
	return &RecommendationHandler{recUsecase: recUsecase, session: session, logger: logger}
}

// getStoredRecommendations
//
//	@Summary		Сохранённые рекомендации
//	@Description	Возвращает последние сохранённые рекомендации покупателя
//	@Tags			recommendations
//	@Produce		json
//	@Param			customerID	path		int						true	"ID покупателя"
//	@Success		200			{object}	RecommendationsResponse
//	@Failure		400			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Router			/recommendations/{customerID} [get]
func (h *RecommendationHandler) getStoredRecommendations(w http.ResponseWriter, r *http.Request) {
	customerID, err := parseCustomerID(chi.URLParam(r, "customerID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	res, err := h.recUsecase.GetStoredRecommendations(r.Context(), customerID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toRecommendationsResponse(res))
}

// recommendFromHistory
//
//	@Summary		Рекомендации по истории заказов
//	@Description	Строит профиль покупателя по заказам и ранжирует каталог. Без истории отдаёт избранные товары.
//	@Tags			recommendations
//	@Produce		json
//	@Param			customerID			path		int		true	"ID покупателя"
//	@Param			limit				query		int		false	"Количество товаров"
//	@Param			exclude_purchased	query		bool	false	"Исключить купленные товары"
//	@Param			strategy			query		string	false	"mean | latest"
//	@Success		200					{object}	RecommendationsResponse
//	@Failure		400					{object}	ErrorResponse
//	@Failure		503					{object}	ErrorResponse
//	@Router			/recommendations/{customerID}/history [get]
func (h *RecommendationHandler) recommendFromHistory(w http.ResponseWriter, r *http.Request) {
	customerID, err := parseCustomerID(chi.URLParam(r, "customerID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	limit, err := queryInt(r, "limit")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	exclude, err := queryBool(r, "exclude_purchased")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	strategy := usecase.ProfileStrategy(strings.ToLower(r.URL.Query().Get("strategy")))
	if !strategy.Valid() {
		h.fail(w, r, e.ErrInvalidStrategy)
		return
	}

	res, err := h.recUsecase.RecommendFromHistory(r.Context(), &usecase.HistoryRecommendationReq{
		CustomerID:       customerID,
		Limit:            limit,
		ExcludePurchased: exclude,
		Strategy:         strategy,
	})
	if errors.Is(err, e.ErrNoHistory) || errors.Is(err, e.ErrNoEmbeddableHistory) {
		h.logger.Debugf("customer %d has no usable history, serving featured products", customerID)
		h.featuredFallback(w, r, limit)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toRecommendationsResponse(res))
}

func (h *RecommendationHandler) featuredFallback(w http.ResponseWriter, r *http.Request, limit int) {
	res, err := h.recUsecase.FeaturedProducts(r.Context(), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	out := toRecommendationsResponse(res)
	out.Message = msgFeaturedFallback
	out.Fallback = true
	WriteSuccess(w, http.StatusOK, out)
}

// chat
//
//	@Summary		Рекомендации из чата
//	@Description	Подбирает товары по свободному запросу. Сессия берётся из заголовка X-Session-ID или cookie и выдаётся, если её нет.
//	@Tags			recommendations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ChatRequest	true	"Запрос"
//	@Success		200		{object}	ChatResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		503		{object}	ErrorResponse
//	@Router			/recommendations/chat [post]
func (h *RecommendationHandler) chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	sessionID := h.sessionID(r)
	h.setSession(w, sessionID)

	res, err := h.recUsecase.RecommendFromQuery(r.Context(), &usecase.QueryRecommendationReq{
		SessionID:  sessionID,
		CustomerID: req.CustomerID,
		Query:      req.Query,
		Limit:      req.Limit,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toChatResponse(sessionID, res))
}

// endSession
//
//	@Summary	Завершение диалога
//	@Tags		recommendations
//	@Param		sessionID	path	string	true	"ID сессии"
//	@Success	204
//	@Failure	400	{object}	ErrorResponse
//	@Router		/recommendations/chat/{sessionID} [delete]
func (h *RecommendationHandler) endSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.recUsecase.EndSession(r.Context(), sessionID); err != nil {
		h.fail(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:   h.session.CookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	w.WriteHeader(http.StatusNoContent)
}

// featuredProducts
//
//	@Summary	Избранные товары
//	@Tags		products
//	@Produce	json
//	@Param		limit	query		int	false	"Количество товаров"
//	@Success	200		{object}	RecommendationsResponse
//	@Router		/products/featured [get]
func (h *RecommendationHandler) featuredProducts(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	res, err := h.recUsecase.FeaturedProducts(r.Context(), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toRecommendationsResponse(res))
}

// adminRecommendations
//
//	@Summary		Подбор рекомендаций администратором
//	@Description	Совмещает профиль покупателя с запросом администратора и сохраняет результат
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			request	body		AdminRecommendationRequest	true	"Запрос"
//	@Success		200		{object}	RecommendationsResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		503		{object}	ErrorResponse
//	@Router			/admin/recommendations [post]
func (h *RecommendationHandler) adminRecommendations(w http.ResponseWriter, r *http.Request) {
	var req AdminRecommendationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	res, err := h.recUsecase.RecommendForAdmin(r.Context(), &usecase.AdminRecommendationReq{
		CustomerID:       req.CustomerID,
		Query:            req.Query,
		Limit:            req.Limit,
		ExcludePurchased: req.ExcludePurchased,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toRecommendationsResponse(res))
}

// sessionID берёт сессию из заголовка, затем из cookie. Если нет ни того ни другого, выдаёт новую.
func (h *RecommendationHandler) sessionID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(SessionHeader)); id != "" {
		return id
	}

	if c, err := r.Cookie(h.session.CookieName); err == nil && c.Value != "" {
		return c.Value
	}

	return uuid.NewString()
}

func (h *RecommendationHandler) setSession(w http.ResponseWriter, sessionID string) {
	w.Header().Set(SessionHeader, sessionID)
	http.SetCookie(w, &http.Cookie{
		Name:     h.session.CookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(h.session.TTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *RecommendationHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	code, _ := ToHTTPResponse(err)
	if code >= http.StatusInternalServerError {
		h.logger.Errorf(err, "%s %s", r.Method, r.URL.Path)
	} else {
		h.logger.Warnf("%d %s %s: %v", code, r.Method, r.URL.Path, err)
	}
	WriteError(w, err)
}
