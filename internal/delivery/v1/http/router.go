package http

import (
	"net/http"

	_ "github.com/DRSN-tech/go-recommender/docs" // Импорт сгенерированных файлов
	"github.com/DRSN-tech/go-recommender/internal/cfg"
	"github.com/DRSN-tech/go-recommender/internal/usecase"
	"github.com/DRSN-tech/go-recommender/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Router struct {
	router  *chi.Mux
	cfg     *cfg.HTTPConfig
	session *cfg.SessionCfg
	logger  logger.Logger
}

func NewRouter(router *chi.Mux, cfg *cfg.HTTPConfig, session *cfg.SessionCfg, logger logger.Logger) *Router {
	return &Router{router: router, cfg: cfg, session: session, logger: logger}
}

func (r *Router) Init(recUC usecase.RecommendationUC, idxUC usecase.IndexUC) {
	r.router.Use(middleware.RequestID)
	r.router.Use(middleware.Recoverer)
	r.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   r.cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", SessionHeader},
		ExposedHeaders:   []string{SessionHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(r.cfg.SwaggerURL), // ссылка на JSON
	))
	r.router.Handle("/metrics", promhttp.Handler())

	r.router.Route("/api/v1", func(v1 chi.Router) {
		recHandler := NewRecommendationHandler(recUC, r.session, r.logger)
		idxHandler := NewIndexHandler(idxUC, r.logger)
		registerRecommendationRoutes(v1, recHandler, r.llmLimiter())
		registerAdminRoutes(v1, recHandler, idxHandler, r.llmLimiter())
	})
}

// llmLimiter ограничивает маршруты, которые вызывают LLM-провайдера.
func (r *Router) llmLimiter() func(http.Handler) http.Handler {
	if r.cfg.RateLimitRequests <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.LimitByIP(r.cfg.RateLimitRequests, r.cfg.RateLimitWindow)
}

func registerRecommendationRoutes(router chi.Router, h *RecommendationHandler, limiter func(http.Handler) http.Handler) {
	router.Route("/recommendations", func(rec chi.Router) {
		rec.With(limiter).Post("/chat", h.chat)
		rec.Delete("/chat/{sessionID}", h.endSession)
		rec.Get("/{customerID}", h.getStoredRecommendations)
		rec.Get("/{customerID}/history", h.recommendFromHistory)
	})

	router.Get("/products/featured", h.featuredProducts)
}

func registerAdminRoutes(router chi.Router, rec *RecommendationHandler, idx *IndexHandler, limiter func(http.Handler) http.Handler) {
	router.Route("/admin", func(adm chi.Router) {
		adm.With(limiter).Post("/recommendations", rec.adminRecommendations)
		adm.Post("/index/sync", idx.syncIndex)
	})
}
