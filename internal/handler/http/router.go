package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/freshdrop/rewards/internal/service"
	"github.com/freshdrop/rewards/pkg/health"
	"github.com/freshdrop/rewards/pkg/middleware"
)

// NewRouter creates a chi router with all rewards service routes registered.
func NewRouter(
	rewardService *service.RewardService,
	healthHandler *health.Handler,
	pprofCIDRs []string,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Tracing("rewards"))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics("rewards"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	middleware.RegisterPprof(r, pprofCIDRs, logger)

	rewardHandler := NewRewardHandler(rewardService, logger)

	r.Route("/api/v1/campaigns", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/", rewardHandler.CreateCampaign)
		r.Get("/", rewardHandler.ListCampaigns)

		r.Get("/{id}", rewardHandler.GetCampaign)
		r.Put("/{id}", rewardHandler.UpdateCampaign)
		r.Delete("/{id}", rewardHandler.DeleteCampaign)
		r.Post("/{id}/duplicate", rewardHandler.DuplicateCampaign)
		r.Post("/{id}/activate", rewardHandler.ActivateCampaign)
		r.Post("/{id}/deactivate", rewardHandler.DeactivateCampaign)
		r.Get("/{id}/spins", rewardHandler.SpinsUsed)
	})

	r.Route("/api/v1/scratch-rewards", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/", rewardHandler.CreateScratchReward)
		r.With(middleware.CacheControl(30)).Get("/", rewardHandler.ListScratchRewards)
		r.Get("/{id}", rewardHandler.GetScratchReward)
		r.Put("/{id}", rewardHandler.UpdateScratchReward)
	})

	r.Route("/api/v1/spins", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/", rewardHandler.Spin)
		r.Get("/", rewardHandler.SpinHistory)
	})

	r.Route("/api/v1/scratch", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/", rewardHandler.Scratch)
	})

	return r
}
