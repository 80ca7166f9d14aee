package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/clinic-scheduler-api/pkg/auth"
	"github.com/arnavshah/clinic-scheduler-api/pkg/config"
	"github.com/arnavshah/clinic-scheduler-api/pkg/database"
	"github.com/arnavshah/clinic-scheduler-api/pkg/handlers"
	"github.com/arnavshah/clinic-scheduler-api/pkg/logger"
	"github.com/arnavshah/clinic-scheduler-api/pkg/metrics"
	"github.com/arnavshah/clinic-scheduler-api/pkg/scheduler"
)

var r *gin.Engine

func init() {
	log := logger.New("api")
	gin.SetMode(gin.ReleaseMode)
	r = gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	cfg, err := config.Load()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		log.Errorf("load config: %v", err)
		r.NoRoute(unavailable)
		return
	}
	db, err := database.InitDB(cfg)
	if err != nil {
		log.Errorf("init db: %v", err)
		r.NoRoute(unavailable)
		return
	}
	if _, err := auth.EnsureAdminExists(db, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Errorf("seed admin: %v", err)
	}
	sink, err := metrics.NewPromSink(nil)
	if err != nil {
		log.Errorf("metrics: %v", err)
	}

	h := &handlers.Handler{
		DB:        db,
		Auth:      auth.New(cfg.JWTSecret, cfg.APIMasterSecret),
		Scheduler: scheduler.NewScheduler(cfg.Policy, logger.New("scheduler")),
		Metrics:   sink,
		Log:       log,
	}
	h.Routes(r)
}

func unavailable(c *gin.Context) {
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service not configured"})
}

// Handler is the entry point for Vercel Go Runtime
func Handler(w http.ResponseWriter, req *http.Request) {
	r.ServeHTTP(w, req)
}
