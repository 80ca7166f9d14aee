package main

import (
	"github.com/gin-gonic/gin"

	"github.com/arnavshah/clinic-scheduler-api/pkg/auth"
	"github.com/arnavshah/clinic-scheduler-api/pkg/config"
	"github.com/arnavshah/clinic-scheduler-api/pkg/database"
	"github.com/arnavshah/clinic-scheduler-api/pkg/handlers"
	"github.com/arnavshah/clinic-scheduler-api/pkg/logger"
	"github.com/arnavshah/clinic-scheduler-api/pkg/metrics"
	"github.com/arnavshah/clinic-scheduler-api/pkg/scheduler"
)

func main() {
	log := logger.New("server")

	cfg, err := config.Load()
	if err != nil {
		log.Errorf("load config: %v", err)
		return
	}
	if err := cfg.Validate(); err != nil {
		log.Errorf("invalid config: %v", err)
		return
	}
	if cfg.GinMode == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	h, err := newHandler(cfg, log)
	if err != nil {
		log.Errorf("startup: %v", err)
		return
	}

	r := gin.Default()
	h.Routes(r)

	log.Infof("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Errorf("could not run server: %v", err)
	}
}

func newHandler(cfg *config.Config, log logger.Logger) (*handlers.Handler, error) {
	db, err := database.InitDB(cfg)
	if err != nil {
		return nil, err
	}
	created, err := auth.EnsureAdminExists(db, cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		return nil, err
	}
	if created {
		log.Infof("Default admin user created: %s", cfg.AdminUsername)
	}
	sink, err := metrics.NewPromSink(nil)
	if err != nil {
		return nil, err
	}
	return &handlers.Handler{
		DB:        db,
		Auth:      auth.New(cfg.JWTSecret, cfg.APIMasterSecret),
		Scheduler: scheduler.NewScheduler(cfg.Policy, logger.New("scheduler")),
		Metrics:   sink,
		Log:       log,
	}, nil
}
