package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vnkhanh/e-course-backend/config"
	"github.com/vnkhanh/e-course-backend/controllers"
	"github.com/vnkhanh/e-course-backend/middleware"
	"github.com/vnkhanh/e-course-backend/routes"
	"github.com/vnkhanh/e-course-backend/services"
	"github.com/vnkhanh/e-course-backend/utils"
	"github.com/vnkhanh/e-course-backend/ws"
)

func main() {
	settings := config.Load()
	log := config.InitLogger(settings.GinMode)
	defer log.Sync()

	if settings.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	utils.SetJWTSecret(settings.JWTSecret)
	gin.SetMode(settings.GinMode)

	config.InitDB(settings)

	ctx := context.Background()
	files, err := utils.NewFileStore(ctx, settings)
	if err != nil {
		log.Fatal("cannot init file storage", zap.Error(err))
	}
	videos := services.NewMuxClient(settings.MuxBaseURL, settings.MuxTokenID, settings.MuxTokenSecret, settings.MuxTimeout)

	cleaner := services.NewCleaner(files, videos, log, settings.CleanupMaxAttempts)
	job, err := cleaner.Start(config.DB, settings.CleanupSchedule)
	if err != nil {
		log.Fatal("cannot start cleanup job", zap.Error(err))
	}

	v := utils.Validator()
	h := &controllers.Handler{
		DB: config.DB,
		Courses: &services.CourseService{
			DB:      config.DB,
			Cleaner: cleaner,
			Fields:  services.CourseFields(v),
			Log:     log,
		},
		Chapters: &services.ChapterService{
			DB:      config.DB,
			Videos:  videos,
			Cleaner: cleaner,
			Fields:  services.ChapterFields(v),
			Log:     log,
		},
		Attachments: &services.AttachmentService{DB: config.DB, Cleaner: cleaner},
		Uploads:     &services.UploadService{Files: files},
		Hub:         ws.NewHub(log),
		Log:         log,
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     settings.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Auth-Token"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	routes.SetupRouter(r, h, settings.CORSOrigins)

	srv := &http.Server{
		Addr:    ":" + settings.Port,
		Handler: r,
	}
	go func() {
		log.Info("server running", zap.String("port", settings.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	<-job.Stop().Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
}
