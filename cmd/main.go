package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lshigami/eps-topik/config"
	"github.com/lshigami/eps-topik/database"
	"github.com/lshigami/eps-topik/internal/cache"
	adminctrl "github.com/lshigami/eps-topik/internal/controller/admin"
	userctrl "github.com/lshigami/eps-topik/internal/controller/user"
	"github.com/lshigami/eps-topik/internal/event"
	"github.com/lshigami/eps-topik/internal/logger"
	"github.com/lshigami/eps-topik/internal/middleware"
	"github.com/lshigami/eps-topik/internal/model"
	"github.com/lshigami/eps-topik/internal/repository"
	"github.com/lshigami/eps-topik/internal/service"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

//go:generate swag init -g cmd/main.go -o docs

// @title EPS-TOPIK Practice Exam API
// @version 1.0
// @description Timed EPS-TOPIK reading/listening practice exams: attempt lifecycle, scoring, statistics and plan quotas.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()

	app := fx.New(
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			cache.NewRedisClient,
			cache.NewAnswerKeyCache,
			event.NewPublisher,
			middleware.NewAuthenticator,
			NewGinEngine,
		),

		fx.Provide(
			repository.NewTransactor,
			repository.NewQuestionRepository,
			repository.NewExamRepository,
			repository.NewAttemptRepository,
			repository.NewAnswerSlotRepository,
			repository.NewUserStatsRepository,
			repository.NewPlanRepository,
			repository.NewSubscriptionRepository,
		),

		fx.Provide(
			service.NewEntitlementService,
			service.NewStudyCoachService,
			service.NewQuestionService,
			service.NewExamService,
			service.NewUserStatsService,
			service.NewAttemptService,
		),

		fx.Provide(
			adminctrl.NewQuestionController,
			adminctrl.NewExamController,
			adminctrl.NewPlanController,
			userctrl.NewAttemptController,
			userctrl.NewCatalogController,
		),

		fx.Invoke(ApplyLogLevel),
		fx.Invoke(AutoMigrateDB),
		fx.Invoke(RegisterRoutesAndStartServer),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
	stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		log.Error().Err(err).Msg("Error during shutdown")
	}
}

func ApplyLogLevel(cfg *config.Config) {
	logger.SetLevel(cfg.LogLevel)
}

func NewGinEngine(cfg *config.Config) *gin.Engine {
	if cfg.Server.GinMode != "" {
		gin.SetMode(cfg.Server.GinMode)
	}

	r := gin.New()
	r.Use(middleware.RequestIDMiddleware())
	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("request_id", param.Request.Header.Get(middleware.HeaderRequestID)).
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// http://localhost:PORT/swagger/index.html once `go generate` has produced docs/
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	return r
}

func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	auth *middleware.Authenticator,
	adminQuestionCtrl *adminctrl.QuestionController,
	adminExamCtrl *adminctrl.ExamController,
	adminPlanCtrl *adminctrl.PlanController,
	attemptCtrl *userctrl.AttemptController,
	catalogCtrl *userctrl.CatalogController,
) {
	api := router.Group("/api/v1", auth.RequireAuth())
	attemptCtrl.RegisterRoutes(api)
	catalogCtrl.RegisterRoutes(api)

	admin := api.Group("/admin", middleware.RequireAdmin())
	adminQuestionCtrl.RegisterRoutes(admin)
	adminExamCtrl.RegisterRoutes(admin)
	adminPlanCtrl.RegisterRoutes(admin)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("EPS-TOPIK API server starting on port %s", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.Question{},
		&model.Exam{},
		&model.Attempt{},
		&model.AnswerSlot{},
		&model.UserStats{},
		&model.Plan{},
		&model.UserSubscription{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
