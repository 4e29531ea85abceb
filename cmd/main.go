package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hollyoake/coursemark/config"
	"github.com/hollyoake/coursemark/database"
	"github.com/hollyoake/coursemark/internal/auth"
	"github.com/hollyoake/coursemark/internal/cache"
	adminctrl "github.com/hollyoake/coursemark/internal/controller/admin"
	userctrl "github.com/hollyoake/coursemark/internal/controller/user"
	"github.com/hollyoake/coursemark/internal/logger"
	"github.com/hollyoake/coursemark/internal/model"
	"github.com/hollyoake/coursemark/internal/repository"
	"github.com/hollyoake/coursemark/internal/service"
	"github.com/hollyoake/coursemark/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title Coursemark Assessment API
// @version 1.0
// @description Quiz attempt, manual grading and analytics engine for course assessments.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()

	app := fx.New(
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			NewRedisClient,
			NewSummaryCache,
			NewBlobStore,
			NewGinEngine,
		),

		fx.Provide(
			repository.NewCourseRepository,
			repository.NewQuizRepository,
			repository.NewEnrolmentRepository,
			repository.NewAttemptRepository,
			repository.NewResponseRepository,
			repository.NewAssignmentRepository,
			repository.NewSubmissionRepository,
		),

		fx.Provide(
			service.NewLoggingTaskCompleter,
			service.NewAttemptService,
			service.NewGradingService,
			service.NewSummaryService,
			service.NewSubmissionService,
		),

		fx.Provide(
			adminctrl.NewGradingController,
			userctrl.NewAssessmentController,
		),

		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(AutoMigrateDB),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewRedisClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Host + ":" + cfg.Redis.Port,
	})
}

func NewSummaryCache(client *redis.Client) cache.SummaryCache {
	return cache.NewRedisSummaryCache(client)
}

func NewBlobStore(cfg *config.Config) (storage.BlobStore, error) {
	return storage.NewFSStore(cfg.UploadDir)
}

func NewGinEngine() *gin.Engine {
	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer configures API routes and manages the server
// lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	gradingCtrl *adminctrl.GradingController,
	assessmentCtrl *userctrl.AssessmentController,
) {
	api := router.Group("/api/v1")
	api.Use(auth.Middleware(cfg.JWTSecret))
	{
		api.GET("/courses/:course_id/quizzes/:quiz_id/start", assessmentCtrl.StartQuiz)
		api.POST("/courses/:course_id/quizzes/:quiz_id/attempts", assessmentCtrl.FinishQuiz)
		api.GET("/courses/:course_id/quizzes/:quiz_id/attempt", assessmentCtrl.GetAttemptID)
		api.GET("/courses/:course_id/attempts/:attempt_id", assessmentCtrl.GetAttemptDetails)

		api.GET("/courses/:course_id/students/:student_id/tag-summary", assessmentCtrl.GetTagSummary)
		api.GET("/courses/:course_id/students/:student_id/grade-summary", assessmentCtrl.GetGradeSummary)
		api.GET("/courses/:course_id/students/:student_id/incorrect-questions", assessmentCtrl.GetIncorrectQuestions)

		api.POST("/courses/:course_id/assignments/:assignment_id/submissions", assessmentCtrl.SubmitAssignment)
		api.GET("/courses/:course_id/my-submissions", assessmentCtrl.ListMySubmissions)
		api.GET("/submissions/:submission_id/download", assessmentCtrl.DownloadSubmission)
	}

	adminAPI := api.Group("/admin")
	{
		adminAPI.PUT("/courses/:course_id/responses/:response_id/mark", gradingCtrl.GradeResponse)
		adminAPI.PUT("/courses/:course_id/submissions/:submission_id/grade", gradingCtrl.GradeSubmission)
		adminAPI.GET("/courses/:course_id/quizzes/:quiz_id/ungraded-responses", gradingCtrl.ListUngradedResponses)
		adminAPI.GET("/courses/:course_id/assignments/:assignment_id/ungraded-submissions", gradingCtrl.ListUngradedSubmissions)
		adminAPI.GET("/courses/:course_id/summary", gradingCtrl.GetCourseSummary)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Coursemark API server starting on port %s", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.Enrolment{},
		&model.Quiz{},
		&model.Question{},
		&model.Choice{},
		&model.QuizAttempt{},
		&model.QuestionResponse{},
		&model.Assignment{},
		&model.AssignmentSubmission{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
