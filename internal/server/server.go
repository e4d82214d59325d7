package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"workspace/internal/access"
	"workspace/internal/activity"
	"workspace/internal/config"
	"workspace/internal/handler"
	"workspace/internal/middleware"
	"workspace/internal/realtime"
	"workspace/internal/repository"
	"workspace/migrations"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
	Config *config.Config

	log     *logrus.Logger
	stopHub context.CancelFunc
}

func Init(cfg *config.Config, log *logrus.Logger) (*Server, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	log.Info("connected to database")

	if err := runMigrations(db, log); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	log.Info("connected to redis")

	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	boardRepo := repository.NewBoardRepository(db)
	columnRepo := repository.NewColumnRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	// Domain services
	guard := access.NewGuard(userRepo, memberRepo)
	recorder := activity.NewRecorder(activityRepo, log)
	broker := realtime.NewBroker(rdb, log)
	hub := realtime.NewHub(broker, log)

	hubCtx, stopHub := context.WithCancel(context.Background())
	go hub.Run(hubCtx)

	// Handlers
	userHandler := handler.NewUserHandler(userRepo, cfg.JWTSecret, log)
	boardHandler := handler.NewBoardHandler(boardRepo, userRepo, guard, recorder, broker, log)
	columnHandler := handler.NewColumnHandler(columnRepo, boardRepo, userRepo, recorder, broker, log)
	taskHandler := handler.NewTaskHandler(taskRepo, columnRepo, userRepo, recorder, broker, log)
	memberHandler := handler.NewMemberHandler(memberRepo, boardRepo, userRepo, guard, recorder, broker, log)
	realtimeHandler := handler.NewRealtimeHandler(hub, boardRepo, log)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Public routes
	r.POST("/register", userHandler.Register)
	r.POST("/login", userHandler.Login)
	r.GET("/member", memberHandler.List)
	r.GET("/ws/:boardId", realtimeHandler.Subscribe)

	// Task routes
	r.POST("/task", taskHandler.Create)
	r.GET("/task/:id", taskHandler.Get)
	r.PUT("/task/:id", taskHandler.Update)
	r.DELETE("/task/:id", taskHandler.Delete)

	// Protected routes - require authentication
	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	{
		// Board routes
		authorized.POST("/board", boardHandler.Create)
		authorized.GET("/board/:id", boardHandler.Get)
		authorized.PUT("/board/:id", boardHandler.Update)
		authorized.DELETE("/board/:id", boardHandler.Delete)

		// Column routes
		authorized.POST("/column", columnHandler.Create)
		authorized.PUT("/column/:id", columnHandler.Update)
		authorized.DELETE("/column/:id", columnHandler.Delete)
		authorized.POST("/board/:id/columns/reorder", columnHandler.Reorder)

		// Member routes
		authorized.POST("/member", memberHandler.Add)
		authorized.PUT("/member", memberHandler.ChangeRole)
		authorized.DELETE("/member", memberHandler.Remove)
	}

	return &Server{
		Engine:  r,
		DB:      db,
		Redis:   rdb,
		Config:  cfg,
		log:     log,
		stopHub: stopHub,
	}, nil
}

func runMigrations(db *gorm.DB, log *logrus.Logger) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	driver, err := migratepg.WithInstance(sqlDB, &migratepg.Config{})
	if err != nil {
		return err
	}
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("schema up to date")
			return nil
		}
		return err
	}
	log.Info("migrations applied")
	return nil
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	go func() {
		s.log.WithField("port", s.Config.ServerPort).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.WithError(err).Fatal("listen failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	s.log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		s.log.WithError(err).Fatal("server forced to shutdown")
	}

	s.stopHub()
	if err := s.Redis.Close(); err != nil {
		s.log.WithError(err).Warn("redis close failed")
	}

	s.log.Info("server exited properly")
}
