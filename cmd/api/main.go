package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"weddingTasks/internal/config"
	"weddingTasks/internal/handlers"
	"weddingTasks/internal/logger"
	"weddingTasks/internal/middleware"
	"weddingTasks/internal/service"
	"weddingTasks/internal/worker"

	directoryInmemory "weddingTasks/internal/repository/directory/inmemory"
	directoryPostgres "weddingTasks/internal/repository/directory/postgres"
	taskInmemory "weddingTasks/internal/repository/task/inmemory"
	taskPostgres "weddingTasks/internal/repository/task/postgres"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

func main() {
	configPath := "config.yml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		panic(err)
	}

	if err := logger.Init(cfg.Logging.Development); err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var taskRepo service.TaskRepository
	var directory service.DirectoryRepository
	shutdowns := []func(){}

	switch cfg.Repository.Type {
	case "postgres":
		if err := taskPostgres.Migrate(cfg.Database.URL, cfg.Database.MigrationsPath); err != nil {
			logger.Error("Ошибка миграций", err)
			os.Exit(1)
		}

		taskStorage, err := taskPostgres.New(ctx, cfg.Database.URL)
		if err != nil {
			logger.Error("Ошибка подключения к PostgreSQL", err)
			os.Exit(1)
		}
		shutdowns = append(shutdowns, taskStorage.Close)

		directoryStorage, err := directoryPostgres.New(ctx, cfg.Database.URL)
		if err != nil {
			logger.Error("Ошибка подключения к PostgreSQL", err)
			os.Exit(1)
		}
		shutdowns = append(shutdowns, directoryStorage.Close)

		taskRepo = taskStorage
		directory = directoryStorage
	default:
		taskRepo = taskInmemory.NewTaskStorage()
		directory = directoryInmemory.NewStorage()
	}

	taskService := service.NewTaskService(taskRepo, directory)
	dashboardService := service.NewDashboardService(taskRepo, directory)
	taskHandler := handlers.NewTaskHandler(&taskService, &dashboardService, taskService.Resolver(), directory)

	if cfg.Worker.Enabled {
		reminder := worker.NewReminderWorker(taskRepo, cfg.Worker.Schedule, &cfg.Worker.DueWindow, &cfg.Worker.BatchSize)
		if err := reminder.Start(ctx); err != nil {
			logger.Error("Ошибка запуска worker", err)
			os.Exit(1)
		}
		shutdowns = append(shutdowns, reminder.Stop)
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	r.Use(middleware.RateLimit(cfg.Server.RateLimitRPM))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", handlers.ActorHeader, "X-Request-ID"},
	}))

	r.Route("/tasks", func(r chi.Router) {
		r.Post("/create", taskHandler.PostTask)                       // POST /tasks/create
		r.Get("/wedding/{weddingId}", taskHandler.GetTasksByWedding)  // GET /tasks/wedding/{weddingId}
		r.Get("/protocol/{protocolId}", taskHandler.GetTasksByProtocol) // GET /tasks/protocol/{protocolId}

		r.Route("/{taskId}", func(r chi.Router) {
			r.Get("/", taskHandler.GetTaskByID)          // GET /tasks/{taskId}
			r.Put("/", taskHandler.UpdateTaskByID)       // PUT /tasks/{taskId}
			r.Delete("/", taskHandler.DeleteTaskByID)    // DELETE /tasks/{taskId}

			r.Patch("/accept", taskHandler.AcceptTask)       // PATCH /tasks/{taskId}/accept
			r.Patch("/reject", taskHandler.RejectTask)       // PATCH /tasks/{taskId}/reject
			r.Patch("/complete", taskHandler.CompleteTask)   // PATCH /tasks/{taskId}/complete
			r.Patch("/status", taskHandler.UpdateTaskStatus) // PATCH /tasks/{taskId}/status
		})
	})

	r.Get("/assignments/protocol/{protocolId}", taskHandler.GetAssignmentsByProtocol)
	r.Get("/weddings/id/{weddingId}", taskHandler.GetWeddingByID)
	r.Get("/guests/wedding/{weddingId}/stats", taskHandler.GetGuestStats)
	r.Get("/users/clerk/{clerkId}", taskHandler.GetUserByClerk)

	r.Route("/dashboard", func(r chi.Router) {
		r.Get("/wedding/{weddingId}", taskHandler.GetWeddingDashboard)
		r.Get("/protocol/{protocolId}", taskHandler.GetProtocolDashboard)
	})

	r.Get("/health", taskHandler.HealthCheck)

	server := &http.Server{
		Addr:    cfg.GetServerAddr(),
		Handler: r,
	}

	go func() {
		logger.Info("Server started")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Ошибка сервера", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Завершение работы...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка graceful shutdown", err)
	}

	for i := len(shutdowns) - 1; i >= 0; i-- {
		shutdowns[i]()
	}
}
