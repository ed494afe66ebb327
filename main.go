package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"floryn/internal/app"
	"floryn/internal/config"
	"floryn/internal/database"
	"floryn/internal/logger"
	"floryn/internal/services"
	"floryn/internal/storage"
	"floryn/pkg/rabbitmq"
)

const shutdownTimeout = 10 * time.Second

// server bundles the HTTP app with the resources it must release on exit.
type server struct {
	app *fiber.App
	db  *gorm.DB
	mq  *rabbitmq.Client
}

func main() {
	// --- Configuration ---
	cfg, err := config.Load(viper.New(), ".env")
	if err != nil {
		logger.L().Fatal("Failed to load configuration", zap.Error(err))
	}
	logger.Init(cfg.AppEnv)
	defer logger.Sync()
	log := logger.L()

	srv, err := newServer(cfg)
	if err != nil {
		log.Fatal("Failed to initialize server", zap.Error(err))
	}
	defer srv.close()

	if srv.mq != nil {
		go func() {
			log.Info("Starting RabbitMQ consumer for order events")
			if err := srv.mq.ConsumeOrderEvents(rabbitmq.LogOrderEvents(log)); err != nil {
				log.Error("RabbitMQ consumer stopped", zap.Error(err))
			}
		}()
	}

	// --- Start HTTP Server ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("Starting server", zap.String("addr", cfg.AppPort))
		if err := srv.app.Listen(cfg.AppPort); err != nil {
			log.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	<-quit
	log.Info("Shutting down server")
	if err := srv.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.Error("Error during Fiber shutdown", zap.Error(err))
	}
	log.Info("Server gracefully stopped")
}

// newServer opens the database, bootstraps the schema and admin account,
// connects to the broker when one is configured and builds the app.
func newServer(cfg *config.Config) (*server, error) {
	log := logger.L()

	db, err := database.Open(database.Options{
		Driver:          cfg.DBDriver,
		DSN:             cfg.DBDSN,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		LogQueries:      !cfg.IsProduction() && cfg.AppEnv != "test",
	})
	if err != nil {
		return nil, err
	}
	srv := &server{db: db}

	if err := database.Migrate(db); err != nil {
		srv.close()
		return nil, err
	}
	created, err := database.EnsureAdmin(db, "Administrator", cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		srv.close()
		return nil, err
	}
	if created {
		log.Info("Created bootstrap admin", zap.String("email", cfg.AdminEmail))
	}

	images := storage.NewOSImageStore(cfg.UploadDir)
	if err := images.EnsureDir(); err != nil {
		srv.close()
		return nil, err
	}

	// The order service needs a nil interface, not a nil *Client, to skip events.
	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, log)
		if err != nil {
			log.Warn("RabbitMQ unavailable, order events disabled", zap.Error(err))
		} else {
			srv.mq = mq
			publisher = mq
		}
	}

	srv.app = app.New(app.Dependencies{
		Config:    cfg,
		DB:        db,
		Images:    images,
		Publisher: publisher,
	})
	return srv, nil
}

func (s *server) close() {
	log := logger.L()
	if s.mq != nil {
		if err := s.mq.Close(); err != nil {
			log.Warn("Failed to close RabbitMQ client", zap.Error(err))
		}
	}
	if err := database.Close(s.db); err != nil {
		log.Warn("Failed to close database", zap.Error(err))
	}
}
