package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/sushihentaime/blogauth/internal/blogservice"
	"github.com/sushihentaime/blogauth/internal/common"
	"github.com/sushihentaime/blogauth/internal/mailservice"
	"github.com/sushihentaime/blogauth/internal/storage"
	"github.com/sushihentaime/blogauth/internal/userservice"
)

type application struct {
	config      *Config
	logger      *slog.Logger
	userService *userservice.UserService
	blogService *blogservice.BlogService
	// limiters holds one rate limiter per client and group
	limiters *common.Cache
	// imagesDir is served under /images/ when images are kept on local disk
	imagesDir string
}

func main() {
	configPath := flag.String("config", ".env", "path to the dotenv configuration file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	err = run(cfg, logger)
	if err != nil {
		logger.Error("server stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *Config, logger *slog.Logger) error {
	ctx := context.Background()

	shutdownTracing, err := setupTracing(ctx, cfg.OTELEndpoint, cfg.Version)
	if err != nil {
		return err
	}
	defer shutdownTracing(context.Background())

	dbCfg := common.DBConfig{
		Host:         cfg.DBHost,
		Port:         cfg.DBPort,
		User:         cfg.DBUser,
		Password:     cfg.DBPassword,
		Name:         cfg.DBName,
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
		MaxIdleTime:  cfg.DBMaxIdleTime,
	}

	if cfg.DBMigrations != "" {
		m, err := common.MigrateUp(cfg.DBMigrations, dbCfg.DSN())
		if err != nil {
			return err
		}
		m.Close()
		logger.Info("database migrations applied", slog.String("source", cfg.DBMigrations))
	}

	db, err := common.NewDB(dbCfg)
	if err != nil {
		return err
	}
	defer common.CloseDB(db)

	tokens, err := userservice.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)
	if err != nil {
		return err
	}

	images, imagesDir, err := newImageStore(ctx, cfg)
	if err != nil {
		return err
	}

	// events and welcome emails are optional, without RabbitMQ the API still runs
	var producer common.MessageProducer
	if cfg.MQHost != "" {
		broker, err := common.NewMessageBroker(cfg.rabbitURI())
		if err != nil {
			return err
		}
		defer broker.Close()

		err = common.SetupUserExchange(broker)
		if err != nil {
			return err
		}
		producer = broker

		if cfg.MailHost != "" {
			mailService := mailservice.NewMailService(broker, mailservice.MailConfig{
				Host:     cfg.MailHost,
				Port:     cfg.MailPort,
				Username: cfg.MailUser,
				Password: cfg.MailPassword,
				Sender:   cfg.MailSender,
			}, logger)

			err = mailService.SendWelcomeEmail()
			if err != nil {
				return err
			}
			defer mailService.Close()
		}
	}

	app := &application{
		config:      cfg,
		logger:      logger,
		userService: userservice.NewUserService(db, producer, tokens, logger),
		blogService: blogservice.NewBlogService(db, common.NewCache(5*time.Minute, 10*time.Minute), images, cfg.BlogOwnerOnly, logger),
		limiters:    common.NewCache(limiterExpiry, time.Minute),
		imagesDir:   imagesDir,
	}

	return app.serve()
}

// newImageStore returns the configured banner store and, for local storage,
// the directory to serve.
func newImageStore(ctx context.Context, cfg *Config) (storage.ImageStore, string, error) {
	switch cfg.StorageDriver {
	case "s3":
		s, err := storage.NewS3Store(ctx, storage.S3Config{
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			BaseEndpoint: cfg.S3Endpoint,
		})
		return s, "", err
	default:
		s, err := storage.NewLocalStore(cfg.ImagesDir)
		if err != nil {
			return nil, "", err
		}
		return s, s.Dir(), nil
	}
}
