package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/flicky/haatbazar-api/internal/assist"
	"github.com/flicky/haatbazar-api/internal/config"
	"github.com/flicky/haatbazar-api/internal/events"
	"github.com/flicky/haatbazar-api/internal/handler"
	"github.com/flicky/haatbazar-api/internal/metrics"
	"github.com/flicky/haatbazar-api/internal/payment"
	"github.com/flicky/haatbazar-api/internal/repository"
	"github.com/flicky/haatbazar-api/internal/service"
	"github.com/flicky/haatbazar-api/internal/worker"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := run(log); err != nil {
		log.Error("fatal", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(log *slog.Logger) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("load .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// PostgreSQL
	poolCfg, err := pgxpool.ParseConfig(cfg.DB.DSN())
	if err != nil {
		return fmt.Errorf("parse db config: %w", err)
	}
	poolCfg.MaxConns = cfg.DB.MaxConns

	dbPool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	log.Info("connected to PostgreSQL")

	// Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("connect to Redis: %w", err)
	}
	log.Info("connected to Redis")

	// Order events
	var (
		publisher  events.Publisher = events.Nop{}
		subscriber events.Subscriber
		amqpConn   *amqp.Connection
	)
	switch cfg.Events.Driver {
	case "amqp":
		amqpConn, err = amqp.Dial(cfg.RabbitMQ.URL)
		if err != nil {
			return fmt.Errorf("connect to RabbitMQ: %w", err)
		}
		defer amqpConn.Close()

		pubCh, err := amqpConn.Channel()
		if err != nil {
			return fmt.Errorf("open RabbitMQ channel: %w", err)
		}
		defer pubCh.Close()
		if err := events.SetupRabbitMQ(pubCh); err != nil {
			return fmt.Errorf("setup RabbitMQ: %w", err)
		}

		subCh, err := amqpConn.Channel()
		if err != nil {
			return fmt.Errorf("open RabbitMQ consumer channel: %w", err)
		}
		defer subCh.Close()
		if err := subCh.Qos(1, 0, false); err != nil {
			return fmt.Errorf("set QoS: %w", err)
		}

		publisher = events.NewAMQPPublisher(pubCh)
		subscriber = events.NewAMQPSubscriber(subCh, log)
		log.Info("connected to RabbitMQ")
	case "kafka":
		kp := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kp.Close()
		publisher = kp
		subscriber = events.NewKafkaSubscriber(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID, log)
		log.Info("using Kafka for order events", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	default:
		log.Info("order events disabled")
	}
	if subscriber != nil {
		defer subscriber.Close()
	}

	m := metrics.New()
	assistant := assist.WithTimeout(assist.Nop{}, cfg.AI.Timeout, log)

	// Repositories
	userRepo := repository.NewUserRepository(dbPool)
	shopRepo := repository.NewShopRepository(dbPool)
	productRepo := repository.NewProductRepository(dbPool)
	cartRepo := repository.NewCartRepository(dbPool)
	orderRepo := repository.NewOrderRepository(dbPool)
	reviewRepo := repository.NewReviewRepository(dbPool)
	postRepo := repository.NewPostRepository(dbPool)

	// Services
	authSvc := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	catalogSvc := service.NewCatalogService(shopRepo, productRepo, userRepo, redisClient)
	cartSvc := service.NewCartService(cartRepo, productRepo, orderRepo)
	orderSvc := service.NewOrderService(orderRepo, cartRepo, shopRepo, userRepo,
		payment.NewSimulator(cfg.Orders.PaymentDelay), publisher, m,
		service.OrderPolicy{SpamWindow: cfg.Orders.SpamWindow, SpamThreshold: cfg.Orders.SpamThreshold}, log)
	reviewSvc := service.NewReviewService(reviewRepo, userRepo, orderRepo, catalogSvc, m)
	feedSvc := service.NewFeedService(postRepo, shopRepo, productRepo, assistant)
	notifySvc := service.NewNotificationService(orderRepo, shopRepo, redisClient,
		cfg.Orders.NotifyWindow, cfg.Orders.NotifyInterval)

	// Workers
	poller := worker.NewNotificationPoller(notifySvc, cfg.Orders.NotifyInterval, m, log.With("worker", "notification_poller"))
	eventHandler := worker.NewOrderEventHandler(notifySvc, redisClient, cfg.Orders.EventIdempotencyTTL, log.With("worker", "order_events"))

	router := handler.NewRouter(log, cfg.JWT.Secret, handler.Handlers{
		Auth:    handler.NewAuthHandler(authSvc),
		Shop:    handler.NewShopHandler(catalogSvc),
		Cart:    handler.NewCartHandler(cartSvc),
		Order:   handler.NewOrderHandler(orderSvc, notifySvc, cfg.Orders.NotifyInterval, cfg.Orders.DashboardRefresh),
		Review:  handler.NewReviewHandler(reviewSvc),
		Feed:    handler.NewFeedHandler(feedSvc, catalogSvc),
		Assist:  handler.NewAssistHandler(assistant),
		Health:  handler.NewHealthHandler(dbPool, redisClient, amqpConn),
		Metrics: m.Handler(),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting HTTP server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error { return poller.Run(gctx) })
	if subscriber != nil {
		g.Go(func() error {
			log.Info("order event consumer started", "driver", cfg.Events.Driver)
			return subscriber.Subscribe(gctx, eventHandler.Handle)
		})
	}
	return g.Wait()
}
