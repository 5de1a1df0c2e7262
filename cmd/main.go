package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"stockledger/config"
	_ "stockledger/docs"
	"stockledger/internal/api/category"
	"stockledger/internal/api/ledger"
	"stockledger/internal/api/product"
	"stockledger/internal/api/router"
	"stockledger/internal/pkg/cache"
	"stockledger/internal/pkg/database"
	"stockledger/internal/pkg/events"
	"stockledger/internal/pkg/logger"
	"stockledger/internal/pkg/metrics"
	"stockledger/internal/pkg/token"
	"stockledger/internal/repository/categoryrepo"
	"stockledger/internal/repository/ledgerrepo"
	"stockledger/internal/repository/productrepo"
	"stockledger/internal/service/categoryservice"
	"stockledger/internal/service/ledgerservice"
	"stockledger/internal/service/productservice"
)

// @title StockLedger API
// @version 1.0
// @description Motor de consistência de estoque: ledger por produto, reservas e consulta de disponibilidade.
// @BasePath /v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	log.Println("⚡ Inicializando serviço StockLedger...")

	cfg := config.LoadConfig()
	appLog := logger.NewLogger(cfg.LogLevel)
	if z, ok := appLog.(*logger.ZapLogger); ok {
		defer z.Sync()
	}
	appLog.Info("Configurações carregadas.", map[string]interface{}{"env": cfg.Environment})

	// 1. Infraestrutura
	db, err := database.NewPostgresDB(cfg.DatabaseURL, appLog)
	if err != nil {
		appLog.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close()
	appLog.Info("Conexão PostgreSQL estabelecida.", nil)

	cacheClient := cache.NewRedisClient(cfg.RedisAddr, appLog)
	defer cacheClient.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.RabbitMQURL != "" {
		rabbit, err := events.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange, appLog)
		if err != nil {
			appLog.Fatal("Falha ao conectar ao RabbitMQ.", err)
		}
		defer rabbit.Close()
		publisher = rabbit
		appLog.Info("Publicação de eventos habilitada.", map[string]interface{}{"exchange": cfg.RabbitMQExchange})
	} else {
		appLog.Warn("RABBITMQ_URL não definido; eventos de estoque desativados.", nil)
	}

	// 2. Injeção de dependências: Repository -> Service -> Handler
	categoryRepo := categoryrepo.NewCategoryRepository(db, cfg.DBTimeout, appLog)
	productRepo := productrepo.NewProductRepository(db, cacheClient, cfg.DBTimeout, cfg.CacheTTL, appLog)
	ledgerRepo := ledgerrepo.NewPostgresRepository(db, cfg.DBTimeout, cfg.DBLockTimeout, appLog)

	categorySvc := categoryservice.NewService(categoryRepo, appLog)
	productSvc := productservice.NewService(productRepo, appLog)
	ledgerSvc := ledgerservice.NewService(ledgerRepo, productRepo, publisher, appMetrics, appLog)

	handlers := router.Handlers{
		Ledger:   ledger.NewHandler(ledgerSvc, appLog),
		Product:  product.NewHandler(productSvc, appLog),
		Category: category.NewHandler(categorySvc, appLog),
	}

	// A identidade é emitida externamente; aqui o token só é validado.
	tokenSvc := token.NewService(cfg.JWTSecretKey, 0)

	r := router.NewRouter(handlers, router.Options{
		TokenService:    tokenSvc,
		Cache:           cacheClient,
		RateLimit:       cfg.RateLimitMaxRequests,
		RateLimitWindow: cfg.RateLimitPeriod,
		Metrics:         appMetrics,
		Gatherer:        registry,
		Logger:          appLog,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 3. Execução e Graceful Shutdown
	go func() {
		appLog.Info("Servidor StockLedger ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal("Servidor falhou.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	appLog.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLog.Error("Desligamento do servidor forçado.", err)
	}

	appLog.Info("Servidor encerrado com sucesso.", nil)
}
