package router

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"stockledger/internal/api/category"
	"stockledger/internal/api/ledger"
	"stockledger/internal/api/product"
	"stockledger/internal/pkg/cache"
	"stockledger/internal/pkg/logger"
	"stockledger/internal/pkg/metrics"
	"stockledger/internal/pkg/middleware"
)

// Handlers reúne os handlers HTTP já inicializados no main.
type Handlers struct {
	Ledger   *ledger.Handler
	Product  *product.Handler
	Category *category.Handler
}

// Options carrega as dependências transversais do roteador.
type Options struct {
	TokenService    middleware.TokenService
	Cache           cache.Client // nil desativa o rate limiter
	RateLimit       int
	RateLimitWindow time.Duration
	Metrics         *metrics.Metrics
	Gatherer        prometheus.Gatherer
	Logger          logger.Logger
}

// NewRouter configura e retorna o roteador HTTP principal.
// Rotas que alteram estado exigem token; leituras são públicas.
func NewRouter(h Handlers, opts Options) http.Handler {
	mux := http.NewServeMux()
	auth := middleware.NewAuthMiddleware(opts.TokenService)

	// Health check, métricas e documentação
	mux.HandleFunc("GET /ping", PingHandler)
	mux.Handle("GET /metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	// Categorias
	mux.HandleFunc("GET /v1/categories", h.Category.GetAllCategoriesHandler)
	mux.HandleFunc("POST /v1/categories", auth(h.Category.CreateCategoryHandler))
	mux.HandleFunc("GET /v1/categories/{id}", h.Category.GetCategoryByIDHandler)
	mux.HandleFunc("PUT /v1/categories/{id}", auth(h.Category.UpdateCategoryHandler))
	mux.HandleFunc("DELETE /v1/categories/{id}", auth(h.Category.DeleteCategoryHandler))

	// Produtos
	mux.HandleFunc("GET /v1/products", h.Product.GetAllProductsHandler)
	mux.HandleFunc("POST /v1/products", auth(h.Product.CreateProductHandler))
	mux.HandleFunc("GET /v1/products/{id}", h.Product.GetProductByIDHandler)
	mux.HandleFunc("PUT /v1/products/{id}", auth(h.Product.UpdateProductHandler))
	mux.HandleFunc("DELETE /v1/products/{id}", auth(h.Product.DeleteProductHandler))

	// Ledger de estoque
	mux.HandleFunc("POST /v1/inventory", auth(h.Ledger.CreateLedgerHandler))
	mux.HandleFunc("GET /v1/inventory/low-stock", h.Ledger.ListLowStockHandler)
	mux.HandleFunc("GET /v1/inventory/{productID}", h.Ledger.GetLedgerHandler)
	mux.HandleFunc("PATCH /v1/inventory/{productID}", auth(h.Ledger.UpdateLedgerHandler))
	mux.HandleFunc("DELETE /v1/inventory/{productID}", auth(h.Ledger.DeleteLedgerHandler))
	mux.HandleFunc("POST /v1/inventory/{productID}/reserve", auth(h.Ledger.ReserveHandler))
	mux.HandleFunc("POST /v1/inventory/{productID}/release", auth(h.Ledger.ReleaseHandler))
	mux.HandleFunc("POST /v1/inventory/{productID}/increase", auth(h.Ledger.IncreaseHandler))
	mux.HandleFunc("POST /v1/inventory/{productID}/decrease", auth(h.Ledger.DecreaseHandler))
	mux.HandleFunc("GET /v1/inventory/{productID}/check", h.Ledger.CheckAvailabilityHandler)
	mux.HandleFunc("GET /v1/inventory/{productID}/adjustments", h.Ledger.ListAdjustmentsHandler)

	var handler http.Handler = mux
	if opts.Cache != nil {
		handler = middleware.RateLimiter(opts.Cache, opts.RateLimit, opts.RateLimitWindow, opts.Logger)(handler)
	}
	return middleware.Observability(opts.Metrics, opts.Logger)(handler)
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
