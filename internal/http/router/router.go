package router

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	_ "github.com/rogerio-castellano/catalog-service/docs"
	"github.com/rogerio-castellano/catalog-service/internal/http/handlers"
	mw "github.com/rogerio-castellano/catalog-service/internal/http/middleware"
	rl "github.com/rogerio-castellano/catalog-service/internal/http/rate_limiter"
	"github.com/rogerio-castellano/catalog-service/internal/storage"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type Options struct {
	Log *zap.Logger
	// RateLimiter is optional; nil disables rate limiting.
	RateLimiter *rl.RateLimiter
	// UploadDir is served under UploadURLPrefix when set.
	UploadDir       string
	UploadURLPrefix string
	// TrustProxy takes the client IP from X-Forwarded-For and related
	// headers. Only enable it behind a proxy that overwrites them.
	TrustProxy bool
}

func NewRouter(h *handlers.Handler, opts Options) http.Handler {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if opts.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(mw.RequestLogger(log))
	r.Use(chimw.Recoverer)
	if opts.RateLimiter != nil {
		r.Use(opts.RateLimiter.Middleware)
	}

	r.Get("/", h.WelcomeHandler)
	r.Get("/health", h.HealthHandler)

	r.Route("/products", func(r chi.Router) {
		r.Post("/", h.CreateProductHandler)
		r.Get("/", h.GetProductsHandler)
		r.Get("/{id}", h.GetProductByIDHandler)
		r.Put("/{id}", h.UpdateProductHandler)
		r.Delete("/{id}", h.DeleteProductHandler)
	})

	if opts.UploadDir != "" {
		prefix := storage.URLPrefix(opts.UploadURLPrefix)
		r.Handle(prefix+"/*", uploadsHandler(prefix, opts.UploadDir))
	}

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return r
}

// uploadsHandler serves stored images. Directory listings are not served.
func uploadsHandler(prefix, dir string) http.Handler {
	files := http.StripPrefix(prefix, http.FileServer(http.Dir(dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		// Uploaded names are unique, so a served file never changes.
		w.Header().Set("Cache-Control", "public, max-age=86400")
		files.ServeHTTP(w, r)
	})
}
