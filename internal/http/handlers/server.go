package handlers

import (
	"context"

	"github.com/rogerio-castellano/catalog-service/internal/catalog"
	"github.com/rogerio-castellano/catalog-service/internal/models"
	"go.uber.org/zap"
)

const defaultMaxUploadBytes = 10 << 20

// ProductService is the set of catalog operations the handlers call.
type ProductService interface {
	Create(ctx context.Context, in catalog.ProductInput, img *catalog.Upload) (models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
	Get(ctx context.Context, id int) (models.Product, error)
	Update(ctx context.Context, id int, in catalog.ProductInput, img *catalog.Upload) (models.Product, error)
	Delete(ctx context.Context, id int) error
}

// Pinger reports whether the database is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	products       ProductService
	db             Pinger
	log            *zap.Logger
	maxUploadBytes int64
}

func NewHandler(products ProductService, db Pinger, log *zap.Logger, maxUploadBytes int64) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &Handler{
		products:       products,
		db:             db,
		log:            log,
		maxUploadBytes: maxUploadBytes,
	}
}
