// Package catalog implements the product operations on top of a product
// repository and an image store.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rogerio-castellano/catalog-service/internal/models"
	"github.com/rogerio-castellano/catalog-service/internal/repo"
	"github.com/rogerio-castellano/catalog-service/internal/storage"
	"go.uber.org/zap"
)

// ProductInput is the decoded body of a create or update request.
type ProductInput struct {
	Name     string   `json:"name" validate:"required"`
	Brand    string   `json:"brand" validate:"required"`
	Category string   `json:"category" validate:"required"`
	Price    *float64 `json:"price" validate:"required,finite"`
	ImageURL string   `json:"image_url"`
}

// Upload is an image file received with a request.
type Upload struct {
	Filename string
	Content  io.Reader
}

type Service struct {
	products  repo.ProductRepository
	images    storage.ImageStore
	validator *validator.Validate
	log       *zap.Logger
}

func NewService(products repo.ProductRepository, images storage.ImageStore, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		products:  products,
		images:    images,
		validator: newValidator(),
		log:       log,
	}
}

func normalize(in ProductInput) ProductInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Brand = strings.TrimSpace(in.Brand)
	in.Category = strings.TrimSpace(in.Category)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	return in
}

// storeImage writes img and returns its reference; "" when img is nil.
func (s *Service) storeImage(ctx context.Context, img *Upload) (string, error) {
	if img == nil {
		return "", nil
	}
	if s.images == nil {
		return "", errors.New("image uploads are not configured")
	}
	ref, err := s.images.Save(ctx, img.Filename, img.Content)
	if err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}
	return ref, nil
}

// discardImage removes an image whose record was never committed.
func (s *Service) discardImage(ctx context.Context, ref string) {
	if ref == "" {
		return
	}
	if err := s.images.Remove(context.WithoutCancel(ctx), ref); err != nil {
		s.log.Error("failed to remove orphaned image", zap.String("ref", ref), zap.Error(err))
	}
}

// Create validates in, stores the uploaded image (if any) and then inserts
// the product. The image is removed again when the insert fails.
func (s *Service) Create(ctx context.Context, in ProductInput, img *Upload) (models.Product, error) {
	in = normalize(in)
	if err := s.validate(in, img, true); err != nil {
		return models.Product{}, err
	}

	ref, err := s.storeImage(ctx, img)
	if err != nil {
		return models.Product{}, err
	}

	product := models.Product{
		Name:     in.Name,
		Brand:    in.Brand,
		Category: in.Category,
		Price:    *in.Price,
		ImageURL: in.ImageURL,
	}
	if ref != "" {
		product.ImageURL = ref
	}

	created, err := s.products.Create(ctx, product)
	if err != nil {
		s.discardImage(ctx, ref)
		return models.Product{}, fmt.Errorf("create product: %w", err)
	}
	return created, nil
}

func (s *Service) List(ctx context.Context) ([]models.Product, error) {
	products, err := s.products.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *Service) Get(ctx context.Context, id int) (models.Product, error) {
	return s.products.GetByID(ctx, id)
}

// Update overwrites name, brand, category and price. The image reference is
// replaced only when in carries an image_url or img is set.
func (s *Service) Update(ctx context.Context, id int, in ProductInput, img *Upload) (models.Product, error) {
	in = normalize(in)
	if err := s.validate(in, img, false); err != nil {
		return models.Product{}, err
	}

	ref, err := s.storeImage(ctx, img)
	if err != nil {
		return models.Product{}, err
	}

	update := models.ProductUpdate{
		Name:     in.Name,
		Brand:    in.Brand,
		Category: in.Category,
		Price:    *in.Price,
	}
	switch {
	case ref != "":
		update.ImageURL = &ref
	case in.ImageURL != "":
		update.ImageURL = &in.ImageURL
	}

	updated, err := s.products.Update(ctx, id, update)
	if err != nil {
		s.discardImage(ctx, ref)
		if errors.Is(err, repo.ErrProductNotFound) {
			return models.Product{}, err
		}
		return models.Product{}, fmt.Errorf("update product: %w", err)
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	return s.products.Delete(ctx, id)
}
