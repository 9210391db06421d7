package handlers

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rogerio-castellano/catalog-service/internal/catalog"
	repo "github.com/rogerio-castellano/catalog-service/internal/repo"
	"go.uber.org/zap"
)

// multipartMemory is the part of a multipart body kept in memory; the rest
// of an uploaded file spills to a temporary file.
const multipartMemory = 32 << 10

const imageField = "image"

// WelcomeHandler godoc
// @Summary Welcome message
// @Tags meta
// @Produce json
// @Success 200 {object} MessageResponse
// @Router / [get]
func (h *Handler) WelcomeHandler(w http.ResponseWriter, r *http.Request) {
	_ = writeJSON(w, http.StatusOK, MessageResponse{Message: "Welcome to the Catalog Service API!"})
}

// HealthHandler godoc
// @Summary Liveness and database check
// @Tags meta
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			h.log.Error("health check failed", zap.String("request_id", middleware.GetReqID(r.Context())), zap.Error(err))
			_ = writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable"})
			return
		}
	}
	_ = writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// CreateProductHandler godoc
// @Summary Create a new product
// @Description Adds a product to the catalog. Send JSON with image_url, or multipart/form-data with an image file.
// @Tags products
// @Accept json,mpfd
// @Produce json
// @Param product body ProductRequest true "Product to add"
// @Success 201 {object} CreateProductResponse
// @Failure 400 {array} ProductValidationError
// @Failure 413 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /products [post]
func (h *Handler) CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	req, upload, cleanup, err := h.decodeProductRequest(w, r)
	if err != nil {
		writeError(w, requestStatus(err), err.Error())
		return
	}
	defer cleanup()

	created, err := h.products.Create(r.Context(), toProductInput(req), upload)
	if err != nil {
		h.writeServiceError(w, r, "create", err)
		return
	}

	_ = writeJSON(w, http.StatusCreated, CreateProductResponse{
		Message:   "Product added successfully",
		ProductID: created.ID,
	})
}

// GetProductsHandler godoc
// @Summary List all products
// @Tags products
// @Produce json
// @Success 200 {array} ProductResponse
// @Failure 500 {object} ErrorResponse
// @Router /products [get]
func (h *Handler) GetProductsHandler(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, "fetch", err)
		return
	}
	response := make([]ProductResponse, len(products))
	for i, p := range products {
		response[i] = toProductResponse(p)
	}
	_ = writeJSON(w, http.StatusOK, response)
}

// GetProductByIDHandler godoc
// @Summary Get product by ID
// @Tags products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} ProductResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /products/{id} [get]
func (h *Handler) GetProductByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.products.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, "fetch", err)
		return
	}
	_ = writeJSON(w, http.StatusOK, toProductResponse(product))
}

// UpdateProductHandler godoc
// @Summary Update a product
// @Description Overwrites name, brand, category and price. The image is replaced only when image_url or an image file is sent.
// @Tags products
// @Accept json,mpfd
// @Produce json
// @Param id path int true "Product ID"
// @Param product body ProductRequest true "Updated product"
// @Success 200 {object} MessageResponse
// @Failure 400 {array} ProductValidationError
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /products/{id} [put]
func (h *Handler) UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req, upload, cleanup, err := h.decodeProductRequest(w, r)
	if err != nil {
		writeError(w, requestStatus(err), err.Error())
		return
	}
	defer cleanup()

	if errs := idMismatch(id, req.Id); len(errs) > 0 {
		_ = writeJSON(w, http.StatusBadRequest, errs)
		return
	}

	if _, err := h.products.Update(r.Context(), id, toProductInput(req), upload); err != nil {
		h.writeServiceError(w, r, "update", err)
		return
	}
	_ = writeJSON(w, http.StatusOK, MessageResponse{Message: "Product updated successfully"})
}

// DeleteProductHandler godoc
// @Summary Delete a product
// @Tags products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /products/{id} [delete]
func (h *Handler) DeleteProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.products.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, r, "delete", err)
		return
	}
	_ = writeJSON(w, http.StatusOK, MessageResponse{Message: "Product deleted successfully"})
}

func productID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		return 0, errors.New("invalid product ID")
	}
	return id, nil
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var verrs catalog.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		_ = writeJSON(w, http.StatusBadRequest, []ProductValidationError(verrs))
	case errors.Is(err, repo.ErrProductNotFound):
		writeError(w, http.StatusNotFound, "product not found")
	default:
		h.log.Error("could not "+op+" product",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "could not "+op+" product")
	}
}

func toProductInput(req ProductRequest) catalog.ProductInput {
	return catalog.ProductInput{
		Name:     req.Name,
		Brand:    req.Brand,
		Category: req.Category,
		Price:    req.Price,
		ImageURL: req.ImageURL,
	}
}

// decodeProductRequest reads a JSON or multipart/form-data product body.
// The returned func releases the upload and must be called once the
// request is done.
func (h *Handler) decodeProductRequest(w http.ResponseWriter, r *http.Request) (ProductRequest, *catalog.Upload, func(), error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return h.readMultipart(w, r)
	}

	var req ProductRequest
	if err := readJSON(w, r, &req); err != nil {
		return ProductRequest{}, nil, nil, err
	}
	return req, nil, func() {}, nil
}

func (h *Handler) readMultipart(w http.ResponseWriter, r *http.Request) (ProductRequest, *catalog.Upload, func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return ProductRequest{}, nil, nil, fmt.Errorf("failed to read multipart form: %w", err)
	}
	form := r.MultipartForm

	cleanup := func() { _ = form.RemoveAll() }

	req, err := productRequestFromForm(form)
	if err != nil {
		cleanup()
		return ProductRequest{}, nil, nil, err
	}

	files := form.File[imageField]
	if len(files) == 0 {
		return req, nil, cleanup, nil
	}

	fh := files[0]
	f, err := fh.Open()
	if err != nil {
		cleanup()
		return ProductRequest{}, nil, nil, fmt.Errorf("failed to open uploaded image: %w", err)
	}
	return req, &catalog.Upload{Filename: fh.Filename, Content: f}, func() {
		_ = f.Close()
		cleanup()
	}, nil
}

func formValue(form *multipart.Form, key string) (string, bool) {
	values, ok := form.Value[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

func productRequestFromForm(form *multipart.Form) (ProductRequest, error) {
	var req ProductRequest
	req.Name, _ = formValue(form, "name")
	req.Brand, _ = formValue(form, "brand")
	req.Category, _ = formValue(form, "category")
	req.ImageURL, _ = formValue(form, "image_url")

	if v, ok := formValue(form, "price"); ok && strings.TrimSpace(v) != "" {
		price, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return ProductRequest{}, errors.New("price must be a number")
		}
		req.Price = &price
	}

	if v, ok := formValue(form, "id"); ok && strings.TrimSpace(v) != "" {
		id, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return ProductRequest{}, errors.New("id must be an integer")
		}
		req.Id = &id
	}

	return req, nil
}
