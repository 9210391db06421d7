package handlers

import "github.com/rogerio-castellano/catalog-service/internal/models"

type ProductRequest struct {
	Id       *int     `json:"id,omitempty"`
	Name     string   `json:"name"`
	Brand    string   `json:"brand"`
	Category string   `json:"category"`
	Price    *float64 `json:"price"`
	ImageURL string   `json:"image_url,omitempty"`
}

type ProductResponse struct {
	Id       int     `json:"id"`
	Name     string  `json:"name"`
	Brand    string  `json:"brand"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"image_url"`
}

type CreateProductResponse struct {
	Message   string `json:"message"`
	ProductID int    `json:"product_id"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func toProductResponse(p models.Product) ProductResponse {
	return ProductResponse{
		Id:       p.ID,
		Name:     p.Name,
		Brand:    p.Brand,
		Category: p.Category,
		Price:    p.Price,
		ImageURL: p.ImageURL,
	}
}
