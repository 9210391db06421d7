package models

// Product represents a product entity in the catalog.
type Product struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Brand    string  `json:"brand"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"image_url"`
}

// ProductUpdate carries the fields an update overwrites. A nil ImageURL
// keeps the stored image reference.
type ProductUpdate struct {
	Name     string
	Brand    string
	Category string
	Price    float64
	ImageURL *string
}

// Apply assigns the update onto p field by field and returns the result.
func (u ProductUpdate) Apply(p Product) Product {
	p.Name = u.Name
	p.Brand = u.Brand
	p.Category = u.Category
	p.Price = u.Price
	if u.ImageURL != nil {
		p.ImageURL = *u.ImageURL
	}
	return p
}
