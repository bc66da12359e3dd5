package domain

import "errors"

// Product is one document of the hosted product index.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Brand       string   `json:"brand"`
	Type        string   `json:"type"`
	Categories  []string `json:"categories"`
	Price       float64  `json:"price"`
	Rating      int      `json:"rating"`
	Image       string   `json:"image"`
}

func NewProduct(id, name, description string, price float64) (*Product, error) {
	if id == "" {
		return nil, errors.New("product ID cannot be empty")
	}
	if name == "" {
		return nil, errors.New("product name cannot be empty")
	}
	if !isFinite(price) || price < 0 {
		return nil, errors.New("product price must be a non-negative number")
	}

	return &Product{
		ID:          id,
		Name:        name,
		Description: description,
		Price:       price,
	}, nil
}
