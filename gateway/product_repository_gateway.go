package gateway

import (
	"context"

	"search-storefront/domain"
	"search-storefront/driver"
)

type ProductDriver interface {
	GetProducts(ctx context.Context, afterID string, limit int) ([]*driver.ProductRow, error)
	GetProductsByIDs(ctx context.Context, ids []string) ([]*driver.ProductRow, error)
}

type ProductRepositoryGateway struct {
	driver ProductDriver
}

func NewProductRepositoryGateway(driver ProductDriver) *ProductRepositoryGateway {
	return &ProductRepositoryGateway{
		driver: driver,
	}
}

func (g *ProductRepositoryGateway) GetProducts(ctx context.Context, afterID string, limit int) ([]*domain.Product, error) {
	rows, err := g.driver.GetProducts(ctx, afterID, limit)
	if err != nil {
		return nil, &domain.RepositoryError{
			Op:  "GetProducts",
			Err: err.Error(),
		}
	}
	return g.convertRows("GetProducts", rows)
}

func (g *ProductRepositoryGateway) GetProductsByIDs(ctx context.Context, ids []string) ([]*domain.Product, error) {
	rows, err := g.driver.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, &domain.RepositoryError{
			Op:  "GetProductsByIDs",
			Err: err.Error(),
		}
	}
	return g.convertRows("GetProductsByIDs", rows)
}

func (g *ProductRepositoryGateway) convertRows(op string, rows []*driver.ProductRow) ([]*domain.Product, error) {
	products := make([]*domain.Product, 0, len(rows))
	for _, row := range rows {
		product, err := g.convertToDomain(row)
		if err != nil {
			return nil, &domain.RepositoryError{
				Op:  op,
				Err: "failed to convert product to domain: id=" + row.ID + ", " + err.Error(),
			}
		}
		products = append(products, product)
	}
	return products, nil
}

func (g *ProductRepositoryGateway) convertToDomain(row *driver.ProductRow) (*domain.Product, error) {
	product, err := domain.NewProduct(row.ID, row.Name, row.Description, row.Price)
	if err != nil {
		return nil, err
	}

	product.Brand = row.Brand
	product.Type = row.Type
	product.Categories = row.Categories
	product.Rating = row.Rating
	product.Image = row.Image
	return product, nil
}
