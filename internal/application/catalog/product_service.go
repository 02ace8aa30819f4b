package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/catalog"
	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/shared"
)

// CreateProductCommand creates a new catalog product
type CreateProductCommand struct {
	Name           string `json:"name" binding:"required,min=1,max=200"`
	Code           string `json:"code" binding:"required,min=1,max=50"`
	Barcode        string `json:"barcode,omitempty" binding:"omitempty,max=50"`
	PiecesPerBox   int    `json:"pieces_per_box" binding:"required,gt=0"`
	MinStockPieces int    `json:"min_stock_pieces,omitempty" binding:"omitempty,gte=0"`
	Description    string `json:"description,omitempty"`
}

// UpdateProductCommand updates mutable product fields
type UpdateProductCommand struct {
	Name           *string `json:"name,omitempty" binding:"omitempty,min=1,max=200"`
	Barcode        *string `json:"barcode,omitempty" binding:"omitempty,max=50"`
	PiecesPerBox   *int    `json:"pieces_per_box,omitempty" binding:"omitempty,gt=0"`
	MinStockPieces *int    `json:"min_stock_pieces,omitempty" binding:"omitempty,gte=0"`
	Description    *string `json:"description,omitempty"`
}

// ProductService manages the product catalog
type ProductService struct {
	products catalog.ProductRepository
	logger   *zap.Logger
}

// NewProductService creates a new product service
func NewProductService(products catalog.ProductRepository, logger *zap.Logger) *ProductService {
	return &ProductService{products: products, logger: logger}
}

// Create creates a new product. Codes are unique across the catalog.
func (s *ProductService) Create(ctx context.Context, cmd CreateProductCommand) (*catalog.Product, error) {
	existing, err := s.products.FindByCode(ctx, cmd.Code)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("failed to check product code: %w", err)
	}
	if existing != nil {
		return nil, shared.NewDomainError("DUPLICATE_CODE",
			fmt.Sprintf("Product with code %s already exists", cmd.Code))
	}

	product, err := catalog.NewProduct(cmd.Name, cmd.Code, cmd.PiecesPerBox)
	if err != nil {
		return nil, err
	}
	product.Barcode = cmd.Barcode
	product.Description = cmd.Description
	if cmd.MinStockPieces > 0 {
		if err := product.SetMinStock(cmd.MinStockPieces); err != nil {
			return nil, err
		}
	}

	if err := s.products.Save(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to save product: %w", err)
	}

	s.logger.Info("product created",
		zap.String("product_id", product.ID.String()),
		zap.String("code", product.Code))
	return product, nil
}

// Get finds a product by ID
func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return s.products.FindByID(ctx, id)
}

// GetByCode finds a product by its unique code
func (s *ProductService) GetByCode(ctx context.Context, code string) (*catalog.Product, error) {
	return s.products.FindByCode(ctx, code)
}

// List lists products matching the filter
func (s *ProductService) List(ctx context.Context, filter shared.Filter) ([]catalog.Product, int64, error) {
	products, err := s.products.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	total, err := s.products.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}
	return products, total, nil
}

// Update applies partial changes to a product
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, cmd UpdateProductCommand) (*catalog.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if cmd.Name != nil {
		if *cmd.Name == "" {
			return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
		}
		product.Name = *cmd.Name
	}
	if cmd.Barcode != nil {
		product.Barcode = *cmd.Barcode
	}
	if cmd.PiecesPerBox != nil {
		if *cmd.PiecesPerBox <= 0 {
			return nil, shared.NewDomainError("INVALID_PIECES_PER_BOX", "Pieces per box must be positive")
		}
		product.PiecesPerBox = *cmd.PiecesPerBox
	}
	if cmd.MinStockPieces != nil {
		if err := product.SetMinStock(*cmd.MinStockPieces); err != nil {
			return nil, err
		}
	}
	if cmd.Description != nil {
		product.Description = *cmd.Description
	}
	product.Touch()

	if err := s.products.Save(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to save product: %w", err)
	}
	return product, nil
}

// Delete removes a product from the catalog
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.products.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	s.logger.Info("product deleted", zap.String("product_id", id.String()))
	return nil
}
