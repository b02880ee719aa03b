package service

import (
	"context"
	"log/slog"

	"github.com/mrops-br/products-catalog-api/internal/app/dto"
	"github.com/mrops-br/products-catalog-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ProductService handles product use cases
type ProductService struct {
	repo                  domain.ProductRepository
	tracer                trace.Tracer
	logger                *slog.Logger
	productCreatedCounter metric.Int64Counter
	productOperations     metric.Int64Counter
}

// NewProductService creates a new product service
func NewProductService(
	repo domain.ProductRepository,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
) *ProductService {
	productCreatedCounter, _ := meter.Int64Counter(
		"products.created.total",
		metric.WithDescription("Total number of products created"),
	)

	productOperations, _ := meter.Int64Counter(
		"products.operations",
		metric.WithDescription("Total number of product operations"),
	)

	return &ProductService{
		repo:                  repo,
		tracer:                tracer,
		logger:                logger,
		productCreatedCounter: productCreatedCounter,
		productOperations:     productOperations,
	}
}

// record counts one operation outcome. Errors are classified by kind so a
// storage fault shows up as "failure" and a missing record as "not_found".
func (s *ProductService) record(ctx context.Context, operation string, err error) {
	result := "success"
	if err != nil {
		switch domain.KindOf(err) {
		case domain.KindNotFound:
			result = "not_found"
		case domain.KindInvalidInput:
			result = "invalid"
		default:
			result = "failure"
		}
	}
	s.productOperations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("result", result),
		),
	)
}

func (s *ProductService) fail(ctx context.Context, span trace.Span, operation, msg string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	level := slog.LevelError
	if domain.KindOf(err) != "" {
		level = slog.LevelWarn
	}
	s.logger.Log(ctx, level, msg, slog.String("error", err.Error()))
	s.record(ctx, operation, err)
}

// CreateProduct validates and stores a new product; the repository assigns its ID.
func (s *ProductService) CreateProduct(ctx context.Context, req *dto.ProductRequest) (*dto.ProductResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.CreateProduct")
	defer span.End()

	span.SetAttributes(
		attribute.String("product.name", req.Name),
		attribute.String("product.price", req.Price.String()),
	)

	s.logger.InfoContext(ctx, "Creating product",
		slog.String("name", req.Name),
		slog.String("price", req.Price.String()),
	)

	product, err := domain.NewProduct(req.Name, req.Description, req.Price, req.Image)
	if err != nil {
		s.fail(ctx, span, "create", "Validation failed", err)
		return nil, err
	}

	if err := s.repo.Create(ctx, product); err != nil {
		s.fail(ctx, span, "create", "Failed to store product", err)
		return nil, err
	}

	span.SetAttributes(attribute.Int64("product.id", product.ID))

	s.productCreatedCounter.Add(ctx, 1)
	s.record(ctx, "create", nil)

	s.logger.InfoContext(ctx, "Product created successfully",
		slog.Int64("product_id", product.ID),
	)

	span.SetStatus(codes.Ok, "Product created successfully")
	return dto.ToProductResponse(product), nil
}

// GetProductByID retrieves a product by ID
func (s *ProductService) GetProductByID(ctx context.Context, id int64) (*dto.ProductResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.GetProductByID")
	defer span.End()

	span.SetAttributes(attribute.Int64("product.id", id))

	s.logger.InfoContext(ctx, "Getting product by ID",
		slog.Int64("product_id", id),
	)

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.fail(ctx, span, "read", "Failed to get product", err)
		return nil, err
	}

	s.record(ctx, "read", nil)

	s.logger.InfoContext(ctx, "Product retrieved successfully",
		slog.Int64("product_id", id),
	)

	span.SetStatus(codes.Ok, "Product retrieved successfully")
	return dto.ToProductResponse(product), nil
}

// ListProducts retrieves all products in store iteration order.
func (s *ProductService) ListProducts(ctx context.Context) ([]*dto.ProductResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.ListProducts")
	defer span.End()

	s.logger.InfoContext(ctx, "Listing all products")

	products, err := s.repo.FindAll(ctx)
	if err != nil {
		s.fail(ctx, span, "list", "Failed to retrieve products", err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("product.count", len(products)))
	s.record(ctx, "list", nil)

	s.logger.InfoContext(ctx, "Products listed successfully",
		slog.Int("count", len(products)),
	)

	span.SetStatus(codes.Ok, "Products listed successfully")
	return dto.ToProductResponseList(products), nil
}

// UpdateProduct overwrites every mutable field of the product stored under id.
// The body's ID must equal id. The same invariants as CreateProduct apply.
func (s *ProductService) UpdateProduct(ctx context.Context, id int64, req *dto.ProductRequest) (*dto.ProductResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.UpdateProduct")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("product.id", id),
		attribute.Int64("product.body_id", req.ID),
	)

	s.logger.InfoContext(ctx, "Updating product",
		slog.Int64("product_id", id),
	)

	if req.ID != id {
		s.fail(ctx, span, "update", "Product ID mismatch", domain.ErrProductIDMismatch)
		return nil, domain.ErrProductIDMismatch
	}

	product, err := domain.NewProduct(req.Name, req.Description, req.Price, req.Image)
	if err != nil {
		s.fail(ctx, span, "update", "Validation failed", err)
		return nil, err
	}
	product.ID = id

	if err := s.repo.Update(ctx, product); err != nil {
		s.fail(ctx, span, "update", "Failed to update product", err)
		return nil, err
	}

	s.record(ctx, "update", nil)

	s.logger.InfoContext(ctx, "Product updated successfully",
		slog.Int64("product_id", id),
	)

	span.SetStatus(codes.Ok, "Product updated successfully")
	return dto.ToProductResponse(product), nil
}

// DeleteProduct permanently removes the product stored under id.
func (s *ProductService) DeleteProduct(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "ProductService.DeleteProduct")
	defer span.End()

	span.SetAttributes(attribute.Int64("product.id", id))

	s.logger.InfoContext(ctx, "Deleting product",
		slog.Int64("product_id", id),
	)

	if err := s.repo.Delete(ctx, id); err != nil {
		s.fail(ctx, span, "delete", "Failed to delete product", err)
		return err
	}

	s.record(ctx, "delete", nil)

	s.logger.InfoContext(ctx, "Product deleted successfully",
		slog.Int64("product_id", id),
	)

	span.SetStatus(codes.Ok, "Product deleted successfully")
	return nil
}
