package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/mrops-br/products-catalog-api/internal/app/dto"
	"github.com/mrops-br/products-catalog-api/internal/domain"
	"github.com/mrops-br/products-catalog-api/internal/infrastructure/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

func setup(t *testing.T, repo domain.ProductRepository) *ProductService {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tracer := tracenoop.NewTracerProvider().Tracer("test")
	if repo == nil {
		repo = memory.NewProductRepository(tracer, logger)
	}
	return NewProductService(repo, tracer, metricnoop.NewMeterProvider().Meter("test"), logger)
}

func validRequest() *dto.ProductRequest {
	return &dto.ProductRequest{
		Name:        "Blue Shirt",
		Description: "Cotton shirt",
		Price:       decimal.RequireFromString("19.99"),
		Image:       "https://example.com/shirt.png",
	}
}

func TestCreateThenGet(t *testing.T) {
	svc := setup(t, nil)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, validRequest())
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	got, err := svc.GetProductByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestCreateIgnoresClientID(t *testing.T) {
	svc := setup(t, nil)
	req := validRequest()
	req.ID = 999

	created, err := svc.CreateProduct(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
}

func TestCreateRejectsInvalid(t *testing.T) {
	mutations := map[string]func(*dto.ProductRequest){
		"blank name":        func(r *dto.ProductRequest) { r.Name = " " },
		"blank description": func(r *dto.ProductRequest) { r.Description = "" },
		"zero price":        func(r *dto.ProductRequest) { r.Price = decimal.Zero },
		"negative price":    func(r *dto.ProductRequest) { r.Price = decimal.NewFromInt(-1) },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			svc := setup(t, nil)
			ctx := context.Background()
			req := validRequest()
			mutate(req)

			_, err := svc.CreateProduct(ctx, req)
			assert.ErrorIs(t, err, domain.ErrInvalidProduct)

			all, err := svc.ListProducts(ctx)
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestUpdateContract(t *testing.T) {
	svc := setup(t, nil)
	ctx := context.Background()
	created, err := svc.CreateProduct(ctx, validRequest())
	require.NoError(t, err)

	t.Run("id mismatch", func(t *testing.T) {
		req := validRequest()
		req.ID = created.ID + 1
		_, err := svc.UpdateProduct(ctx, created.ID, req)
		assert.ErrorIs(t, err, domain.ErrProductIDMismatch)
		assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))
	})

	t.Run("not found", func(t *testing.T) {
		req := validRequest()
		req.ID = 404
		_, err := svc.UpdateProduct(ctx, 404, req)
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})

	t.Run("invalid fields", func(t *testing.T) {
		req := validRequest()
		req.ID = created.ID
		req.Price = decimal.Zero
		_, err := svc.UpdateProduct(ctx, created.ID, req)
		assert.ErrorIs(t, err, domain.ErrInvalidProduct)
	})

	t.Run("full overwrite", func(t *testing.T) {
		req := &dto.ProductRequest{ID: created.ID, Name: "Pants", Description: "Denim", Price: decimal.NewFromInt(40)}
		updated, err := svc.UpdateProduct(ctx, created.ID, req)
		require.NoError(t, err)
		assert.Equal(t, "Pants", updated.Name)
		assert.Empty(t, updated.Image)

		got, err := svc.GetProductByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, updated, got)
	})
}

func TestDeleteIsFinal(t *testing.T) {
	svc := setup(t, nil)
	ctx := context.Background()
	created, err := svc.CreateProduct(ctx, validRequest())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(ctx, created.ID))

	_, err = svc.GetProductByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.ErrorIs(t, svc.DeleteProduct(ctx, created.ID), domain.ErrProductNotFound)
}

type failingRepository struct {
	domain.ProductRepository
	err error
}

func (f *failingRepository) Create(context.Context, *domain.Product) error { return f.err }
func (f *failingRepository) FindAll(context.Context) ([]*domain.Product, error) {
	return nil, f.err
}

func TestStorageFaultsPropagate(t *testing.T) {
	fault := errors.New("connection reset")
	svc := setup(t, &failingRepository{err: fault})
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, validRequest())
	assert.ErrorIs(t, err, fault)
	assert.Equal(t, domain.Kind(""), domain.KindOf(err))

	_, err = svc.ListProducts(ctx)
	assert.ErrorIs(t, err, fault)
}
