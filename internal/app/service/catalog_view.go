package service

import (
	"context"
	"log/slog"

	"github.com/mrops-br/products-catalog-api/internal/app/dto"
	"github.com/mrops-br/products-catalog-api/internal/app/query"
	"github.com/mrops-br/products-catalog-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ProductSource yields the full catalog, e.g. fetched from the API.
type ProductSource interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

// CatalogView renders one page of the catalog for a client. It fetches the
// catalog on every call and keeps no view state; callers pass the parameters.
type CatalogView struct {
	source ProductSource
	tracer trace.Tracer
	logger *slog.Logger
	pages  metric.Int64Counter
}

// NewCatalogView creates a view over source.
func NewCatalogView(source ProductSource, tracer trace.Tracer, meter metric.Meter, logger *slog.Logger) *CatalogView {
	pages, _ := meter.Int64Counter(
		"products.query.pages",
		metric.WithDescription("Total number of catalog pages rendered"),
	)
	return &CatalogView{source: source, tracer: tracer, logger: logger, pages: pages}
}

// Render fetches the catalog and applies the query pipeline to it.
func (v *CatalogView) Render(ctx context.Context, params query.Params) (*dto.PageResponse, error) {
	ctx, span := v.tracer.Start(ctx, "CatalogView.Render")
	defer span.End()

	span.SetAttributes(
		attribute.String("query.search", params.Search),
		attribute.String("query.sort", string(params.Sort)),
		attribute.Int("query.page", params.Page),
		attribute.Int("query.page_size", params.PageSize),
	)

	products, err := v.source.ListProducts(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to fetch catalog")
		v.logger.ErrorContext(ctx, "Failed to fetch catalog", slog.String("error", err.Error()))
		return nil, err
	}

	page := query.Apply(products, params)

	span.SetAttributes(
		attribute.Int("query.total_items", page.TotalItems),
		attribute.Int("query.total_pages", page.TotalPages),
	)
	v.pages.Add(ctx, 1, metric.WithAttributes(
		attribute.String("sort", string(params.Sort)),
		attribute.Bool("empty", len(page.Items) == 0),
	))

	v.logger.DebugContext(ctx, "Catalog page rendered",
		slog.Int("items", len(page.Items)),
		slog.Int("total_pages", page.TotalPages),
		slog.Int("current_page", page.CurrentPage),
	)

	span.SetStatus(codes.Ok, "Catalog page rendered")
	return dto.ToPageResponse(page), nil
}
