// Package postgres stores products in PostgreSQL through database/sql and lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"github.com/mrops-br/products-catalog-api/internal/domain"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}
	return db, nil
}

// Migrate applies the embedded schema migrations. An up-to-date schema is not an error.
func Migrate(db *sql.DB) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return errors.Wrap(err, "load migrations")
	}
	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return errors.Wrap(err, "create migration driver")
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return errors.Wrap(err, "create migrator")
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "apply migrations")
	}
	return nil
}

// ProductRepository is a PostgreSQL implementation of domain.ProductRepository.
// Each write is a single statement, so it is atomic per record.
type ProductRepository struct {
	db     *sql.DB
	tracer trace.Tracer
	logger *slog.Logger
}

// NewProductRepository creates a repository over an open, migrated database.
func NewProductRepository(db *sql.DB, tracer trace.Tracer, logger *slog.Logger) *ProductRepository {
	return &ProductRepository{db: db, tracer: tracer, logger: logger}
}

func (r *ProductRepository) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository."+name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("db.system", "postgresql")),
	)
	span.SetAttributes(attrs...)
	return ctx, span
}

func (r *ProductRepository) fail(ctx context.Context, span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if errors.Is(err, domain.ErrProductNotFound) {
		r.logger.WarnContext(ctx, "Product not found")
	} else {
		r.logger.ErrorContext(ctx, "Product query failed", slog.String("error", err.Error()))
	}
	return err
}

func scanProduct(scan func(...any) error) (*domain.Product, error) {
	p := &domain.Product{}
	if err := scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Image); err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts product and writes the generated ID back to it.
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	ctx, span := r.start(ctx, "Create", attribute.String("product.name", product.Name))
	defer span.End()

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO products (name, description, price, image)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		product.Name, product.Description, product.Price, product.Image,
	).Scan(&product.ID)
	if err != nil {
		return r.fail(ctx, span, errors.Wrap(err, "insert product"))
	}

	span.SetAttributes(attribute.Int64("product.id", product.ID))
	r.logger.InfoContext(ctx, "Product created in repository",
		slog.Int64("product_id", product.ID),
	)
	span.SetStatus(codes.Ok, "Product created successfully")
	return nil
}

// FindByID retrieves a product by ID
func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	ctx, span := r.start(ctx, "FindByID", attribute.Int64("product.id", id))
	defer span.End()

	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, price, image
		FROM products WHERE id = $1`, id)
	product, err := scanProduct(row.Scan)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, r.fail(ctx, span, domain.ErrProductNotFound)
	case err != nil:
		return nil, r.fail(ctx, span, errors.Wrapf(err, "select product %d", id))
	}

	span.SetStatus(codes.Ok, "Product found")
	return product, nil
}

// FindAll retrieves all products ordered by ID.
func (r *ProductRepository) FindAll(ctx context.Context) ([]*domain.Product, error) {
	ctx, span := r.start(ctx, "FindAll")
	defer span.End()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, price, image
		FROM products ORDER BY id`)
	if err != nil {
		return nil, r.fail(ctx, span, errors.Wrap(err, "select products"))
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, r.fail(ctx, span, errors.Wrap(err, "scan product"))
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, r.fail(ctx, span, errors.Wrap(err, "iterate products"))
	}

	span.SetAttributes(attribute.Int("product.count", len(products)))
	r.logger.InfoContext(ctx, "Products retrieved from repository",
		slog.Int("count", len(products)),
	)
	span.SetStatus(codes.Ok, "Products retrieved successfully")
	return products, nil
}

// Update overwrites every mutable column in one statement.
func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	ctx, span := r.start(ctx, "Update", attribute.Int64("product.id", product.ID))
	defer span.End()

	row := r.db.QueryRowContext(ctx, `
		UPDATE products
		SET name = $1, description = $2, price = $3, image = $4
		WHERE id = $5
		RETURNING id, name, description, price, image`,
		product.Name, product.Description, product.Price, product.Image, product.ID)
	updated, err := scanProduct(row.Scan)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return r.fail(ctx, span, domain.ErrProductNotFound)
	case err != nil:
		return r.fail(ctx, span, errors.Wrapf(err, "update product %d", product.ID))
	}

	*product = *updated
	r.logger.InfoContext(ctx, "Product updated in repository",
		slog.Int64("product_id", product.ID),
	)
	span.SetStatus(codes.Ok, "Product updated successfully")
	return nil
}

// Delete removes the row with the given ID.
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	ctx, span := r.start(ctx, "Delete", attribute.Int64("product.id", id))
	defer span.End()

	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return r.fail(ctx, span, errors.Wrapf(err, "delete product %d", id))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return r.fail(ctx, span, errors.Wrap(err, "rows affected"))
	}
	if n == 0 {
		return r.fail(ctx, span, domain.ErrProductNotFound)
	}

	r.logger.InfoContext(ctx, "Product deleted from repository",
		slog.Int64("product_id", id),
	)
	span.SetStatus(codes.Ok, "Product deleted successfully")
	return nil
}
