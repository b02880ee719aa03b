package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/mrops-br/products-catalog-api/internal/app/dto"
	"github.com/mrops-br/products-catalog-api/internal/app/query"
	"github.com/mrops-br/products-catalog-api/internal/app/service"
	"github.com/mrops-br/products-catalog-api/internal/domain"
	"github.com/mrops-br/products-catalog-api/internal/infrastructure/client"
	"github.com/mrops-br/products-catalog-api/internal/infrastructure/config"
	"github.com/mrops-br/products-catalog-api/internal/infrastructure/http"
	"github.com/mrops-br/products-catalog-api/internal/infrastructure/http/handler"
	"github.com/mrops-br/products-catalog-api/internal/infrastructure/repository/memory"
	"github.com/mrops-br/products-catalog-api/internal/infrastructure/repository/postgres"
	"github.com/mrops-br/products-catalog-api/internal/infrastructure/telemetry"
	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/language"
)

const instrumentationName = "products-api"

func main() {
	app := &cli.App{
		Name:  "products-catalog",
		Usage: "product catalog API and client-side catalog browser",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Value: ".env",
				Usage: "dotenv file applied before reading the environment",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the catalog HTTP API",
				Action: serve,
			},
			{
				Name:  "browse",
				Usage: "fetch the catalog and print one filtered, sorted page",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "api-url", Usage: "catalog API base URL (overrides CATALOG_API_URL)"},
					&cli.StringFlag{Name: "search", Aliases: []string{"s"}, Usage: "case-insensitive name filter"},
					&cli.StringFlag{Name: "sort", Usage: "none, price_asc, price_desc or name_asc"},
					&cli.IntFlag{Name: "page", Aliases: []string{"p"}, Value: 1},
					&cli.IntFlag{Name: "page-size", Value: query.DefaultPageSize},
					&cli.StringFlag{Name: "locale", Value: "und", Usage: "BCP 47 tag used to collate names"},
					&cli.BoolFlag{Name: "json", Usage: "print the page as JSON"},
				},
				Action: browse,
			},
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	return config.LoadConfig(c.String("env-file"))
}

func serve(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	telem, err := telemetry.New(&cfg.OTLP)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer shutdownTelemetry(telem)

	tracer := telem.TracerProvider.Tracer(instrumentationName)
	meter := telem.MeterProvider.Meter(instrumentationName)
	logger := telem.Logger

	logger.Info("Starting Products API", slog.String("store", cfg.Store.Driver))

	repo, closeRepo, err := newRepository(c.Context, &cfg.Store, tracer, logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	productService := service.NewProductService(repo, tracer, meter, logger)
	productHandler := handler.NewProductHandler(productService, logger)
	server := http.NewServer(&cfg.Server, productHandler, logger, telem)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		logger.Info("Shutting down server...")
	case err := <-errCh:
		if err != nil {
			logger.Error("Server error", slog.String("error", err.Error()))
			return err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}

func newRepository(
	ctx context.Context,
	cfg *config.StoreConfig,
	tracer trace.Tracer,
	logger *slog.Logger,
) (domain.ProductRepository, func(), error) {
	if cfg.Driver != config.DriverPostgres {
		return memory.NewProductRepository(tracer, logger), func() {}, nil
	}

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := postgres.Migrate(db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return postgres.NewProductRepository(db, tracer, logger), func() { _ = db.Close() }, nil
}

func browse(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if u := c.String("api-url"); u != "" {
		cfg.Client.BaseURL = u
	}

	sortKey, err := query.ParseSortKey(c.String("sort"))
	if err != nil {
		return err
	}
	locale, err := language.Parse(c.String("locale"))
	if err != nil {
		return fmt.Errorf("invalid locale: %w", err)
	}

	// Diagnostics go to stderr so stdout stays clean for the page.
	cfg.OTLP.LogStderr = true
	cfg.OTLP.LogLevel = slog.LevelWarn
	telem, err := telemetry.NewNoOpTelemetry(&cfg.OTLP)
	if err != nil {
		return err
	}
	defer shutdownTelemetry(telem)
	logger := telem.Logger

	catalog := client.NewCatalogClient(&cfg.Client, telem.TracerProvider, logger)
	view := service.NewCatalogView(catalog,
		telem.TracerProvider.Tracer(instrumentationName),
		telem.MeterProvider.Meter(instrumentationName),
		logger,
	)

	page, err := view.Render(c.Context, query.Params{
		Search:   c.String("search"),
		Sort:     sortKey,
		Page:     c.Int("page"),
		PageSize: c.Int("page-size"),
		Locale:   locale,
	})
	if err != nil {
		return err
	}

	if c.Bool("json") {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(page)
	}
	return printPage(c.App.Writer, page)
}

func printPage(w io.Writer, page *dto.PageResponse) error {
	if len(page.Items) == 0 {
		_, err := fmt.Fprintln(w, "No products found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tDESCRIPTION")
	for _, p := range page.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.ID, p.Name, p.Price.StringFixed(domain.PriceScale), p.Description)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\npage %d of %d (%d per page, %d products)\n",
		page.CurrentPage, page.TotalPages, page.PageSize, page.TotalItems)
	return err
}

func shutdownTelemetry(telem *telemetry.Telemetry) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := telem.Shutdown(ctx); err != nil {
		log.Printf("Error shutting down telemetry: %v", err)
	}
}
