// Reports CLI: generates profitability workbooks for a business over a
// date window and optionally pushes them to an S3-compatible bucket.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/ordena/backend-go/internal/cache"
	"github.com/andresuchdata/ordena/backend-go/internal/config"
	"github.com/andresuchdata/ordena/backend-go/internal/domain"
	"github.com/andresuchdata/ordena/backend-go/internal/report"
	"github.com/andresuchdata/ordena/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/ordena/backend-go/internal/service"
	"github.com/andresuchdata/ordena/backend-go/internal/storage"
)

const dateLayout = "2006-01-02"

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "reports",
		Usage: "Generate and archive profitability reports",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "business-id",
				Usage:    "Business to report on",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "from",
				Usage: "Window start (YYYY-MM-DD), open when omitted",
			},
			&cli.StringFlag{
				Name:  "to",
				Usage: "Window end (YYYY-MM-DD), open when omitted",
			},
			&cli.StringFlag{
				Name:    "output-dir",
				Usage:   "Directory the workbook is written to",
				Value:   "./data/reports",
				EnvVars: []string{"REPORTS_OUTPUT_DIR"},
			},
			&cli.BoolFlag{
				Name:  "push",
				Usage: "Also upload the workbook to the configured bucket",
			},
		},
		Action: runReport,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runReport(c *cli.Context) error {
	cfg := config.Load()

	window, err := parseWindow(c.String("from"), c.String("to"))
	if err != nil {
		return err
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	products := postgres.NewProductRepository(db)
	ingredients := postgres.NewIngredientRepository(db)
	recipes := postgres.NewRecipeRepository(db)
	orders := postgres.NewOrderRepository(db)

	profits := service.NewProfitabilityService(products, ingredients, recipes, orders, cache.NewNoopProfitCache())

	businessID := c.String("business-id")
	result, err := profits.Report(c.Context, businessID, window)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}

	data, err := report.WriteXLSX(result)
	if err != nil {
		return fmt.Errorf("failed to render workbook: %w", err)
	}

	fileName := report.FileName(businessID, result.GeneratedAt)
	outputDir := c.String("output-dir")
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	outputPath := filepath.Join(outputDir, fileName)
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	log.Printf("Report written to %s (%d rows, %d uncosted lines)",
		outputPath, len(result.Rows), result.UncostedLines)

	if c.Bool("push") {
		client, err := storage.NewS3Client(storage.S3Config{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			UseSSL:    cfg.Storage.UseSSL,
		})
		if err != nil {
			return fmt.Errorf("failed to build storage client: %w", err)
		}
		key := filepath.Join(businessID, fileName)
		if err := client.UploadObject(c.Context, key, data); err != nil {
			return fmt.Errorf("failed to upload workbook: %w", err)
		}
		log.Printf("Report archived as %s", key)
	}
	return nil
}

func parseWindow(fromRaw, toRaw string) (domain.ReportWindow, error) {
	var window domain.ReportWindow
	if fromRaw != "" {
		t, err := time.Parse(dateLayout, fromRaw)
		if err != nil {
			return domain.ReportWindow{}, fmt.Errorf("invalid from date: %w", err)
		}
		window.From = t
	}
	if toRaw != "" {
		t, err := time.Parse(dateLayout, toRaw)
		if err != nil {
			return domain.ReportWindow{}, fmt.Errorf("invalid to date: %w", err)
		}
		// Include the whole end day.
		window.To = t.Add(24*time.Hour - time.Nanosecond)
	}
	return window, nil
}
