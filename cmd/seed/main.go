// Catalog seeder: loads products, ingredients and recipes from CSV files
// into the database. Meant for local development and first-run setup.
package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func newDataDirFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "data-dir",
		Usage:   "Directory containing catalog seed CSVs",
		Value:   "./data/seeds/catalog",
		EnvVars: []string{"SEED_DATA_DIR"},
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Seed the database with catalog data",
		Commands: []*cli.Command{
			{
				Name:   "catalog",
				Usage:  "Seed products and ingredients",
				Flags:  []cli.Flag{newDBURLFlag(), newDataDirFlag()},
				Action: seedCatalog,
			},
			{
				Name:   "recipes",
				Usage:  "Seed recipe entries and labor costs",
				Flags:  []cli.Flag{newDBURLFlag(), newDataDirFlag()},
				Action: seedRecipes,
			},
			{
				Name:  "all",
				Usage: "Seed catalog data then recipes",
				Flags: []cli.Flag{newDBURLFlag(), newDataDirFlag()},
				Action: func(c *cli.Context) error {
					if err := seedCatalog(c); err != nil {
						return fmt.Errorf("error seeding catalog: %w", err)
					}
					if err := seedRecipes(c); err != nil {
						return fmt.Errorf("error seeding recipes: %w", err)
					}
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func withTx(c *cli.Context, fn func(ctx context.Context, tx *sql.Tx) error) error {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func seedCatalog(c *cli.Context) error {
	dataDir := c.String("data-dir")
	return withTx(c, func(ctx context.Context, tx *sql.Tx) error {
		log.Println("Seeding products...")
		if err := seedProducts(ctx, tx, filepath.Join(dataDir, "products.csv")); err != nil {
			return fmt.Errorf("failed to seed products: %w", err)
		}
		log.Println("Seeding ingredients...")
		if err := seedIngredients(ctx, tx, filepath.Join(dataDir, "ingredients.csv")); err != nil {
			return fmt.Errorf("failed to seed ingredients: %w", err)
		}
		log.Println("Catalog seeding completed successfully!")
		return nil
	})
}

func seedRecipes(c *cli.Context) error {
	dataDir := c.String("data-dir")
	return withTx(c, func(ctx context.Context, tx *sql.Tx) error {
		log.Println("Seeding recipes...")
		if err := seedRecipeEntries(ctx, tx, filepath.Join(dataDir, "recipes.csv")); err != nil {
			return fmt.Errorf("failed to seed recipes: %w", err)
		}
		log.Println("Recipe seeding completed successfully!")
		return nil
	})
}

// seedProducts expects columns: id, business_id, name, sale_price, stock.
// A stock of -1 marks the product untracked.
func seedProducts(ctx context.Context, tx *sql.Tx, filePath string) error {
	query := `
		INSERT INTO products (id, business_id, name, sale_price, stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			sale_price = EXCLUDED.sale_price,
			stock = EXCLUDED.stock,
			updated_at = NOW()
	`
	return forEachRecord(filePath, []string{"id", "business_id", "name", "sale_price", "stock"},
		func(fields []string) error {
			salePrice, err := strconv.ParseFloat(fields[3], 64)
			if err != nil {
				return fmt.Errorf("invalid sale_price %q: %w", fields[3], err)
			}
			stock, err := strconv.Atoi(fields[4])
			if err != nil {
				return fmt.Errorf("invalid stock %q: %w", fields[4], err)
			}
			_, err = tx.ExecContext(ctx, query, fields[0], fields[1], fields[2], salePrice, stock)
			return err
		})
}

// seedIngredients expects columns: id, business_id, name, unit, stock,
// min_stock, cost_per_unit. Stock and min_stock are in the base unit.
func seedIngredients(ctx context.Context, tx *sql.Tx, filePath string) error {
	query := `
		INSERT INTO ingredients (id, business_id, name, unit, stock, min_stock, cost_per_unit, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			unit = EXCLUDED.unit,
			stock = EXCLUDED.stock,
			min_stock = EXCLUDED.min_stock,
			cost_per_unit = EXCLUDED.cost_per_unit,
			updated_at = NOW()
	`
	return forEachRecord(filePath, []string{"id", "business_id", "name", "unit", "stock", "min_stock", "cost_per_unit"},
		func(fields []string) error {
			stock, err := strconv.ParseFloat(fields[4], 64)
			if err != nil {
				return fmt.Errorf("invalid stock %q: %w", fields[4], err)
			}
			minStock, err := strconv.ParseFloat(fields[5], 64)
			if err != nil {
				return fmt.Errorf("invalid min_stock %q: %w", fields[5], err)
			}
			costPerUnit, err := strconv.ParseFloat(fields[6], 64)
			if err != nil {
				return fmt.Errorf("invalid cost_per_unit %q: %w", fields[6], err)
			}
			_, err = tx.ExecContext(ctx, query,
				fields[0], fields[1], fields[2], fields[3], stock, minStock, costPerUnit)
			return err
		})
}

// seedRecipeEntries expects columns: product_id, ingredient_id, quantity,
// display_unit, position, labor_cost. labor_cost repeats per product row;
// the last value wins.
func seedRecipeEntries(ctx context.Context, tx *sql.Tx, filePath string) error {
	recipeQuery := `
		INSERT INTO recipes (product_id, labor_cost, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (product_id) DO UPDATE SET labor_cost = EXCLUDED.labor_cost, updated_at = NOW()
	`
	entryQuery := `
		INSERT INTO recipe_entries (product_id, ingredient_id, quantity, display_unit, position)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (product_id, ingredient_id) DO UPDATE SET
			quantity = EXCLUDED.quantity,
			display_unit = EXCLUDED.display_unit,
			position = EXCLUDED.position
	`
	return forEachRecord(filePath, []string{"product_id", "ingredient_id", "quantity", "display_unit", "position", "labor_cost"},
		func(fields []string) error {
			quantity, err := strconv.ParseFloat(fields[2], 64)
			if err != nil {
				return fmt.Errorf("invalid quantity %q: %w", fields[2], err)
			}
			position, err := strconv.Atoi(fields[4])
			if err != nil {
				return fmt.Errorf("invalid position %q: %w", fields[4], err)
			}
			laborCost, err := strconv.ParseFloat(fields[5], 64)
			if err != nil {
				return fmt.Errorf("invalid labor_cost %q: %w", fields[5], err)
			}
			if _, err := tx.ExecContext(ctx, recipeQuery, fields[0], laborCost); err != nil {
				return err
			}
			_, err = tx.ExecContext(ctx, entryQuery, fields[0], fields[1], quantity, fields[3], position)
			return err
		})
}

// forEachRecord streams a CSV file, reorders each record to the wanted
// column order based on the header row, and hands it to fn.
func forEachRecord(filePath string, columns []string, fn func(fields []string) error) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}

	indexes := make([]int, len(columns))
	for i, col := range columns {
		indexes[i] = -1
		for j, h := range header {
			if h == col {
				indexes[i] = j
				break
			}
		}
		if indexes[i] < 0 {
			return fmt.Errorf("missing column %q in %s", col, filePath)
		}
	}

	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read CSV record: %w", err)
		}
		line++

		fields := make([]string, len(columns))
		for i, idx := range indexes {
			if idx >= len(record) {
				return fmt.Errorf("line %d: missing value for column %q", line, columns[i])
			}
			fields[i] = record[idx]
		}
		if err := fn(fields); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
}
