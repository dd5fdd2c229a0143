package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shhiivvaam/ecommerce-backend/config"
	"github.com/shhiivvaam/ecommerce-backend/internal/app"
	"github.com/shhiivvaam/ecommerce-backend/internal/db"
	"github.com/shhiivvaam/ecommerce-backend/internal/importer"
	"github.com/shhiivvaam/ecommerce-backend/pkg/logger"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "seed",
		Usage: "Database maintenance and catalog import",
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "Run database migrations",
				Action: func(ctx context.Context, c *cli.Command) error {
					if _, err := connect(); err != nil {
						return err
					}
					defer db.Close()

					if err := db.Migrate(); err != nil {
						return err
					}
					fmt.Println("Migration complete")
					return nil
				},
			},
			{
				Name:      "import-catalog",
				Usage:     "Import products and categories from an XLSX workbook",
				ArgsUsage: "<file.xlsx>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "skip the confirmation prompt"},
				},
				Action: importCatalog,
			},
			{
				Name:  "create-admin",
				Usage: "Create an admin account or promote an existing one",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true},
					&cli.StringFlag{Name: "name", Value: "Administrator"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := connect()
					if err != nil {
						return err
					}
					defer db.Close()

					services := app.NewServices(db.GetDB(), cfg, app.Options{})
					user, err := services.Auth.CreateAdmin(c.String("email"), c.String("password"), c.String("name"))
					if err != nil {
						return err
					}
					fmt.Printf("Admin ready: %s (id %d)\n", user.Email, user.ID)
					return nil
				},
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		logger.Fatal("Command failed", err)
	}
}

func connect() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger.Initialize(logger.Config{Level: cfg.Log.Level, Format: "console", EnableColor: true})

	if err := db.Initialize(&cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return cfg, nil
}

func importCatalog(ctx context.Context, c *cli.Command) error {
	filePath := c.Args().First()
	if filePath == "" {
		return fmt.Errorf("usage: seed import-catalog <file.xlsx>")
	}

	cfg, err := connect()
	if err != nil {
		return err
	}
	defer db.Close()

	if !c.Bool("yes") {
		fmt.Printf("Import catalog from %s? (yes/no): ", filePath)
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "yes" && confirm != "y" {
			fmt.Println("Import cancelled.")
			return nil
		}
	}

	services := app.NewServices(db.GetDB(), cfg, app.Options{})
	report, err := importer.NewCatalogImporter(services.Products, services.Category).ImportFile(ctx, filePath)
	if err != nil {
		return err
	}

	fmt.Printf("\nSummary:\n")
	fmt.Printf("  Products created:   %d\n", report.Products)
	fmt.Printf("  Variants created:   %d\n", report.Variants)
	fmt.Printf("  Categories created: %d\n", report.Categories)
	fmt.Printf("  Skipped rows:       %d\n", len(report.Skipped))
	for _, skipped := range report.Skipped {
		fmt.Printf("    row %d: %s\n", skipped.Row, skipped.Reason)
	}
	return nil
}
