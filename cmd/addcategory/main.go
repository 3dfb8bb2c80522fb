// Command addcategory inserts a new expense category. Categories are global
// and have no HTTP write surface, so administrative additions go through
// this tool.
package main

import (
	"flag"
	"fmt"
	"os"

	"spendwise/internal/config"
	"spendwise/internal/database"
	"spendwise/internal/logger"
	"spendwise/internal/services"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("addcategory", flag.ContinueOnError)
	name := fs.String("name", "", "Category name (required)")
	description := fs.String("description", "", "Category description")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *name == "" {
		fs.PrintDefaults()
		return fmt.Errorf("missing required flag: name")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	dbManager, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	categoryService := services.NewCategoryService(dbManager.DB())
	category, err := categoryService.CreateCategory(*name, *description)
	if err != nil {
		return err
	}

	fmt.Printf("Category %q created with ID %d\n", category.Name, category.ID)
	return nil
}
