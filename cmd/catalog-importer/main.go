// catalog-importer loads an activity catalog file into the database.
// Safe to re-run: activities are keyed by title and never duplicated.
package main

import (
	"fmt"
	"log"
	"os"
	"xavilearn/catalog"
	"xavilearn/database"
	"xavilearn/models"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	path := "./catalog/activities.json"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatal("Failed to read catalog file:", err)
	}

	entries, err := catalog.Parse(data)
	if err != nil {
		log.Fatal("Failed to parse catalog:", err)
	}
	if problems := catalog.Lint(entries); len(problems) > 0 {
		for _, p := range problems {
			fmt.Printf("%s: %s\n", path, p)
		}
		log.Fatalf("Catalog has %d problems, fix them before importing", len(problems))
	}

	fmt.Printf("Found %d activities in %s\n\n", len(entries), path)

	database.InitDB()
	defer database.CloseDB()
	db := database.GetDB()

	created := 0
	for _, e := range entries {
		activity := models.Activity{
			Title:       e.Title,
			Description: e.Description,
			MathTopic:   e.MathTopic,
			Difficulty:  e.Difficulty,
			XPValue:     e.XPValue,
			CoinValue:   e.CoinValue,
			IsActive:    true,
		}
		res := db.Where(models.Activity{Title: e.Title}).FirstOrCreate(&activity)
		if res.Error != nil {
			log.Printf("Error importing %q: %v", e.Title, res.Error)
			continue
		}
		if res.RowsAffected > 0 {
			created++
			fmt.Printf("Imported: %s\n", e.Title)
		}
	}

	fmt.Printf("\n✓ Import completed: %d new, %d already present\n", created, len(entries)-created)

	var count int64
	db.Model(&models.Activity{}).Count(&count)
	fmt.Printf("✓ Total activities in database: %d\n", count)
}
