package cmd

import (
	"database/sql"
	"log"

	"mspro-labs/brew-notes/internal/catalog"
	"mspro-labs/brew-notes/internal/config"
	"mspro-labs/brew-notes/internal/db"
	"mspro-labs/brew-notes/internal/matcher"
)

func mustAppConfig() config.AppConfig {
	appCfg, err := config.GetAppConfig()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	return appCfg
}

func mustMatcher(appCfg config.AppConfig) *matcher.Matcher {
	cat, err := catalog.Load(appCfg.CatalogPath)
	if err != nil {
		log.Fatalf("Catalog error: %v", err)
	}
	return matcher.NewWithOptions(cat, matcher.Options{MinConfidence: appCfg.MinConfidence})
}

func mustDB(appCfg config.AppConfig) *sql.DB {
	database, err := db.Connect(appCfg.DBPath)
	if err != nil {
		log.Fatalf("Database error: %v", err)
	}
	return database
}
