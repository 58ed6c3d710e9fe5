package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"mspro-labs/brew-notes/internal/ai"
	"mspro-labs/brew-notes/internal/web"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web UI and JSON API",
	Run: func(cmd *cobra.Command, args []string) {
		runServer()
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (default PORT or 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServer() {
	// 1. Setup
	appCfg := mustAppConfig()
	m := mustMatcher(appCfg)
	database := mustDB(appCfg)
	defer database.Close()

	// 2. Initialize AI
	// Search and extraction are optional; matching and the journal work without a key.
	ctx := context.Background()
	var server *web.Server
	aiClient, err := ai.NewClient(ctx)
	if err != nil {
		log.Printf("⚠️ Warning: semantic search and label extraction disabled (check GEMINI_API_KEY): %v", err)
		server, err = web.NewServer(database, m, nil, nil)
	} else {
		defer aiClient.Close()
		server, err = web.NewServer(database, m, aiClient, aiClient)
	}
	if err != nil {
		log.Fatalf("Failed to build server: %v", err)
	}

	// 3. Start Server
	port := appCfg.Port
	if servePort != 0 {
		port = servePort
	}
	if err := server.Start(port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
