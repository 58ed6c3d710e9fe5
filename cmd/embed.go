package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"mspro-labs/brew-notes/internal/ai"
	"mspro-labs/brew-notes/internal/embedder"
)

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Generate AI embeddings for new tasting notes",
	Long:  `Finds notes in the journal that are missing semantic vectors and generates them using the Gemini API.`,
	Run: func(cmd *cobra.Command, args []string) {
		runEmbed()
	},
}

func init() {
	rootCmd.AddCommand(embedCmd)
}

func runEmbed() {
	ctx := context.Background()

	// 1. Config & DB
	appCfg := mustAppConfig()
	database := mustDB(appCfg)
	defer database.Close()

	// 2. Initialize AI
	aiClient, err := ai.NewClient(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize AI client: %v", err)
	}
	defer aiClient.Close()

	// 3. Run Shared Embedder Logic
	n, err := embedder.Run(ctx, database, aiClient)
	if err != nil {
		log.Fatalf("Embedding process failed: %v", err)
	}
	log.Printf("Embedded %d notes.", n)
}
