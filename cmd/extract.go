package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"mspro-labs/brew-notes/internal/ai"
	"mspro-labs/brew-notes/internal/db"
	"mspro-labs/brew-notes/internal/models"
	"mspro-labs/brew-notes/internal/prefill"
)

var (
	extractSave    bool
	extractOverall int
	extractText    string
)

var extractCmd = &cobra.Command{
	Use:   "extract [image]",
	Short: "Read a coffee bag photo or label text and match it",
	Long: `Sends a photo of coffee packaging, or text copied off a label, to Gemini, then
matches what it reads against the catalog. Use --save to add the result to the journal.
Examples:
  brew-notes extract bag.jpg
  brew-notes extract --text "Ethiopia Yirgacheffe Kochere, washed heirloom, light roast"`,
	Args: extractArgs,
	Run: func(cmd *cobra.Command, args []string) {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		runExtract(path)
	},
}

func init() {
	extractCmd.Flags().BoolVar(&extractSave, "save", false, "Save the result as a tasting note")
	extractCmd.Flags().IntVar(&extractOverall, "overall", 0, "Overall rating (0-5) when saving")
	extractCmd.Flags().StringVar(&extractText, "text", "", "Label text to read instead of a photo")
	rootCmd.AddCommand(extractCmd)
}

// extractArgs wants exactly one source: an image path or --text.
func extractArgs(cmd *cobra.Command, args []string) error {
	text, _ := cmd.Flags().GetString("text")
	hasText := strings.TrimSpace(text) != ""
	switch {
	case len(args) > 1:
		return errors.New("extract takes a single image")
	case len(args) == 1 && hasText:
		return errors.New("give an image or --text, not both")
	case len(args) == 0 && !hasText:
		return errors.New("give an image path or --text")
	}
	return nil
}

// labelReader is the part of the AI client extract needs.
type labelReader interface {
	ExtractLabel(ctx context.Context, image []byte, format string) (models.LabelFields, error)
	ExtractLabelText(ctx context.Context, text string) (models.LabelFields, error)
}

// readLabel reads label fields from text when given, otherwise from the photo at path.
func readLabel(ctx context.Context, r labelReader, path, text string) (models.LabelFields, error) {
	if strings.TrimSpace(text) != "" {
		return r.ExtractLabelText(ctx, text)
	}
	image, err := os.ReadFile(path)
	if err != nil {
		return models.LabelFields{}, fmt.Errorf("failed to read image: %w", err)
	}
	format, err := imageFormat(image)
	if err != nil {
		return models.LabelFields{}, fmt.Errorf("%s: %w", path, err)
	}
	return r.ExtractLabel(ctx, image, format)
}

func runExtract(path string) {
	ctx := context.Background()

	// 1. Config & catalog
	appCfg := mustAppConfig()
	m := mustMatcher(appCfg)

	// 2. Ask the model
	aiClient, err := ai.NewClient(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize AI client: %v", err)
	}
	defer aiClient.Close()

	log.Println("🤖 Reading label...")
	label, err := readLabel(ctx, aiClient, path, extractText)
	if err != nil {
		log.Fatalf("Extraction failed: %v", err)
	}

	// 3. Match
	heading.Printf("%s", label.Name)
	if label.Roaster != "" {
		fmt.Printf(" · %s", label.Roaster)
	}
	fmt.Println()
	printForm(os.Stdout, prefill.FromLabel(m, label))

	if !extractSave {
		return
	}

	// 4. Save
	database := mustDB(appCfg)
	defer database.Close()

	note := prefill.Note(m, label)
	note.Ratings.Overall = extractOverall
	if note.CoffeeName == "" && path != "" {
		note.CoffeeName = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := db.SaveNote(database, &note); err != nil {
		log.Fatalf("Failed to save note: %v", err)
	}
	fmt.Printf("✅ Saved note #%d.\n", note.ID)
}

// imageFormat sniffs the image subtype ("jpeg", "png", ...) from its bytes.
func imageFormat(b []byte) (string, error) {
	ct := http.DetectContentType(b)
	format, ok := strings.CutPrefix(ct, "image/")
	if !ok {
		return "", fmt.Errorf("not an image (%s)", ct)
	}
	return format, nil
}
