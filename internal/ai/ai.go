package ai

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"mspro-labs/brew-notes/internal/models"
)

const (
	embeddingModel  = "text-embedding-004"
	extractionModel = "gemini-1.5-flash"
)

// Client wraps the GenAI client.
type Client struct {
	genaiClient *genai.Client
	embedder    *genai.EmbeddingModel
	extractor   *genai.GenerativeModel
}

// NewClient creates a connected AI client.
func NewClient(ctx context.Context) (*Client, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	c, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create AI client: %w", err)
	}

	extractor := c.GenerativeModel(extractionModel)
	extractor.SetTemperature(0)
	extractor.ResponseMIMEType = "application/json"
	extractor.ResponseSchema = labelSchema
	extractor.SystemInstruction = genai.NewUserContent(genai.Text(extractionInstruction))

	return &Client{
		genaiClient: c,
		embedder:    c.EmbeddingModel(embeddingModel),
		extractor:   extractor,
	}, nil
}

// Close terminates the connection.
func (c *Client) Close() {
	if c.genaiClient != nil {
		c.genaiClient.Close()
	}
}

// --- Label extraction ---

const extractionInstruction = `You read specialty coffee packaging.
Return only what is printed on the label. Copy values in the language they are printed in.
Leave a field empty when the label does not state it. Do not guess.`

var labelSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"name":          {Type: genai.TypeString, Description: "Product name of the coffee"},
		"roaster":       {Type: genai.TypeString, Description: "Roastery or brand"},
		"country":       {Type: genai.TypeString, Description: "Country of origin"},
		"region":        {Type: genai.TypeString, Description: "Growing region within the country"},
		"farm":          {Type: genai.TypeString, Description: "Farm, estate, washing station or producer"},
		"variety":       {Type: genai.TypeString, Description: "Coffee variety or cultivar"},
		"process":       {Type: genai.TypeString, Description: "Processing method"},
		"roast":         {Type: genai.TypeString, Description: "Roast level"},
		"tasting_notes": {Type: genai.TypeString, Description: "Flavor notes listed by the roaster"},
	},
}

// ExtractLabel reads the fields printed on a photo of coffee packaging.
// format is the image subtype, e.g. "jpeg" or "png".
func (c *Client) ExtractLabel(ctx context.Context, image []byte, format string) (models.LabelFields, error) {
	if len(image) == 0 {
		return models.LabelFields{}, fmt.Errorf("empty image")
	}
	return c.extract(ctx, genai.ImageData(format, image), genai.Text("Extract the label fields from this photo."))
}

// ExtractLabelText reads the fields from text already transcribed from a label.
func (c *Client) ExtractLabelText(ctx context.Context, text string) (models.LabelFields, error) {
	if strings.TrimSpace(text) == "" {
		return models.LabelFields{}, fmt.Errorf("empty label text")
	}
	return c.extract(ctx, genai.Text("Extract the label fields from this text:\n\n"+text))
}

func (c *Client) extract(ctx context.Context, parts ...genai.Part) (models.LabelFields, error) {
	res, err := c.extractor.GenerateContent(ctx, parts...)
	if err != nil {
		return models.LabelFields{}, fmt.Errorf("label extraction failed: %w", err)
	}
	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return models.LabelFields{}, fmt.Errorf("AI returned no candidates")
	}

	var sb strings.Builder
	for _, p := range res.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return ParseLabelJSON(sb.String())
}

// ParseLabelJSON decodes a model reply, tolerating a Markdown code fence
// around the JSON object.
func ParseLabelJSON(reply string) (models.LabelFields, error) {
	s := strings.TrimSpace(reply)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}

	var fields models.LabelFields
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &fields); err != nil {
		return models.LabelFields{}, fmt.Errorf("failed to decode label fields: %w", err)
	}
	return fields, nil
}

// --- Embeddings ---

// EmbedString generates a vector for the given text and returns it as a byte slice (for DB storage).
// It also returns the raw []float32 if needed immediately.
func (c *Client) EmbedString(ctx context.Context, text string) ([]byte, []float32, error) {
	res, err := c.embedder.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, nil, err
	}
	if res.Embedding == nil {
		return nil, nil, fmt.Errorf("AI returned empty embedding")
	}

	blob, err := FloatsToBytes(res.Embedding.Values)
	if err != nil {
		return nil, nil, err
	}
	return blob, res.Embedding.Values, nil
}

// --- Vector Math Helpers ---

// CosineSimilarity calculates the similarity between two vectors (0.0 to 1.0).
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dotProduct, magA, magB float32
	for i := 0; i < len(a); i++ {
		dotProduct += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dotProduct / (float32(math.Sqrt(float64(magA))) * float32(math.Sqrt(float64(magB))))
}

// FloatsToBytes converts a []float32 slice to a []byte slice (BLOB) for SQLite.
func FloatsToBytes(floats []float32) ([]byte, error) {
	buf := new(bytes.Buffer)
	err := binary.Write(buf, binary.LittleEndian, floats)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BytesToFloats converts the stored byte slice back to []float32.
func BytesToFloats(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("invalid byte length for float32 slice")
	}
	floats := make([]float32, len(b)/4)
	err := binary.Read(bytes.NewReader(b), binary.LittleEndian, &floats)
	return floats, err
}
