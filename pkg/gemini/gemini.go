package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"os"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"dermasnap/pkg/backend"
	"dermasnap/pkg/imaging"
)

// maxOutputTokens bounds generation length so downstream parsing stays
// tractable; generation is greedy (temperature 0, no sampling).
const maxOutputTokens = 500

var ErrNoResponse = errors.New("no response from model")

// Prompts per analysis category, asking the model for exact numbers in a
// structured format. Unknown categories fall back to the full prompt.
var prompts = map[string]string{
	"acne": "Analyze this skin image specifically for acne. " +
		"Identify and count all types of lesions: comedones (blackheads/whiteheads), " +
		"pustules (with pus), papules (without pus), and nodules (large/deep). " +
		"Provide: 1) Total lesion count, 2) Count by type, 3) Lesion density per cm², " +
		"4) Inflammatory percentage, 5) Redness index, 6) Pore count and density, " +
		"7) Overall severity (Mild/Moderate/Severe). " +
		"Format your response as structured data with exact numbers.",
	"pigmentation": "Analyze this skin image specifically for pigmentation issues. " +
		"Identify dark spots, hyperpigmentation, and uneven skin tone. " +
		"Provide: 1) Pigmented area percentage, 2) Average intensity difference, " +
		"3) Skin Hyperpigmentation Index (SHI), 4) Spot count, 5) Spot density per cm², " +
		"6) Overall severity (Mild/Moderate/Severe). " +
		"Format your response as structured data with exact numbers.",
	"wrinkles": "Analyze this skin image specifically for wrinkles and fine lines. " +
		"Identify all visible lines and measure their characteristics. " +
		"Provide: 1) Total wrinkle count, 2) Wrinkles per cm², " +
		"3) Average length in mm, 4) Average depth (intensity), " +
		"5) Density percentage, 6) Overall severity (Mild/Moderate/Severe). " +
		"Format your response as structured data with exact numbers.",
	"full": "Perform a comprehensive skin analysis covering acne, pigmentation, and wrinkles. " +
		"For ACNE: Provide total lesion count, count by type (comedones, pustules, papules, nodules), " +
		"lesion density per cm², inflammatory percentage, redness index, pore count and density, " +
		"and severity (Mild/Moderate/Severe). " +
		"For PIGMENTATION: Provide pigmented area percentage, average intensity difference, " +
		"SHI score, spot count, spot density, and severity. " +
		"For WRINKLES: Provide total count, count per cm², average length, average depth, " +
		"density percentage, and severity. " +
		"Format your response as structured data with exact numbers for each condition.",
}

const systemInstruction = "You are an expert dermatologist. Provide detailed, quantitative analysis " +
	"of skin conditions. Always provide exact numbers and metrics when possible. " +
	"Use structured format with clear labels for each metric."

type IGemini interface {
	EnsureLoaded(ctx context.Context) error
	IsReady() bool
	Reload(ctx context.Context) error
	ModelName() string
	AnalyzeSkin(ctx context.Context, base64Image string, analysisType string) (string, error)
}

type geminiClient struct {
	handle    backend.Handle
	apiKey    string
	modelName string
	client    *genai.Client
}

// New builds the narrative analysis client. The underlying genai connection
// is not opened here; the first EnsureLoaded does that once.
func New() IGemini {
	modelName := os.Getenv("GEMINI_MODEL_NAME")
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}

	return &geminiClient{
		apiKey:    os.Getenv("GEMINI_API_KEY"),
		modelName: modelName,
	}
}

// EnsureLoaded initializes the genai client exactly once. A failed load is
// sticky: later calls short-circuit to the recorded error instead of
// re-attempting, until Reload is invoked.
func (g *geminiClient) EnsureLoaded(ctx context.Context) error {
	return g.handle.Ensure(func() error {
		if g.apiKey == "" {
			return errors.New("gemini API key is required")
		}

		client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
		if err != nil {
			return err
		}

		g.client = client
		return nil
	})
}

func (g *geminiClient) IsReady() bool {
	return g.handle.Ready()
}

// Reload is the supervisor hook: it clears a sticky failure and retries the
// load eagerly. Never called on the per-request path.
func (g *geminiClient) Reload(ctx context.Context) error {
	g.handle.Reset()
	return g.EnsureLoaded(ctx)
}

func (g *geminiClient) ModelName() string {
	return g.modelName
}

// AnalyzeSkin generates the narrative analysis for one image. The category
// selects the prompt; generation is deterministic so repeated calls on the
// same image produce stable, parseable output.
func (g *geminiClient) AnalyzeSkin(ctx context.Context, base64Image string, analysisType string) (string, error) {
	if err := g.EnsureLoaded(ctx); err != nil {
		return "", err
	}

	imgData, err := base64.StdEncoding.DecodeString(imaging.StripDataURL(base64Image))
	if err != nil {
		return "", imaging.ErrInvalidEncoding
	}

	prompt, ok := prompts[analysisType]
	if !ok {
		prompt = prompts["full"]
	}

	model := g.client.GenerativeModel(g.modelName)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemInstruction)}}
	model.SetTemperature(0)
	model.SetCandidateCount(1)
	model.SetMaxOutputTokens(maxOutputTokens)

	img := genai.ImageData(imageFormat(base64Image), imgData)
	res, err := model.GenerateContent(ctx, genai.Text(prompt), img)
	if err != nil {
		return "", err
	}

	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil || len(res.Candidates[0].Content.Parts) == 0 {
		return "", ErrNoResponse
	}

	text, ok := res.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", ErrNoResponse
	}

	return string(text), nil
}

// imageFormat maps the payload's data-URL marker onto the genai format
// label. Unmarked payloads are treated as JPEG, matching artifact naming.
func imageFormat(payload string) string {
	switch imaging.MimeExtension(payload) {
	case ".png":
		return "png"
	case ".webp":
		return "webp"
	default:
		return "jpeg"
	}
}

func (g *geminiClient) Close() {
	if g.client != nil {
		g.client.Close()
	}
}
