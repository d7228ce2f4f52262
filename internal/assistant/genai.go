package assistant

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// NavigateFunction is the tool the model calls to move the user to another page.
const NavigateFunction = "navigate_to_page"

// GenAIGenerator generates replies with Google's Gemini API.
type GenAIGenerator struct {
	client *genai.Client
	model  string
}

// NewGenAIGenerator creates a Gemini-backed generator.
func NewGenAIGenerator(ctx context.Context, apiKey, model string) (*GenAIGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GenAIGenerator{client: client, model: model}, nil
}

// Generate sends the conversation and the new message to the model.
func (g *GenAIGenerator) Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, m := range req.History {
		var role genai.Role = genai.RoleUser
		if m.Role == "model" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Text, role))
	}
	contents = append(contents, genai.NewContentFromText(req.Message, genai.RoleUser))

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.SystemInstruction, genai.RoleUser),
		Tools: []*genai.Tool{{
			FunctionDeclarations: []*genai.FunctionDeclaration{navigateDeclaration(req.Pages)},
		}},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return GenerateResult{}, fmt.Errorf("GenAI generate failed: %w", err)
	}

	res := GenerateResult{Text: resp.Text()}
	for _, call := range resp.FunctionCalls() {
		if call.Name != NavigateFunction {
			continue
		}
		if page, ok := call.Args["page"].(string); ok {
			res.NavigatePage = page
		}
	}
	return res, nil
}

func navigateDeclaration(pages []string) *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        NavigateFunction,
		Description: "Navigate the user to a specific page or section of the application.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"page": {
					Type:        genai.TypeString,
					Description: "The destination page logical name.",
					Enum:        pages,
				},
			},
			Required: []string{"page"},
		},
	}
}
