package client

import "google.golang.org/genai"

// Generation holds the sampling parameters sent with every request.
type Generation struct {
	Temperature     float32
	MaxOutputTokens int32
}

// permissiveCategories are relaxed because source documents are arbitrary
// study material that trips the default filters.
var permissiveCategories = []genai.HarmCategory{
	genai.HarmCategoryDangerousContent,
	genai.HarmCategoryHarassment,
	genai.HarmCategoryHateSpeech,
	genai.HarmCategorySexuallyExplicit,
}

// NewGenerateRequest builds a request carrying the whole conversation.
func NewGenerateRequest(contents []*genai.Content, gen Generation) GenerateRequest {
	temperature := gen.Temperature
	req := GenerateRequest{
		Contents: contents,
		GenerationConfig: &genai.GenerationConfig{
			Temperature:     &temperature,
			MaxOutputTokens: gen.MaxOutputTokens,
		},
	}

	for _, category := range permissiveCategories {
		req.SafetySettings = append(req.SafetySettings, &genai.SafetySetting{
			Category:  category,
			Threshold: genai.HarmBlockThresholdBlockNone,
		})
	}
	return req
}
