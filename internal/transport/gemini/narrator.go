// Package gemini implements domain.Narrator on the Google GenAI API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/talentgrid/matchd/internal/domain"
)

const defaultModel = "gemini-2.5-flash"

// Narrator generates recruiter-facing analysis of the top matches.
type Narrator struct {
	client    *genai.Client
	modelName string
}

// NewNarrator creates a Narrator configured for the Gemini API backend.
func NewNarrator(ctx context.Context, apiKey, model string) (*Narrator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	return &Narrator{client: client, modelName: model}, nil
}

// Summarize implements domain.Narrator. The caller owns the deadline and
// the failure fallback; this only reports the error.
func (n *Narrator) Summarize(ctx context.Context, query string, matches []domain.MatchResult) (string, error) {
	if len(matches) == 0 {
		return "No matching resumes found.", nil
	}

	resp, err := n.client.Models.GenerateContent(
		ctx, n.modelName, genai.Text(buildPrompt(query, matches)), nil,
	)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := collectText(resp)
	if text == "" {
		return "", errors.New("gemini api returned empty response")
	}
	return text, nil
}

// buildPrompt assembles the analysis prompt from the query and match context.
func buildPrompt(query string, matches []domain.MatchResult) string {
	var ctxb strings.Builder
	for i, m := range matches {
		c := m.Candidate
		if i > 0 {
			ctxb.WriteString("\n\n")
		}
		fmt.Fprintf(&ctxb,
			"Name: %s\nSummary: %s\nSkills: %s\nExperience: %s\nEducation: %s\nLocation: %s\nSimilarity: %.2f",
			c.Name, c.Summary, strings.Join(c.Skills, ", "), c.Experience, c.Education, c.Location,
			m.SimilarityScore,
		)
	}

	return fmt.Sprintf(`You are a helpful assistant helping recruiters find suitable candidates.

User query: %q

Resume database (top matches):
%s

Based on the above, provide a detailed analysis:
1. Best matches (with reasoning)
2. Why they match the requirements
3. Key qualifications and experience
4. Any potential concerns or missing qualifications
5. Recommendations for next steps

Format your response in a clear, structured way.`, query, ctxb.String())
}

// collectText joins the textual parts of every candidate response.
func collectText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(text)
		}
	}
	return strings.TrimSpace(b.String())
}
