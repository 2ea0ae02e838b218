package report

import (
	"context"
	"fmt"
	"os"
	"strings"

	"flight-analysis/flight"

	"google.golang.org/genai"
)

// NarrativeWriter turns a computed AnalysisResult into a short plain-language
// flight safety report. It only ever sees the structured result, never raw
// telemetry.
type NarrativeWriter struct {
	client *genai.Client
	ctx    context.Context
}

// NewNarrativeWriter builds a writer from the GEMINI_API_KEY environment
// variable.
func NewNarrativeWriter() (*NarrativeWriter, error) {
	ctx := context.Background()

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %v", err)
	}

	return &NarrativeWriter{client: client, ctx: ctx}, nil
}

const systemPrompt = `You are a flight data review assistant. You receive the
structured output of an automated flight log analysis (aircraft type,
confidence, risk score and level, flagged anomalies, feature attribution) and
write a short report for a flight operations reviewer.

State the aircraft type and overall risk first, then the most important
anomalies and what drove them. Be factual and concise; do not speculate
beyond the provided data. Keep the report under 200 words.`

// WriteNarrative generates the report text for one analysis result.
func (w *NarrativeWriter) WriteNarrative(result *flight.AnalysisResult) (string, error) {
	systemInstruction := genai.NewContentFromText(systemPrompt, genai.RoleModel)
	userContent := genai.NewContentFromText(describe(result), genai.RoleUser)

	config := &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction,
		Temperature:       genai.Ptr(float32(0.4)),
		TopP:              genai.Ptr(float32(0.8)),
		TopK:              genai.Ptr(float32(40)),
		MaxOutputTokens:   int32(300),
	}

	resp, err := w.client.Models.GenerateContent(
		w.ctx,
		"gemini-2.5-flash",
		[]*genai.Content{userContent},
		config,
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate narrative: %v", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty narrative response")
	}
	return strings.ReplaceAll(text, "*", ""), nil
}

// describe flattens the structured result into the prompt payload.
func describe(result *flight.AnalysisResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Aircraft type: %s (confidence %.2f)\n", result.AircraftType, result.AircraftConfidence)
	fmt.Fprintf(&b, "Risk: %.2f (%s) over %d rows\n", result.RiskScore, result.RiskLevel, result.Rows)
	fmt.Fprintf(&b, "Anomalous rows: %d\n", len(result.Anomalies))
	for i, anomaly := range result.Anomalies {
		if i == 5 {
			fmt.Fprintf(&b, "... and %d more\n", len(result.Anomalies)-i)
			break
		}
		fmt.Fprintf(&b, "- t=%.1fs p=%.2f: %s\n", anomaly.Timestamp, anomaly.Probability, anomaly.Description)
	}
	if result.Explanation.Summary != "" {
		fmt.Fprintf(&b, "Attribution: %s\n", result.Explanation.Summary)
	}
	return b.String()
}

func (w *NarrativeWriter) Close() error {
	// the genai client manages its resources automatically
	return nil
}
