// Package aitext is the best-effort text-generation boundary. Every call has
// a static filler fallback; a missing key or a failed request never surfaces
// as an error to the UI.
package aitext

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"anitrackr/internal/models"
	"anitrackr/internal/providers"
	"anitrackr/internal/structures"
)

const (
	emptyLibraryTaste = "Add some anime to your library to get an AI taste analysis!"
	failedTaste       = "AI is taking a nap. Try again later."
)

var fallbackBlurb = []string{"Popular series", "High ratings", "Community favorite"}

type ProviderInterface interface {
	SummarizeTaste(ctx context.Context, library []models.UserAnimeEntry) string
	Blurb(ctx context.Context, title, description string) []string
}

type Provider struct {
	conf   *structures.Config
	logger providers.Logger
	http   *http.Client
}

func NewProvider(conf *structures.Config, logger providers.Logger) ProviderInterface {
	if conf.TextGen.APIKey == "" || conf.TextGen.URL == "" {
		logger.Warnf(providers.TypeApp, "Text generation key missing, static fallbacks only")
		return &fallbackProvider{}
	}
	return &Provider{
		conf:   conf,
		logger: logger,
		http:   &http.Client{Timeout: 25 * time.Second},
	}
}

func (p *Provider) SummarizeTaste(ctx context.Context, library []models.UserAnimeEntry) string {
	if len(library) == 0 {
		return emptyLibraryTaste
	}

	watched := make([]string, 0, len(library))
	for _, e := range library {
		watched = append(watched, fmt.Sprintf("%s (%.0f/10)", e.Metadata.Title.Preferred(), e.Score))
	}
	prompt := fmt.Sprintf(
		"Analyze the following list of anime watched by a user and their ratings:\n%s\n\n"+
			"In 3 concise sentences, describe their \"Otaku Personality\". "+
			"Then, suggest ONE genre they might be overlooking but would enjoy. "+
			"Keep the tone fun and slightly geeky.",
		strings.Join(watched, ", "))

	text, err := p.generate(ctx, prompt)
	if err != nil || text == "" {
		p.logger.Warnf(providers.TypeRemote, "Taste summary generation failed: %v", err)
		return failedTaste
	}
	return text
}

func (p *Provider) Blurb(ctx context.Context, title, description string) []string {
	if len(description) > 200 {
		description = description[:200]
	}
	prompt := fmt.Sprintf(
		"Create 3 short, punchy, \"selling points\" (bullet points) for the anime %q. "+
			"Use the provided description for context if needed: %q\n\n"+
			"Rules:\n- Max 5-6 words per bullet.\n"+
			"- Focus on vibes (e.g., \"Mind-bending plot twists\", \"Stunning animation\").\n"+
			"- Return ONLY the 3 bullets separated by newlines. No dashes.",
		title, description)

	text, err := p.generate(ctx, prompt)
	if err != nil {
		p.logger.Warnf(providers.TypeRemote, "Blurb generation failed: %v", err)
		return fallbackBlurb
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
		if len(lines) == 3 {
			break
		}
	}
	if len(lines) == 0 {
		return fallbackBlurb
	}
	return lines
}

func (p *Provider) generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": []map[string]string{{"text": prompt}}},
		},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", p.conf.TextGen.URL, p.conf.TextGen.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", p.conf.TextGen.APIKey)

	resp, err := p.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("text generation status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var out struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return "", err
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}
	return strings.TrimSpace(out.Candidates[0].Content.Parts[0].Text), nil
}

type fallbackProvider struct{}

func (f *fallbackProvider) SummarizeTaste(_ context.Context, library []models.UserAnimeEntry) string {
	if len(library) == 0 {
		return emptyLibraryTaste
	}
	return failedTaste
}

func (f *fallbackProvider) Blurb(_ context.Context, _, _ string) []string {
	return []string{"Studio details unavailable", "Year unavailable", "Check online for more info"}
}
