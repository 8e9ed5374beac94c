package aitext

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anitrackr/internal/models"
	"anitrackr/internal/testutil"
)

func setupProvider(t *testing.T, handler http.HandlerFunc) ProviderInterface {
	t.Helper()
	conf := testutil.NewTestConfig()
	conf.TextGen.APIKey = "test-key"
	conf.TextGen.Model = "test-model"
	if handler != nil {
		server := httptest.NewServer(handler)
		t.Cleanup(server.Close)
		conf.TextGen.URL = server.URL
	} else {
		conf.TextGen.URL = "http://127.0.0.1:1"
	}
	return NewProvider(conf, &testutil.MockLogger{})
}

func generatedText(text string) string {
	quoted, _ := json.Marshal(text)
	return `{"candidates":[{"content":{"parts":[{"text":` + string(quoted) + `}]}}]}`
}

func tasteLibrary() []models.UserAnimeEntry {
	return []models.UserAnimeEntry{
		{
			Score: 9,
			Metadata: models.AnimeMetadata{
				Title: models.MediaTitle{English: "Frieren: Beyond Journey's End"},
			},
		},
	}
}

func TestSummarizeTaste_EmptyLibrary(t *testing.T) {
	p := setupProvider(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("empty library must not hit the network")
	})

	assert.Equal(t, emptyLibraryTaste, p.SummarizeTaste(context.Background(), nil))
}

func TestSummarizeTaste_SendsTitlesAndScores(t *testing.T) {
	p := setupProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		assert.Contains(t, r.URL.Path, "test-model:generateContent")
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), "Frieren: Beyond Journey's End (9/10)")
		io.WriteString(w, generatedText("You love melancholic fantasy.  "))
	})

	taste := p.SummarizeTaste(context.Background(), tasteLibrary())
	assert.Equal(t, "You love melancholic fantasy.", taste)
}

func TestSummarizeTaste_FallbackOnFailure(t *testing.T) {
	p := setupProvider(t, nil)

	assert.Equal(t, failedTaste, p.SummarizeTaste(context.Background(), tasteLibrary()))
}

func TestSummarizeTaste_FallbackOnEmptyCandidates(t *testing.T) {
	p := setupProvider(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"candidates":[]}`)
	})

	assert.Equal(t, failedTaste, p.SummarizeTaste(context.Background(), tasteLibrary()))
}

func TestBlurb_SplitsLines(t *testing.T) {
	p := setupProvider(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, generatedText("Mind-bending plot twists\n\nStunning animation\nUnforgettable soundtrack\nExtra line"))
	})

	lines := p.Blurb(context.Background(), "Frieren", "The adventure is over but life goes on.")
	assert.Equal(t, []string{"Mind-bending plot twists", "Stunning animation", "Unforgettable soundtrack"}, lines)
}

func TestBlurb_FallbackOnFailure(t *testing.T) {
	p := setupProvider(t, nil)

	assert.Equal(t, fallbackBlurb, p.Blurb(context.Background(), "Frieren", ""))
}

func TestBlurb_TruncatesLongDescriptions(t *testing.T) {
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'a'
	}
	p := setupProvider(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Less(t, len(body), 700)
		io.WriteString(w, generatedText("Pure vibes"))
	})

	lines := p.Blurb(context.Background(), "Frieren", string(long))
	assert.Equal(t, []string{"Pure vibes"}, lines)
}

func TestNewProvider_MissingKeyUsesStaticFallbacks(t *testing.T) {
	conf := testutil.NewTestConfig()
	conf.TextGen.APIKey = ""
	logger := &testutil.MockLogger{}

	p := NewProvider(conf, logger)
	require.IsType(t, &fallbackProvider{}, p)

	assert.Equal(t, emptyLibraryTaste, p.SummarizeTaste(context.Background(), nil))
	assert.Equal(t, failedTaste, p.SummarizeTaste(context.Background(), tasteLibrary()))
	assert.Len(t, p.Blurb(context.Background(), "Frieren", ""), 3)
	require.NotEmpty(t, logger.Logs)
}
