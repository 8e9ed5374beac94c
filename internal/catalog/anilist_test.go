package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anitrackr/internal/testutil"
)

type catalogFixture struct {
	service ServiceInterface
	cache   *testutil.MockCache
	logger  *testutil.MockLogger
	server  *httptest.Server
}

func setupCatalog(t *testing.T, handler http.HandlerFunc) *catalogFixture {
	t.Helper()
	f := &catalogFixture{
		cache:  testutil.NewMockCache(),
		logger: &testutil.MockLogger{},
	}
	if handler != nil {
		f.server = httptest.NewServer(handler)
		t.Cleanup(f.server.Close)
	}

	conf := testutil.NewTestConfig()
	if f.server != nil {
		conf.Catalog.URL = f.server.URL
	} else {
		// Nothing is listening here, every request fails at dial time.
		conf.Catalog.URL = "http://127.0.0.1:1"
	}
	f.service = NewService(conf, f.logger, f.cache)
	return f
}

func pagePayload(items ...map[string]interface{}) []byte {
	data, _ := json.Marshal(map[string]interface{}{
		"data": map[string]interface{}{
			"Page": map[string]interface{}{"media": items},
		},
	})
	return data
}

func mediaPayload(item map[string]interface{}) []byte {
	data, _ := json.Marshal(map[string]interface{}{
		"data": map[string]interface{}{"Media": item},
	})
	return data
}

func frierenMedia() map[string]interface{} {
	return map[string]interface{}{
		"id":    154587,
		"title": map[string]string{"romaji": "Sousou no Frieren", "english": "Frieren: Beyond Journey's End"},
		"coverImage": map[string]string{
			"large":  "https://img.test/frieren-large.jpg",
			"medium": "https://img.test/frieren-medium.jpg",
		},
		"episodes":     28,
		"duration":     24,
		"status":       "FINISHED",
		"format":       "TV",
		"genres":       []string{"Adventure", "Drama", "Fantasy"},
		"averageScore": 89,
		"seasonYear":   2023,
		"studios": map[string]interface{}{
			"nodes": []map[string]string{{"name": "MADHOUSE"}},
		},
		"description": "The adventure is over but life goes on.",
	}
}

func TestCatalogTrending_ParsesMedia(t *testing.T) {
	f := setupCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), "TRENDING_DESC")
		assert.Contains(t, string(body), `"perPage":10`)
		w.Write(pagePayload(frierenMedia()))
	})

	results, err := f.service.Trending(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 154587, results[0].ID)
	assert.Equal(t, "Frieren: Beyond Journey's End", results[0].Title.English)
	assert.Equal(t, "MADHOUSE", results[0].Studio)
	assert.Equal(t, 28, results[0].Episodes)
}

func TestCatalogTrending_FallbackOnConnectionFailure(t *testing.T) {
	f := setupCatalog(t, nil)

	results, err := f.service.Trending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fallbackAnimeList, results)
	require.NotEmpty(t, f.logger.Logs)
}

func TestCatalogTrending_FallbackOnGraphQLErrors(t *testing.T) {
	f := setupCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors":[{"message":"rate limited"}]}`))
	})

	results, err := f.service.Trending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fallbackAnimeList, results)
}

func TestCatalogTrending_FallbackOnServerError(t *testing.T) {
	f := setupCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	results, err := f.service.Trending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fallbackAnimeList, results)
}

func TestCatalogQuery_CacheHitSkipsNetwork(t *testing.T) {
	requests := 0
	f := setupCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write(pagePayload(frierenMedia()))
	})

	first, err := f.service.Trending(context.Background())
	require.NoError(t, err)
	second, err := f.service.Trending(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, requests)
	assert.Equal(t, first, second)
}

func TestCatalogQuery_ErrorResponsesAreNotCached(t *testing.T) {
	f := setupCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors":[{"message":"rate limited"}]}`))
	})

	_, err := f.service.Trending(context.Background())
	require.NoError(t, err)
	assert.Empty(t, f.cache.Data)
}

func TestCatalogSearch_EmptyQuery(t *testing.T) {
	f := setupCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("empty query must not hit the network")
	})

	results, err := f.service.Search(context.Background(), "", true)
	require.NoError(t, err)
	assert.Nil(t, results)
}

func TestCatalogSearch_AdultRunsBothVariants(t *testing.T) {
	var variants []bool
	f := setupCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Variables struct {
				IsAdult bool `json:"isAdult"`
			} `json:"variables"`
		}
		assert.NoError(t, json.Unmarshal(body, &req))
		variants = append(variants, req.Variables.IsAdult)
		w.Write(pagePayload(frierenMedia()))
	})

	results, err := f.service.Search(context.Background(), "frieren", true)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true}, variants)

	// Both variants returned the same show, it must appear once.
	require.Len(t, results, 1)
	assert.Equal(t, 154587, results[0].ID)
}

func TestCatalogSearch_SafeOnlyRunsOneVariant(t *testing.T) {
	requests := 0
	f := setupCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write(pagePayload(frierenMedia()))
	})

	_, err := f.service.Search(context.Background(), "frieren", false)
	require.NoError(t, err)
	assert.Equal(t, 1, requests)
}

func TestCatalogSearch_FallbackMatchesByTitle(t *testing.T) {
	f := setupCatalog(t, nil)

	results, err := f.service.Search(context.Background(), "one PIECE", true)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 21, results[0].ID)
}

func TestCatalogSearch_PartialFailureKeepsResults(t *testing.T) {
	f := setupCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Variables struct {
				IsAdult bool `json:"isAdult"`
			} `json:"variables"`
		}
		assert.NoError(t, json.Unmarshal(body, &req))
		if req.Variables.IsAdult {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write(pagePayload(frierenMedia()))
	})

	results, err := f.service.Search(context.Background(), "frieren", true)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 154587, results[0].ID)
}

func TestCatalogGetByID_Success(t *testing.T) {
	f := setupCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), `"id":154587`)
		w.Write(mediaPayload(frierenMedia()))
	})

	meta, err := f.service.GetByID(context.Background(), 154587)
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, "Sousou no Frieren", meta.Title.Romaji)
}

func TestCatalogGetByID_FallbackOnFailure(t *testing.T) {
	f := setupCatalog(t, nil)

	meta, err := f.service.GetByID(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, "Cowboy Bebop", meta.Title.English)
}

func TestCatalogGetByID_UnknownIDPropagatesError(t *testing.T) {
	f := setupCatalog(t, nil)

	meta, err := f.service.GetByID(context.Background(), 424242)
	require.Error(t, err)
	assert.Nil(t, meta)
}

func TestCatalogRecommendations_PassesGenresAndFormat(t *testing.T) {
	f := setupCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), `"genres":["Action","Drama"]`)
		assert.Contains(t, string(body), `"format":"TV"`)
		w.Write(pagePayload(frierenMedia()))
	})

	results, err := f.service.RecommendationsByGenres(context.Background(), []string{"Action", "Drama"}, "TV")
	require.NoError(t, err)
	require.Len(t, results, 1)
}

func TestCatalogRecommendations_CacheKeyVariesByGenres(t *testing.T) {
	requests := 0
	f := setupCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		fmt.Fprint(w, string(pagePayload(frierenMedia())))
	})

	_, err := f.service.RecommendationsByGenres(context.Background(), []string{"Action"}, "")
	require.NoError(t, err)
	_, err = f.service.RecommendationsByGenres(context.Background(), []string{"Drama"}, "")
	require.NoError(t, err)
	assert.Equal(t, 2, requests)
}
