// Package catalog is the read-only metadata boundary. Lookups degrade to a
// small built-in list on failure so browse/search never shows a hard error.
package catalog

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

type ServiceInterface interface {
	Search(ctx context.Context, query string, includeAdult bool) ([]models.AnimeMetadata, error)
	GetByID(ctx context.Context, id int) (*models.AnimeMetadata, error)
	Trending(ctx context.Context) ([]models.AnimeMetadata, error)
	Airing(ctx context.Context) ([]models.AnimeMetadata, error)
	TrendingMovies(ctx context.Context) ([]models.AnimeMetadata, error)
	RecommendationsByGenres(ctx context.Context, genres []string, format string) ([]models.AnimeMetadata, error)
}

const mediaFragment = `
  id
  title { romaji english }
  coverImage { large medium }
  bannerImage
  episodes
  duration
  status
  format
  genres
  averageScore
  seasonYear
  studios(isMain: true) { nodes { name } }
  description
  nextAiringEpisode { episode airingAt }
  streamingEpisodes { title thumbnail url }
  externalLinks { site url }
`

var (
	searchQuery = `query ($search: String, $isAdult: Boolean, $perPage: Int) {
  Page(perPage: $perPage) {
    media(search: $search, isAdult: $isAdult, type: ANIME, sort: POPULARITY_DESC) {` + mediaFragment + `}
  }
}`
	detailsQuery = `query ($id: Int) {
  Media(id: $id, type: ANIME) {` + mediaFragment + `}
}`
	trendingQuery = `query ($perPage: Int) {
  Page(perPage: $perPage) {
    media(type: ANIME, sort: TRENDING_DESC) {` + mediaFragment + `}
  }
}`
	movieQuery = `query ($perPage: Int) {
  Page(perPage: $perPage) {
    media(type: ANIME, format: MOVIE, sort: POPULARITY_DESC) {` + mediaFragment + `}
  }
}`
	airingQuery = `query ($perPage: Int) {
  Page(perPage: $perPage) {
    media(status: RELEASING, type: ANIME, sort: POPULARITY_DESC) {` + mediaFragment + `}
  }
}`
	recommendationQuery = `query ($genres: [String], $format: MediaFormat, $perPage: Int) {
  Page(perPage: $perPage) {
    media(genre_in: $genres, format: $format, type: ANIME, sort: POPULARITY_DESC) {` + mediaFragment + `}
  }
}`
)

type Service struct {
	conf   *structures.Config
	logger providers.Logger
	cache  providers.CacheProviderInterface
	http   *http.Client
}

func NewService(conf *structures.Config, logger providers.Logger, cache providers.CacheProviderInterface) ServiceInterface {
	return &Service{
		conf:   conf,
		logger: logger,
		cache:  cache,
		http:   &http.Client{Timeout: 20 * time.Second},
	}
}

// media is the wire shape of one catalog record.
type media struct {
	ID    int `json:"id"`
	Title struct {
		Romaji  string `json:"romaji"`
		English string `json:"english"`
	} `json:"title"`
	CoverImage struct {
		Large  string `json:"large"`
		Medium string `json:"medium"`
	} `json:"coverImage"`
	BannerImage  string   `json:"bannerImage"`
	Episodes     int      `json:"episodes"`
	Duration     int      `json:"duration"`
	Status       string   `json:"status"`
	Format       string   `json:"format"`
	Genres       []string `json:"genres"`
	AverageScore int      `json:"averageScore"`
	SeasonYear   int      `json:"seasonYear"`
	Studios      struct {
		Nodes []struct {
			Name string `json:"name"`
		} `json:"nodes"`
	} `json:"studios"`
	Description       string                `json:"description"`
	NextAiringEpisode *models.AiringEpisode `json:"nextAiringEpisode"`
	StreamingEpisodes []struct {
		Title     string `json:"title"`
		Thumbnail string `json:"thumbnail"`
		URL       string `json:"url"`
	} `json:"streamingEpisodes"`
	ExternalLinks []struct {
		Site string `json:"site"`
		URL  string `json:"url"`
	} `json:"externalLinks"`
}

func (m media) toModel() models.AnimeMetadata {
	meta := models.AnimeMetadata{
		ID:                m.ID,
		Title:             models.MediaTitle{Romaji: m.Title.Romaji, English: m.Title.English},
		CoverImage:        models.CoverImage{Large: m.CoverImage.Large, Medium: m.CoverImage.Medium},
		BannerImage:       m.BannerImage,
		Episodes:          m.Episodes,
		Duration:          m.Duration,
		Status:            m.Status,
		Format:            m.Format,
		Genres:            m.Genres,
		AverageScore:      m.AverageScore,
		SeasonYear:        m.SeasonYear,
		Description:       m.Description,
		NextAiringEpisode: m.NextAiringEpisode,
	}
	if len(m.Studios.Nodes) > 0 {
		meta.Studio = m.Studios.Nodes[0].Name
	}
	for _, ep := range m.StreamingEpisodes {
		meta.StreamingEpisodes = append(meta.StreamingEpisodes, models.StreamingEpisode{Title: ep.Title, Thumbnail: ep.Thumbnail, URL: ep.URL})
	}
	for _, link := range m.ExternalLinks {
		meta.ExternalLinks = append(meta.ExternalLinks, models.ExternalLink{Site: link.Site, URL: link.URL})
	}
	return meta
}

type graphqlResponse struct {
	Data struct {
		Page struct {
			Media []media `json:"media"`
		} `json:"Page"`
		Media *media `json:"Media"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// query runs one GraphQL request against the catalog, consulting the cache
// first. A nil return with nil error means the API answered with errors and
// the caller should fall back.
func (s *Service) query(ctx context.Context, cacheKey, query string, variables map[string]interface{}) (*graphqlResponse, error) {
	if cached, ok := s.cache.Get(cacheKey); ok {
		var resp graphqlResponse
		if err := json.Unmarshal(cached, &resp); err == nil {
			return &resp, nil
		}
	}

	payload, err := json.Marshal(map[string]interface{}{"query": query, "variables": variables})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.conf.Catalog.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	httpResp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode >= 400 {
		return nil, fmt.Errorf("catalog responded with status %d", httpResp.StatusCode)
	}
	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	var resp graphqlResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		s.logger.Warnf(providers.TypeRemote, "Catalog API returned errors: %s", resp.Errors[0].Message)
		return nil, nil
	}
	s.cache.Set(cacheKey, data)
	return &resp, nil
}

func (s *Service) page(ctx context.Context, cacheKey, query string, variables map[string]interface{}) ([]models.AnimeMetadata, error) {
	if variables == nil {
		variables = map[string]interface{}{}
	}
	variables["perPage"] = s.conf.Catalog.PageSize

	resp, err := s.query(ctx, cacheKey, query, variables)
	if err != nil || resp == nil {
		if err != nil {
			s.logger.Warnf(providers.TypeRemote, "Catalog fetch failed, using fallback data: %s", err)
		}
		return fallbackAnimeList, nil
	}
	results := make([]models.AnimeMetadata, 0, len(resp.Data.Page.Media))
	for _, m := range resp.Data.Page.Media {
		results = append(results, m.toModel())
	}
	return results, nil
}

func (s *Service) Search(ctx context.Context, query string, includeAdult bool) ([]models.AnimeMetadata, error) {
	if query == "" {
		return nil, nil
	}

	var results []models.AnimeMetadata
	failed := true

	variants := []bool{false}
	if includeAdult {
		variants = append(variants, true)
	}
	for _, adult := range variants {
		key := fmt.Sprintf("search:%s:adult=%t", query, adult)
		resp, err := s.query(ctx, key, searchQuery, map[string]interface{}{
			"search":  query,
			"isAdult": adult,
			"perPage": s.conf.Catalog.PageSize,
		})
		if err != nil || resp == nil {
			continue
		}
		failed = false
		for _, m := range resp.Data.Page.Media {
			results = append(results, m.toModel())
		}
	}

	// The adult and non-adult pages can overlap.
	seen := make(map[int]struct{}, len(results))
	unique := results[:0]
	for _, m := range results {
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		unique = append(unique, m)
	}

	if len(unique) == 0 && failed {
		return searchFallback(query), nil
	}
	return unique, nil
}

func searchFallback(query string) []models.AnimeMetadata {
	lower := strings.ToLower(query)
	var matches []models.AnimeMetadata
	for _, m := range fallbackAnimeList {
		if strings.Contains(strings.ToLower(m.Title.English), lower) ||
			strings.Contains(strings.ToLower(m.Title.Romaji), lower) {
			matches = append(matches, m)
		}
	}
	return matches
}

func (s *Service) GetByID(ctx context.Context, id int) (*models.AnimeMetadata, error) {
	key := fmt.Sprintf("details:%d", id)
	resp, err := s.query(ctx, key, detailsQuery, map[string]interface{}{"id": id})
	if err != nil || resp == nil || resp.Data.Media == nil {
		for _, m := range fallbackAnimeList {
			if m.ID == id {
				fallback := m
				return &fallback, nil
			}
		}
		if err != nil {
			return nil, fmt.Errorf("catalog lookup for %d: %w", id, err)
		}
		return nil, nil
	}
	meta := resp.Data.Media.toModel()
	return &meta, nil
}

func (s *Service) Trending(ctx context.Context) ([]models.AnimeMetadata, error) {
	return s.page(ctx, "trending", trendingQuery, nil)
}

func (s *Service) Airing(ctx context.Context) ([]models.AnimeMetadata, error) {
	return s.page(ctx, "airing", airingQuery, nil)
}

func (s *Service) TrendingMovies(ctx context.Context) ([]models.AnimeMetadata, error) {
	return s.page(ctx, "movies", movieQuery, nil)
}

func (s *Service) RecommendationsByGenres(ctx context.Context, genres []string, format string) ([]models.AnimeMetadata, error) {
	key := fmt.Sprintf("recs:%s:%s", strings.Join(genres, ","), format)
	vars := map[string]interface{}{"genres": genres}
	if format != "" {
		vars["format"] = format
	}
	return s.page(ctx, key, recommendationQuery, vars)
}
