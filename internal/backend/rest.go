package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"

	"anitrackr/internal/models"
	"anitrackr/internal/providers"
	"anitrackr/internal/structures"
)

const sessionStateKey = "backend_session"

// restBackend talks to a PostgREST-style data API with a GoTrue-style auth
// subsystem. One instance backs every table interface in Client; the thin
// adapter types below map the interface names onto it.
type restBackend struct {
	conf   *structures.Config
	logger providers.Logger
	http   *http.Client
	tokens TokenStore

	mu        sync.Mutex
	session   *Session
	listeners []func(*Session)
}

func NewRestClient(conf *structures.Config, logger providers.Logger, tokens TokenStore) *Client {
	b := &restBackend{
		conf:   conf,
		logger: logger,
		http:   &http.Client{Timeout: 30 * time.Second},
		tokens: tokens,
	}
	return &Client{
		Auth:      b,
		Profiles:  profilesAPI{b},
		Library:   libraryAPI{b},
		Badges:    badgesAPI{b},
		Favorites: favoritesAPI{b},
		News:      newsAPI{b},
		Comments:  commentsAPI{b},
		Likes:     likesAPI{b},
	}
}

type profilesAPI struct{ b *restBackend }

func (a profilesAPI) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	return a.b.getProfile(ctx, userID)
}
func (a profilesAPI) Create(ctx context.Context, profile models.UserProfile) (*models.UserProfile, error) {
	return a.b.createProfile(ctx, profile)
}
func (a profilesAPI) Update(ctx context.Context, userID string, changes map[string]interface{}) error {
	return a.b.updateProfile(ctx, userID, changes)
}
func (a profilesAPI) Search(ctx context.Context, query string, limit int) ([]models.UserProfile, error) {
	return a.b.searchProfiles(ctx, query, limit)
}

type libraryAPI struct{ b *restBackend }

func (a libraryAPI) List(ctx context.Context, userID string) ([]models.UserAnimeEntry, error) {
	return a.b.listLibrary(ctx, userID)
}
func (a libraryAPI) Insert(ctx context.Context, userID string, entry models.UserAnimeEntry) (string, error) {
	return a.b.insertEntry(ctx, userID, entry)
}
func (a libraryAPI) Update(ctx context.Context, entryID string, changes map[string]interface{}) error {
	return a.b.updateEntry(ctx, entryID, changes)
}
func (a libraryAPI) Delete(ctx context.Context, entryID string) error {
	return a.b.deleteEntry(ctx, entryID)
}

type badgesAPI struct{ b *restBackend }

func (a badgesAPI) List(ctx context.Context, userID string) ([]models.UserBadge, error) {
	return a.b.listBadges(ctx, userID)
}
func (a badgesAPI) Insert(ctx context.Context, userID string, awarded []models.UserBadge) error {
	return a.b.insertBadges(ctx, userID, awarded)
}

type favoritesAPI struct{ b *restBackend }

func (a favoritesAPI) List(ctx context.Context, userID string) ([]models.FavoriteItem, error) {
	return a.b.listFavorites(ctx, userID)
}
func (a favoritesAPI) Insert(ctx context.Context, userID string, fav models.FavoriteItem) error {
	return a.b.insertFavorite(ctx, userID, fav)
}
func (a favoritesAPI) Delete(ctx context.Context, userID string, animeID int) error {
	return a.b.deleteFavorite(ctx, userID, animeID)
}

type newsAPI struct{ b *restBackend }

func (a newsAPI) List(ctx context.Context) ([]models.NewsPost, error) {
	return a.b.listNews(ctx)
}
func (a newsAPI) Insert(ctx context.Context, post models.NewsPost) (*models.NewsPost, error) {
	return a.b.insertNews(ctx, post)
}
func (a newsAPI) IncrementView(ctx context.Context, postID string) error {
	return a.b.incrementView(ctx, postID)
}

type commentsAPI struct{ b *restBackend }

func (a commentsAPI) ListByPost(ctx context.Context, postID string) ([]models.NewsComment, error) {
	return a.b.listComments(ctx, postID)
}
func (a commentsAPI) Insert(ctx context.Context, comment models.NewsComment) (*models.NewsComment, error) {
	return a.b.insertComment(ctx, comment)
}

type likesAPI struct{ b *restBackend }

func (a likesAPI) ListPostIDs(ctx context.Context, userID string) ([]string, error) {
	return a.b.listLikes(ctx, userID)
}
func (a likesAPI) Insert(ctx context.Context, postID, userID string) error {
	return a.b.insertLike(ctx, postID, userID)
}
func (a likesAPI) Delete(ctx context.Context, postID, userID string) error {
	return a.b.deleteLike(ctx, postID, userID)
}

// --- auth ---

type authUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Metadata struct {
		Username  string `json:"username"`
		AvatarURL string `json:"avatar_url"`
	} `json:"user_metadata"`
}

type tokenResponse struct {
	AccessToken string   `json:"access_token"`
	User        authUser `json:"user"`
}

func (b *restBackend) SignIn(ctx context.Context, email, password string) (*Session, error) {
	var resp tokenResponse
	err := b.authRequest(ctx, "token?grant_type=password", map[string]interface{}{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	session := sessionFromToken(resp)
	b.storeSession(session)
	b.emit(session)
	return session, nil
}

func (b *restBackend) SignUp(ctx context.Context, email, password, username string) (*Session, error) {
	var resp tokenResponse
	err := b.authRequest(ctx, "signup", map[string]interface{}{
		"email":    email,
		"password": password,
		"data":     map[string]string{"username": username},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		// Email verification pending; no session yet.
		return nil, nil
	}
	session := sessionFromToken(resp)
	b.storeSession(session)
	b.emit(session)
	return session, nil
}

func (b *restBackend) SignOut(ctx context.Context) error {
	req, err := b.newRequest(ctx, http.MethodPost, b.conf.Backend.URL+"/auth/v1/logout", nil)
	if err != nil {
		return err
	}
	resp, err := b.http.Do(req)
	if err == nil {
		resp.Body.Close()
	}
	b.storeSession(nil)
	b.emit(nil)
	return err
}

func (b *restBackend) CurrentSession(ctx context.Context) (*Session, error) {
	b.mu.Lock()
	if b.session != nil {
		s := b.session
		b.mu.Unlock()
		return s, nil
	}
	b.mu.Unlock()

	raw, ok := b.tokens.Get(sessionStateKey)
	if !ok {
		return nil, nil
	}
	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		b.tokens.Remove(sessionStateKey)
		return nil, nil
	}

	// Validate the persisted token before trusting it.
	req, err := b.newRequest(ctx, http.MethodGet, b.conf.Backend.URL+"/auth/v1/user", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+session.AccessToken)
	resp, err := b.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("validate session: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		b.tokens.Remove(sessionStateKey)
		return nil, nil
	}

	b.mu.Lock()
	b.session = &session
	b.mu.Unlock()
	return &session, nil
}

func (b *restBackend) OnSessionChange(fn func(*Session)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, fn)
}

func sessionFromToken(resp tokenResponse) *Session {
	return &Session{
		UserID:      resp.User.ID,
		Email:       resp.User.Email,
		AccessToken: resp.AccessToken,
		Username:    resp.User.Metadata.Username,
		AvatarURL:   resp.User.Metadata.AvatarURL,
	}
}

func (b *restBackend) storeSession(session *Session) {
	b.mu.Lock()
	b.session = session
	b.mu.Unlock()
	if session == nil {
		b.tokens.Remove(sessionStateKey)
		return
	}
	raw, err := json.Marshal(session)
	if err == nil {
		b.tokens.Set(sessionStateKey, string(raw))
	}
}

func (b *restBackend) emit(session *Session) {
	b.mu.Lock()
	listeners := make([]func(*Session), len(b.listeners))
	copy(listeners, b.listeners)
	b.mu.Unlock()
	for _, fn := range listeners {
		fn(session)
	}
}

func (b *restBackend) authRequest(ctx context.Context, endpoint string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := b.newRequest(ctx, http.MethodPost, b.conf.Backend.URL+"/auth/v1/"+endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	resp, err := b.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return authError(data, resp.StatusCode)
	}
	return json.Unmarshal(data, out)
}

// authError surfaces the provider's own message so the UI can show it inline.
func authError(body []byte, status int) error {
	var e struct {
		Message   string `json:"message"`
		ErrorDesc string `json:"error_description"`
		Msg       string `json:"msg"`
	}
	if json.Unmarshal(body, &e) == nil {
		for _, m := range []string{e.Message, e.ErrorDesc, e.Msg} {
			if m != "" {
				return fmt.Errorf("%s", m)
			}
		}
	}
	return fmt.Errorf("auth request failed with status %d", status)
}

// --- generic table plumbing ---

func (b *restBackend) newRequest(ctx context.Context, method, rawURL string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apikey", b.conf.Backend.AnonKey)

	b.mu.Lock()
	token := b.conf.Backend.AnonKey
	if b.session != nil {
		token = b.session.AccessToken
	}
	b.mu.Unlock()
	req.Header.Set("Authorization", "Bearer "+token)
	return req, nil
}

func (b *restBackend) table(ctx context.Context, method, table string, query url.Values, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	rawURL := b.conf.Backend.URL + "/rest/v1/" + table
	if len(query) > 0 {
		rawURL += "?" + query.Encode()
	}
	req, err := b.newRequest(ctx, method, rawURL, reader)
	if err != nil {
		return err
	}
	if method == http.MethodPost && out != nil {
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := b.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, table, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%s %s: %w", method, table, ErrDenied)
	case resp.StatusCode >= 400:
		return fmt.Errorf("%s %s: status %d: %s", method, table, resp.StatusCode, truncate(data, 200))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

func truncate(data []byte, n int) string {
	if len(data) > n {
		data = data[:n]
	}
	return string(data)
}

func eq(value string) string { return "eq." + value }

// --- profiles ---

type profileRow struct {
	ID               string   `json:"id"`
	Username         string   `json:"username"`
	AvatarURL        string   `json:"avatar_url"`
	BannerURL        string   `json:"banner_url"`
	Bio              string   `json:"bio"`
	FavoriteGenres   []string `json:"favorite_genres"`
	IsPrivate        bool     `json:"is_private"`
	ShowAdultContent bool     `json:"show_adult_content"`
	PostLoginDefault string   `json:"post_login_default"`
	CreatedAt        string   `json:"created_at"`
}

func (r profileRow) toModel() models.UserProfile {
	username := r.Username
	if username == "" {
		username = "User"
	}
	return models.UserProfile{
		ID:               r.ID,
		Username:         username,
		AvatarURL:        r.AvatarURL,
		BannerURL:        r.BannerURL,
		Bio:              r.Bio,
		FavoriteGenres:   orEmpty(r.FavoriteGenres),
		IsPrivate:        r.IsPrivate,
		ShowAdultContent: r.ShowAdultContent,
		PostLoginDefault: models.PostLoginPreference(r.PostLoginDefault),
		Badges:           []models.UserBadge{},
		Favorites:        []models.FavoriteItem{},
		JoinedAt:         parseTimestamp(r.CreatedAt),
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// parseTimestamp accepts RFC3339 strings or epoch milliseconds, returning
// epoch milliseconds; zero when unparseable.
func parseTimestamp(v interface{}) int64 {
	if t, ok := v.(string); ok {
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed.UnixMilli()
			}
		}
	}
	return cast.ToInt64(v)
}

func (b *restBackend) getProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	q := url.Values{"id": {eq(userID)}, "limit": {"1"}}
	var rows []profileRow
	if err := b.table(ctx, http.MethodGet, "profiles", q, nil, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	profile := rows[0].toModel()
	return &profile, nil
}

func (b *restBackend) createProfile(ctx context.Context, profile models.UserProfile) (*models.UserProfile, error) {
	body := map[string]interface{}{
		"id":              profile.ID,
		"username":        profile.Username,
		"avatar_url":      profile.AvatarURL,
		"bio":             profile.Bio,
		"favorite_genres": profile.FavoriteGenres,
	}
	var rows []profileRow
	if err := b.table(ctx, http.MethodPost, "profiles", nil, body, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	created := rows[0].toModel()
	return &created, nil
}

func (b *restBackend) updateProfile(ctx context.Context, userID string, changes map[string]interface{}) error {
	q := url.Values{"id": {eq(userID)}}
	return b.table(ctx, http.MethodPatch, "profiles", q, changes, nil)
}

func (b *restBackend) searchProfiles(ctx context.Context, query string, limit int) ([]models.UserProfile, error) {
	q := url.Values{
		"username": {"ilike.*" + query + "*"},
		"limit":    {strconv.Itoa(limit)},
	}
	var rows []profileRow
	if err := b.table(ctx, http.MethodGet, "profiles", q, nil, &rows); err != nil {
		return nil, err
	}
	profiles := make([]models.UserProfile, 0, len(rows))
	for _, r := range rows {
		profiles = append(profiles, r.toModel())
	}
	return profiles, nil
}

// --- library ---

type entryRow struct {
	ID        string          `json:"id"`
	AnimeID   int             `json:"anime_id"`
	Status    string          `json:"status"`
	Progress  int             `json:"progress"`
	Score     float64         `json:"score"`
	Notes     string          `json:"notes"`
	Metadata  json.RawMessage `json:"metadata"`
	UpdatedAt interface{}     `json:"updated_at"`
}

func (r entryRow) toModel() models.UserAnimeEntry {
	status := r.Status
	if status == "" {
		status = string(models.StatusWatching)
	}
	entry := models.UserAnimeEntry{
		ID:        r.ID,
		AnimeID:   r.AnimeID,
		Status:    models.AnimeStatus(status),
		Progress:  r.Progress,
		Score:     r.Score,
		Notes:     r.Notes,
		UpdatedAt: parseTimestamp(r.UpdatedAt),
	}
	// Metadata is denormalized jsonb; tolerate rows with broken blobs.
	if len(r.Metadata) > 0 {
		_ = json.Unmarshal(r.Metadata, &entry.Metadata)
	}
	if entry.Metadata.Title.Romaji == "" && entry.Metadata.Title.English == "" {
		entry.Metadata.Title.Romaji = "Unknown Title"
	}
	return entry
}

func (b *restBackend) listLibrary(ctx context.Context, userID string) ([]models.UserAnimeEntry, error) {
	q := url.Values{"user_id": {eq(userID)}, "order": {"updated_at.desc"}}
	var rows []entryRow
	if err := b.table(ctx, http.MethodGet, "library", q, nil, &rows); err != nil {
		return nil, err
	}
	entries := make([]models.UserAnimeEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.toModel())
	}
	return entries, nil
}

func (b *restBackend) insertEntry(ctx context.Context, userID string, entry models.UserAnimeEntry) (string, error) {
	body := map[string]interface{}{
		"user_id":    userID,
		"anime_id":   entry.AnimeID,
		"status":     entry.Status,
		"progress":   entry.Progress,
		"score":      entry.Score,
		"notes":      entry.Notes,
		"metadata":   entry.Metadata,
		"updated_at": entry.UpdatedAt,
	}
	var rows []entryRow
	if err := b.table(ctx, http.MethodPost, "library", nil, body, &rows); err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", ErrNotFound
	}
	return rows[0].ID, nil
}

func (b *restBackend) updateEntry(ctx context.Context, entryID string, changes map[string]interface{}) error {
	q := url.Values{"id": {eq(entryID)}}
	return b.table(ctx, http.MethodPatch, "library", q, changes, nil)
}

func (b *restBackend) deleteEntry(ctx context.Context, entryID string) error {
	q := url.Values{"id": {eq(entryID)}}
	return b.table(ctx, http.MethodDelete, "library", q, nil, nil)
}

// --- badges ---

type badgeRow struct {
	BadgeID   string `json:"badge_id"`
	AwardedAt string `json:"awarded_at"`
}

func (b *restBackend) listBadges(ctx context.Context, userID string) ([]models.UserBadge, error) {
	q := url.Values{"user_id": {eq(userID)}, "order": {"awarded_at.asc"}}
	var rows []badgeRow
	if err := b.table(ctx, http.MethodGet, "user_badges", q, nil, &rows); err != nil {
		return nil, err
	}
	owned := make([]models.UserBadge, 0, len(rows))
	for _, r := range rows {
		owned = append(owned, models.UserBadge{BadgeID: r.BadgeID, AwardedAt: parseTimestamp(r.AwardedAt)})
	}
	return owned, nil
}

func (b *restBackend) insertBadges(ctx context.Context, userID string, awarded []models.UserBadge) error {
	rows := make([]map[string]interface{}, 0, len(awarded))
	for _, ub := range awarded {
		rows = append(rows, map[string]interface{}{
			"user_id":    userID,
			"badge_id":   ub.BadgeID,
			"awarded_at": time.UnixMilli(ub.AwardedAt).UTC().Format(time.RFC3339),
		})
	}
	return b.table(ctx, http.MethodPost, "user_badges", nil, rows, nil)
}

// --- favorites ---

type favoriteRow struct {
	AnimeID    int    `json:"anime_id"`
	Title      string `json:"title"`
	CoverImage string `json:"cover_image"`
	Format     string `json:"format"`
}

func (b *restBackend) listFavorites(ctx context.Context, userID string) ([]models.FavoriteItem, error) {
	q := url.Values{"user_id": {eq(userID)}}
	var rows []favoriteRow
	if err := b.table(ctx, http.MethodGet, "favorites", q, nil, &rows); err != nil {
		return nil, err
	}
	favs := make([]models.FavoriteItem, 0, len(rows))
	for _, r := range rows {
		favs = append(favs, models.FavoriteItem{AnimeID: r.AnimeID, Title: r.Title, CoverImage: r.CoverImage, Format: r.Format})
	}
	return favs, nil
}

func (b *restBackend) insertFavorite(ctx context.Context, userID string, fav models.FavoriteItem) error {
	body := map[string]interface{}{
		"user_id":     userID,
		"anime_id":    fav.AnimeID,
		"title":       fav.Title,
		"cover_image": fav.CoverImage,
		"format":      fav.Format,
	}
	return b.table(ctx, http.MethodPost, "favorites", nil, body, nil)
}

func (b *restBackend) deleteFavorite(ctx context.Context, userID string, animeID int) error {
	q := url.Values{"user_id": {eq(userID)}, "anime_id": {eq(strconv.Itoa(animeID))}}
	return b.table(ctx, http.MethodDelete, "favorites", q, nil, nil)
}

// --- news ---

type newsRow struct {
	ID             string `json:"id"`
	UserID         string `json:"user_id"`
	AuthorName     string `json:"author_name"`
	AuthorAvatar   string `json:"author_avatar"`
	IsAnonymous    bool   `json:"is_anonymous"`
	Title          string `json:"title"`
	Body           string `json:"body"`
	ImageURL       string `json:"image_url"`
	SourceName     string `json:"source_name"`
	SourceURL      string `json:"source_url"`
	RelatedAnimeID int    `json:"related_anime_id"`
	LikesCount     int    `json:"likes_count"`
	CommentsCount  int    `json:"comments_count"`
	ViewCount      int    `json:"view_count"`
	CreatedAt      string `json:"created_at"`
}

func (r newsRow) toModel() models.NewsPost {
	author := r.AuthorName
	if author == "" {
		author = "Anonymous"
	}
	title := r.Title
	if title == "" {
		title = "Untitled"
	}
	return models.NewsPost{
		ID:             r.ID,
		UserID:         r.UserID,
		AuthorName:     author,
		AuthorAvatar:   r.AuthorAvatar,
		IsAnonymous:    r.IsAnonymous,
		Title:          title,
		Body:           r.Body,
		ImageURL:       r.ImageURL,
		SourceName:     r.SourceName,
		SourceURL:      r.SourceURL,
		RelatedAnimeID: r.RelatedAnimeID,
		LikesCount:     r.LikesCount,
		CommentsCount:  r.CommentsCount,
		ViewCount:      r.ViewCount,
		CreatedAt:      parseTimestamp(r.CreatedAt),
	}
}

func (b *restBackend) listNews(ctx context.Context) ([]models.NewsPost, error) {
	q := url.Values{"order": {"created_at.desc"}}
	var rows []newsRow
	if err := b.table(ctx, http.MethodGet, "news_posts", q, nil, &rows); err != nil {
		return nil, err
	}
	posts := make([]models.NewsPost, 0, len(rows))
	for _, r := range rows {
		posts = append(posts, r.toModel())
	}
	return posts, nil
}

func (b *restBackend) insertNews(ctx context.Context, post models.NewsPost) (*models.NewsPost, error) {
	body := map[string]interface{}{
		"user_id":          post.UserID,
		"author_name":      post.AuthorName,
		"author_avatar":    post.AuthorAvatar,
		"is_anonymous":     post.IsAnonymous,
		"title":            post.Title,
		"body":             post.Body,
		"image_url":        post.ImageURL,
		"source_name":      post.SourceName,
		"source_url":       post.SourceURL,
		"related_anime_id": post.RelatedAnimeID,
	}
	var rows []newsRow
	if err := b.table(ctx, http.MethodPost, "news_posts", nil, body, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	created := rows[0].toModel()
	return &created, nil
}

func (b *restBackend) incrementView(ctx context.Context, postID string) error {
	err := b.table(ctx, http.MethodPost, "rpc/increment_news_view", nil, map[string]string{"post_id": postID}, nil)
	if err == nil {
		return nil
	}
	b.logger.Debugf(providers.TypeRemote, "increment_news_view rpc unavailable, manual fallback: %s", err)

	q := url.Values{"id": {eq(postID)}, "select": {"view_count"}, "limit": {"1"}}
	var rows []newsRow
	if err := b.table(ctx, http.MethodGet, "news_posts", q, nil, &rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	patch := map[string]interface{}{"view_count": rows[0].ViewCount + 1}
	return b.table(ctx, http.MethodPatch, "news_posts", url.Values{"id": {eq(postID)}}, patch, nil)
}

// --- comments ---

type commentRow struct {
	ID        string `json:"id"`
	PostID    string `json:"post_id"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
}

func (r commentRow) toModel() models.NewsComment {
	username := r.Username
	if username == "" {
		username = "User"
	}
	return models.NewsComment{
		ID:        r.ID,
		PostID:    r.PostID,
		UserID:    r.UserID,
		Username:  username,
		AvatarURL: r.AvatarURL,
		Body:      r.Body,
		CreatedAt: parseTimestamp(r.CreatedAt),
	}
}

func (b *restBackend) listComments(ctx context.Context, postID string) ([]models.NewsComment, error) {
	q := url.Values{"post_id": {eq(postID)}, "order": {"created_at.asc"}}
	var rows []commentRow
	if err := b.table(ctx, http.MethodGet, "news_comments", q, nil, &rows); err != nil {
		return nil, err
	}
	comments := make([]models.NewsComment, 0, len(rows))
	for _, r := range rows {
		comments = append(comments, r.toModel())
	}
	return comments, nil
}

func (b *restBackend) insertComment(ctx context.Context, comment models.NewsComment) (*models.NewsComment, error) {
	body := map[string]interface{}{
		"post_id":    comment.PostID,
		"user_id":    comment.UserID,
		"username":   comment.Username,
		"avatar_url": comment.AvatarURL,
		"body":       comment.Body,
	}
	var rows []commentRow
	if err := b.table(ctx, http.MethodPost, "news_comments", nil, body, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	created := rows[0].toModel()
	return &created, nil
}

// --- likes ---

func (b *restBackend) listLikes(ctx context.Context, userID string) ([]string, error) {
	q := url.Values{"user_id": {eq(userID)}, "select": {"post_id"}}
	var rows []struct {
		PostID string `json:"post_id"`
	}
	if err := b.table(ctx, http.MethodGet, "news_likes", q, nil, &rows); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.PostID)
	}
	return ids, nil
}

func (b *restBackend) insertLike(ctx context.Context, postID, userID string) error {
	body := map[string]interface{}{"post_id": postID, "user_id": userID}
	return b.table(ctx, http.MethodPost, "news_likes", nil, body, nil)
}

func (b *restBackend) deleteLike(ctx context.Context, postID, userID string) error {
	q := url.Values{"post_id": {eq(postID)}, "user_id": {eq(userID)}}
	return b.table(ctx, http.MethodDelete, "news_likes", q, nil, nil)
}
