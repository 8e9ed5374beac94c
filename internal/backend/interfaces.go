// Package backend is the boundary to the remote relational store. The store
// is an external collaborator: authenticated CRUD per table plus an auth
// session lifecycle. Row-level security on the server decides what a user may
// write; denied writes surface as generic failures for the stores to roll
// back from.
package backend

import (
	"context"

	"anitrackr/internal/models"
)

// Session is an authenticated identity. Username and AvatarURL come from the
// signup metadata and may be empty for older accounts.
type Session struct {
	UserID      string
	Email       string
	AccessToken string
	Username    string
	AvatarURL   string
}

// Auth is the session subsystem. SignUp returns a nil session when the
// backend requires email verification before establishing one.
type Auth interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password, username string) (*Session, error)
	SignOut(ctx context.Context) error
	CurrentSession(ctx context.Context) (*Session, error)
	OnSessionChange(fn func(*Session))
}

type Profiles interface {
	Get(ctx context.Context, userID string) (*models.UserProfile, error)
	Create(ctx context.Context, profile models.UserProfile) (*models.UserProfile, error)
	Update(ctx context.Context, userID string, changes map[string]interface{}) error
	Search(ctx context.Context, query string, limit int) ([]models.UserProfile, error)
}

type Library interface {
	List(ctx context.Context, userID string) ([]models.UserAnimeEntry, error)
	Insert(ctx context.Context, userID string, entry models.UserAnimeEntry) (string, error)
	Update(ctx context.Context, entryID string, changes map[string]interface{}) error
	Delete(ctx context.Context, entryID string) error
}

type Badges interface {
	List(ctx context.Context, userID string) ([]models.UserBadge, error)
	Insert(ctx context.Context, userID string, awarded []models.UserBadge) error
}

type Favorites interface {
	List(ctx context.Context, userID string) ([]models.FavoriteItem, error)
	Insert(ctx context.Context, userID string, fav models.FavoriteItem) error
	Delete(ctx context.Context, userID string, animeID int) error
}

type News interface {
	List(ctx context.Context) ([]models.NewsPost, error)
	Insert(ctx context.Context, post models.NewsPost) (*models.NewsPost, error)
	// IncrementView prefers the server-side atomic increment and falls back
	// to a read-modify-write when the RPC is unavailable.
	IncrementView(ctx context.Context, postID string) error
}

type Comments interface {
	ListByPost(ctx context.Context, postID string) ([]models.NewsComment, error)
	Insert(ctx context.Context, comment models.NewsComment) (*models.NewsComment, error)
}

type Likes interface {
	ListPostIDs(ctx context.Context, userID string) ([]string, error)
	Insert(ctx context.Context, postID, userID string) error
	Delete(ctx context.Context, postID, userID string) error
}

// Client bundles the table boundaries so the service layer takes one handle.
type Client struct {
	Auth      Auth
	Profiles  Profiles
	Library   Library
	Badges    Badges
	Favorites Favorites
	News      News
	Comments  Comments
	Likes     Likes
}

// TokenStore persists the session across client restarts. The durable
// key-value state store satisfies it.
type TokenStore interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Remove(key string)
}
