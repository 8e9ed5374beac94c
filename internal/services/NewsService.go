package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"anitrackr/internal/backend"
	"anitrackr/internal/models"
	"anitrackr/internal/providers"
	"anitrackr/internal/structures"
)

const newsStore = "news"

type NewsServiceInterface interface {
	Refresh(ctx context.Context)
	Posts() []models.NewsPost
	Post(postID string) (models.NewsPost, bool)
	AddPost(ctx context.Context, post models.NewsPost) bool
	LoadLikes(ctx context.Context, userID string)
	IsLiked(postID string) bool
	ToggleLike(ctx context.Context, postID string)
	Comments(postID string) []models.NewsComment
	FetchComments(ctx context.Context, postID string)
	AddComment(ctx context.Context, postID, body string) bool
	OpenPost(ctx context.Context, postID string)
	Report(postID, reason string)
	OpenComposer(draft models.NewsDraft)
	CloseComposer()
	Composer() (models.NewsDraft, bool)
	ClearUserState()
	OnChange(fn func())
}

// NewsService owns the community feed: posts, per-post comments, the
// viewer's like set and the composer state. Posting follows the same
// optimistic discipline as the library; likes are write-through without
// rollback; comments are confirmed before they appear.
type NewsService struct {
	optimisticDeps

	conf    *structures.Config
	backend *backend.Client
	profile ProfileServiceInterface

	mu           sync.RWMutex
	posts        []models.NewsPost
	comments     map[string][]models.NewsComment
	liked        map[string]struct{}
	composer     models.NewsDraft
	composerOpen bool
	onChange     func()
}

func NewNewsService(conf *structures.Config, logger providers.Logger, client *backend.Client, notifications NotificationServiceInterface, profile ProfileServiceInterface, metrics providers.MetricsProviderInterface) NewsServiceInterface {
	return &NewsService{
		optimisticDeps: optimisticDeps{logger: logger, metrics: metrics, notifications: notifications},
		conf:           conf,
		backend:        client,
		profile:        profile,
		comments:       make(map[string][]models.NewsComment),
		liked:          make(map[string]struct{}),
	}
}

func (s *NewsService) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Refresh replaces the feed with the remote one. On failure the current feed
// is kept so a flaky poll never blanks the screen.
func (s *NewsService) Refresh(ctx context.Context) {
	posts, err := s.backend.News.List(ctx)
	if err != nil {
		s.logger.Warnf(providers.TypeRemote, "news fetch failed: %s", err)
		return
	}
	s.mu.Lock()
	s.posts = posts
	s.mu.Unlock()
	s.notifyChanged()
}

func (s *NewsService) Posts() []models.NewsPost {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.NewsPost, len(s.posts))
	copy(out, s.posts)
	return out
}

func (s *NewsService) Post(postID string) (models.NewsPost, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.posts {
		if p.ID == postID {
			return p, true
		}
	}
	return models.NewsPost{}, false
}

// AddPost prepends the post under a temporary id and reconciles it with the
// server row once the insert confirms.
func (s *NewsService) AddPost(ctx context.Context, post models.NewsPost) bool {
	user := s.profile.CurrentUser()
	if user == nil {
		return false
	}
	post.UserID = user.ID
	if !post.IsAnonymous {
		post.AuthorName = user.Username
		post.AuthorAvatar = user.AvatarURL
	} else {
		post.AuthorName = "Anonymous"
		post.AuthorAvatar = ""
	}
	tempID := uuid.NewString()
	post.ID = tempID
	post.CreatedAt = time.Now().UnixMilli()

	ok := s.run(mutation{
		store:       newsStore,
		failTitle:   "Publish Failed",
		failMessage: "Could not publish your post. Please try again.",
		apply: func() {
			s.mu.Lock()
			s.posts = append([]models.NewsPost{post}, s.posts...)
			s.mu.Unlock()
			s.notifyChanged()
		},
		attempt: func() error {
			created, err := s.backend.News.Insert(ctx, post)
			if err != nil {
				return err
			}
			s.mu.Lock()
			for i := range s.posts {
				if s.posts[i].ID == tempID {
					s.posts[i] = *created
					break
				}
			}
			s.mu.Unlock()
			s.notifyChanged()
			return nil
		},
		revert: func() {
			s.mu.Lock()
			for i := range s.posts {
				if s.posts[i].ID == tempID {
					s.posts = append(s.posts[:i], s.posts[i+1:]...)
					break
				}
			}
			s.mu.Unlock()
			s.notifyChanged()
		},
	})
	if !ok {
		return false
	}

	s.notifications.Notify(models.AppNotification{
		Kind:    models.NotificationInfo,
		Title:   "News Published",
		Message: "Your post is live!",
		Icon:    "📰",
	})
	return true
}

func (s *NewsService) LoadLikes(ctx context.Context, userID string) {
	ids, err := s.backend.Likes.ListPostIDs(ctx, userID)
	if err != nil {
		s.logger.Warnf(providers.TypeRemote, "likes fetch failed for %s: %s", userID, err)
		return
	}
	s.mu.Lock()
	s.liked = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s.liked[id] = struct{}{}
	}
	s.mu.Unlock()
	s.notifyChanged()
}

func (s *NewsService) IsLiked(postID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.liked[postID]
	return ok
}

// ToggleLike flips the like locally and writes it through. A failed write is
// logged only; the local flag is left as toggled and reconciles on the next
// likes fetch.
func (s *NewsService) ToggleLike(ctx context.Context, postID string) {
	user := s.profile.CurrentUser()
	if user == nil {
		return
	}

	s.mu.Lock()
	_, liking := s.liked[postID]
	liking = !liking
	if liking {
		s.liked[postID] = struct{}{}
	} else {
		delete(s.liked, postID)
	}
	for i := range s.posts {
		if s.posts[i].ID == postID {
			if liking {
				s.posts[i].LikesCount++
			} else if s.posts[i].LikesCount > 0 {
				s.posts[i].LikesCount--
			}
			break
		}
	}
	s.mu.Unlock()
	s.notifyChanged()

	var err error
	if liking {
		err = s.backend.Likes.Insert(ctx, postID, user.ID)
	} else {
		err = s.backend.Likes.Delete(ctx, postID, user.ID)
	}
	if err != nil {
		s.logger.Warnf(providers.TypeRemote, "like toggle failed for post %s: %s", postID, err)
	}
}

func (s *NewsService) Comments(postID string) []models.NewsComment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.comments[postID]
	out := make([]models.NewsComment, len(src))
	copy(out, src)
	return out
}

// FetchComments loads the comment thread for one post. Threads are fetched
// lazily when a post is opened, never with the feed.
func (s *NewsService) FetchComments(ctx context.Context, postID string) {
	list, err := s.backend.Comments.ListByPost(ctx, postID)
	if err != nil {
		s.logger.Warnf(providers.TypeRemote, "comments fetch failed for post %s: %s", postID, err)
		return
	}
	s.mu.Lock()
	s.comments[postID] = list
	s.mu.Unlock()
	s.notifyChanged()
}

// AddComment is not optimistic: the comment appears only after the backend
// confirms it, so comment history never needs a rollback.
func (s *NewsService) AddComment(ctx context.Context, postID, body string) bool {
	user := s.profile.CurrentUser()
	if user == nil || strings.TrimSpace(body) == "" {
		return false
	}

	comment := models.NewsComment{
		PostID:    postID,
		UserID:    user.ID,
		Username:  user.Username,
		AvatarURL: user.AvatarURL,
		Body:      body,
		CreatedAt: time.Now().UnixMilli(),
	}
	created, err := s.backend.Comments.Insert(ctx, comment)
	if err != nil {
		s.logger.Errorf(providers.TypeRemote, "comment insert failed for post %s: %s", postID, err)
		s.notifications.Notify(models.AppNotification{
			Kind:    models.NotificationInfo,
			Title:   "Comment Failed",
			Message: "Could not post your comment.",
			Icon:    "❌",
		})
		return false
	}

	s.mu.Lock()
	s.comments[postID] = append(s.comments[postID], *created)
	for i := range s.posts {
		if s.posts[i].ID == postID {
			s.posts[i].CommentsCount++
			break
		}
	}
	s.mu.Unlock()
	s.notifyChanged()

	s.notifications.Notify(models.AppNotification{
		Kind:    models.NotificationInfo,
		Title:   "Comment Posted",
		Message: "Your comment is up.",
		Icon:    "💬",
	})
	return true
}

// OpenPost records a view and pulls the comment thread. The view counter is
// bumped locally right away; the remote increment is fire-and-forget.
func (s *NewsService) OpenPost(ctx context.Context, postID string) {
	s.mu.Lock()
	for i := range s.posts {
		if s.posts[i].ID == postID {
			s.posts[i].ViewCount++
			break
		}
	}
	s.mu.Unlock()
	s.notifyChanged()

	if err := s.backend.News.IncrementView(ctx, postID); err != nil {
		s.logger.Warnf(providers.TypeRemote, "view increment failed for post %s: %s", postID, err)
	}
	s.FetchComments(ctx, postID)
}

// Report acknowledges a moderation report. Reports are recorded client-side
// only; there is no moderation backend yet.
func (s *NewsService) Report(postID, reason string) {
	s.logger.Infof(providers.TypeStore, "post %s reported: %s", postID, reason)
	s.notifications.Notify(models.AppNotification{
		Kind:    models.NotificationInfo,
		Title:   "Report Received",
		Message: "Thanks, our moderators will take a look.",
		Icon:    "🚩",
	})
}

func (s *NewsService) OpenComposer(draft models.NewsDraft) {
	s.mu.Lock()
	s.composer = draft
	s.composerOpen = true
	s.mu.Unlock()
	s.notifyChanged()
}

func (s *NewsService) CloseComposer() {
	s.mu.Lock()
	s.composer = models.NewsDraft{}
	s.composerOpen = false
	s.mu.Unlock()
	s.notifyChanged()
}

func (s *NewsService) Composer() (models.NewsDraft, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.composer, s.composerOpen
}

// ClearUserState drops viewer-specific state on logout. The feed itself is
// public and survives.
func (s *NewsService) ClearUserState() {
	s.mu.Lock()
	s.liked = make(map[string]struct{})
	s.composer = models.NewsDraft{}
	s.composerOpen = false
	s.mu.Unlock()
	s.notifyChanged()
}

func (s *NewsService) notifyChanged() {
	s.mu.RLock()
	fn := s.onChange
	s.mu.RUnlock()
	if fn != nil {
		fn()
	}
}
