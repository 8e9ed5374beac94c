package models

type PostLoginPreference string

const (
	PostLoginDashboard PostLoginPreference = "DASHBOARD"
	PostLoginLanding   PostLoginPreference = "LANDING"
	PostLoginAsk       PostLoginPreference = "ASK"
)

type UserBadge struct {
	BadgeID   string `json:"badgeId"`
	AwardedAt int64  `json:"awardedAt"`
	IsNew     bool   `json:"isNew,omitempty"` // transient, UI highlighting only
}

type UserProfile struct {
	ID               string              `json:"id"`
	Username         string              `json:"username"`
	AvatarURL        string              `json:"avatarUrl"`
	BannerURL        string              `json:"bannerUrl,omitempty"`
	Bio              string              `json:"bio"`
	FavoriteGenres   []string            `json:"favoriteGenres"`
	IsPrivate        bool                `json:"isPrivate"`
	ShowAdultContent bool                `json:"showAdultContent"`
	PostLoginDefault PostLoginPreference `json:"postLoginDefault,omitempty"`
	Badges           []UserBadge         `json:"badges"`
	Favorites        []FavoriteItem      `json:"favorites"`
	JoinedAt         int64               `json:"joinedAt"`
}

// ProfileChanges is a partial profile edit; nil fields are left untouched.
type ProfileChanges struct {
	Username         *string
	AvatarURL        *string
	BannerURL        *string
	Bio              *string
	IsPrivate        *bool
	ShowAdultContent *bool
	PostLoginDefault *PostLoginPreference
}

func (c ProfileChanges) Apply(p UserProfile) UserProfile {
	if c.Username != nil {
		p.Username = *c.Username
	}
	if c.AvatarURL != nil {
		p.AvatarURL = *c.AvatarURL
	}
	if c.BannerURL != nil {
		p.BannerURL = *c.BannerURL
	}
	if c.Bio != nil {
		p.Bio = *c.Bio
	}
	if c.IsPrivate != nil {
		p.IsPrivate = *c.IsPrivate
	}
	if c.ShowAdultContent != nil {
		p.ShowAdultContent = *c.ShowAdultContent
	}
	if c.PostLoginDefault != nil {
		p.PostLoginDefault = *c.PostLoginDefault
	}
	return p
}
