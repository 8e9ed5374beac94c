package models

type ViewState string

const (
	ViewHome          ViewState = "HOME"
	ViewDashboard     ViewState = "DASHBOARD"
	ViewLibrary       ViewState = "LIBRARY"
	ViewFavorites     ViewState = "FAVORITES"
	ViewProfile       ViewState = "PROFILE"
	ViewAuth          ViewState = "AUTH"
	ViewDetails       ViewState = "DETAILS"
	ViewNewsDetail    ViewState = "NEWS_DETAIL"
	ViewPublicProfile ViewState = "PUBLIC_PROFILE"
)

// ViewContext is the screen-specific state persisted alongside the active
// view so a reload can restore the same screen.
type ViewContext struct {
	SelectedAnimeID int    `json:"selectedAnimeId,omitempty"`
	SelectedNewsID  string `json:"selectedNewsId,omitempty"`
	ViewedUserID    string `json:"viewedUserId,omitempty"`
}
