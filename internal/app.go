package internal

import (
	"context"

	"anitrackr/internal/aitext"
	"anitrackr/internal/backend"
	"anitrackr/internal/catalog"
	"anitrackr/internal/media"
	"anitrackr/internal/providers"
	"anitrackr/internal/services"
	"anitrackr/internal/state"
	"anitrackr/internal/state/interfaces"
	"anitrackr/internal/structures"
)

// App is the assembled client core. A UI embeds it, registers OnChange
// callbacks on the services it renders from, and calls Close on shutdown.
type App struct {
	Config        *structures.Config
	Logger        providers.Logger
	State         state.KVStoreInterface
	Backend       *backend.Client
	Catalog       catalog.ServiceInterface
	TextGen       aitext.ProviderInterface
	Media         media.UploaderInterface
	Notifications services.NotificationServiceInterface
	Profile       services.ProfileServiceInterface
	Library       services.LibraryServiceInterface
	News          services.NewsServiceInterface
	View          services.ViewServiceInterface
	Session       services.SessionServiceInterface

	scheduler interfaces.SchedulerInterface
}

// NewApp wires the cross-service hooks, starts the background jobs and
// restores any persisted session. The hooks close the two cycles the
// constructor graph cannot express: nudge actions open the news composer,
// and backend session events drive the session service.
func NewApp(
	conf *structures.Config,
	logger providers.Logger,
	kv state.KVStoreInterface,
	scheduler interfaces.SchedulerInterface,
	client *backend.Client,
	catalogSvc catalog.ServiceInterface,
	textGen aitext.ProviderInterface,
	uploader media.UploaderInterface,
	notifications services.NotificationServiceInterface,
	profile services.ProfileServiceInterface,
	library services.LibraryServiceInterface,
	news services.NewsServiceInterface,
	view services.ViewServiceInterface,
	session services.SessionServiceInterface,
) (*App, error) {
	logger.Infof(providers.TypeApp, "Starting %s", conf.AppName)

	notifications.SetComposerHook(news.OpenComposer)
	client.Auth.OnSessionChange(session.HandleSessionChange)
	scheduler.OnNewsRefresh(func() {
		news.Refresh(context.Background())
	})
	scheduler.Init()

	news.Refresh(context.Background())
	session.Bootstrap(context.Background())

	return &App{
		Config:        conf,
		Logger:        logger,
		State:         kv,
		Backend:       client,
		Catalog:       catalogSvc,
		TextGen:       textGen,
		Media:         uploader,
		Notifications: notifications,
		Profile:       profile,
		Library:       library,
		News:          news,
		View:          view,
		Session:       session,
		scheduler:     scheduler,
	}, nil
}

// Close stops the background jobs and flushes durable state to disk.
func (a *App) Close() error {
	a.scheduler.Stop()
	if err := a.scheduler.Persist(); err != nil {
		a.Logger.Errorf(providers.TypeApp, "Persist error: %s", err)
	}
	err := a.State.Close()
	a.Logger.Infof(providers.TypeApp, "gracefully stopped")
	a.Logger.Close()
	return err
}
