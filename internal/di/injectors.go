//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"anitrackr/internal"
	"anitrackr/internal/aitext"
	"anitrackr/internal/backend"
	"anitrackr/internal/catalog"
	"anitrackr/internal/media"
	"anitrackr/internal/providers"
	"anitrackr/internal/services"
	"anitrackr/internal/state"
	"anitrackr/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewCacheProvider,

		state.NewZstdCompressor,
		state.NewFileKVStore,
		state.NewScheduler,
		wire.Bind(new(backend.TokenStore), new(state.KVStoreInterface)),
		wire.Bind(new(services.KVStateInterface), new(state.KVStoreInterface)),

		backend.NewRestClient,
		catalog.NewService,
		aitext.NewProvider,
		media.NewUploader,

		services.NewNotificationService,
		services.NewProfileService,
		services.NewLibraryService,
		services.NewNewsService,
		services.NewViewService,
		services.NewSessionService,
		internal.NewApp,
	)

	return nil, nil
}
