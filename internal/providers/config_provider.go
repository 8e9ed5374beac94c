package providers

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"anitrackr/internal/structures"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("backend.url", "ANITRACKR_BACKEND_URL")
	viper.BindEnv("backend.anonKey", "ANITRACKR_BACKEND_ANON_KEY")
	viper.BindEnv("catalog.url", "ANITRACKR_CATALOG_URL")
	viper.BindEnv("textGen.apiKey", "ANITRACKR_TEXTGEN_API_KEY")
	viper.BindEnv("logger.level", "ANITRACKR_LOG_LEVEL")
	viper.BindEnv("state.filePath", "ANITRACKR_STATE_FILE")
	viper.BindEnv("cache.enabled", "ANITRACKR_CACHE_ENABLED")
	viper.BindEnv("cache.size", "ANITRACKR_CACHE_SIZE")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	applyDefaults(&conf)

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "AniTrackr"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}

func applyDefaults(conf *structures.Config) {
	if conf.Backend.AuthTimeout == 0 {
		conf.Backend.AuthTimeout = 15 * time.Second
	}
	if conf.Catalog.PageSize == 0 {
		conf.Catalog.PageSize = 10
	}
	if conf.Nudge.Throttle == 0 {
		conf.Nudge.Throttle = 30 * time.Second
	}
	if conf.Nudge.UpdateDelay == 0 {
		conf.Nudge.UpdateDelay = 500 * time.Millisecond
	}
	if conf.News.RefreshInterval == 0 {
		conf.News.RefreshInterval = 5 * time.Minute
	}
	if conf.Media.MaxAvatarBytes == 0 {
		conf.Media.MaxAvatarBytes = 5 << 20
	}
	if conf.Media.MaxNewsImageBytes == 0 {
		conf.Media.MaxNewsImageBytes = 8 << 20
	}
}
