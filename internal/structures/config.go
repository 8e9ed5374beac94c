package structures

import "time"

type BackendConfig struct {
	URL         string        `yaml:"url" validate:"required|fullUrl"`
	AnonKey     string        `yaml:"anonKey" validate:"required"`
	AuthTimeout time.Duration `yaml:"authTimeout" validate:"required|min:1"`
}

type CatalogConfig struct {
	URL      string `yaml:"url" validate:"required|fullUrl"`
	PageSize int    `yaml:"pageSize" validate:"required|min:1"`
}

type TextGenConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"apiKey"`
	Model  string `yaml:"model"`
}

type MediaConfig struct {
	UploadURL         string `yaml:"uploadUrl"`
	UploadPreset      string `yaml:"uploadPreset"`
	MaxAvatarBytes    int    `yaml:"maxAvatarBytes" validate:"min:1"`
	MaxNewsImageBytes int    `yaml:"maxNewsImageBytes" validate:"min:1"`
}

type StateConfig struct {
	FilePath     string        `yaml:"filePath" validate:"required|unixPath"`
	SaveInterval time.Duration `yaml:"saveInterval" validate:"required|min:1"`
}

type NewsConfig struct {
	RefreshInterval time.Duration `yaml:"refreshInterval" validate:"required|min:1"`
}

type NudgeConfig struct {
	Throttle    time.Duration `yaml:"throttle" validate:"required|min:1"`
	UpdateDelay time.Duration `yaml:"updateDelay"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName string
	Debug   bool
	Path    string
	Backend BackendConfig `yaml:"backend"`
	Catalog CatalogConfig `yaml:"catalog"`
	TextGen TextGenConfig `yaml:"textGen"`
	Media   MediaConfig   `yaml:"media"`
	State   StateConfig   `yaml:"state"`
	News    NewsConfig    `yaml:"news"`
	Nudge   NudgeConfig   `yaml:"nudge"`
	Logger  LoggerConfig  `yaml:"logger"`
	Cache   CacheConfig   `yaml:"cache"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type CliFlags struct {
	ConfigPath string
	DebugMode  bool
}
