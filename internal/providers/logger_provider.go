package providers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"anitrackr/internal/structures"
)

type TypeEnum int

const (
	TypeApp TypeEnum = iota
	TypeAuth
	TypeStore
	TypeRemote
)

func (t TypeEnum) String() string {
	switch t {
	case TypeAuth:
		return "auth"
	case TypeStore:
		return "store"
	case TypeRemote:
		return "remote"
	default:
		return "app"
	}
}

type Logger interface {
	Errorf(t TypeEnum, format string, args ...interface{})
	Warnf(t TypeEnum, format string, args ...interface{})
	Infof(t TypeEnum, format string, args ...interface{})
	Debugf(t TypeEnum, format string, args ...interface{})
	Fatalf(t TypeEnum, format string, args ...interface{})
	Close()
}

type LogProvider struct {
	loggers map[TypeEnum]zerolog.Logger
	files   []*os.File
}

func NewLogProvider(conf *structures.Config) (Logger, error) {
	level, err := zerolog.ParseLevel(conf.Logger.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", conf.Logger.Level, err)
	}

	p := &LogProvider{loggers: make(map[TypeEnum]zerolog.Logger)}
	for _, t := range []TypeEnum{TypeApp, TypeAuth, TypeStore, TypeRemote} {
		path := filepath.Join(conf.Logger.Dir, t.String()+".log")
		file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, os.FileMode(conf.Logger.Mode))
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("open log file %s: %w", path, err)
		}
		p.files = append(p.files, file)

		logger := zerolog.New(file).Level(level).With().Timestamp().Str("channel", t.String()).Logger()
		if conf.Debug {
			logger = logger.Output(zerolog.MultiLevelWriter(file, zerolog.ConsoleWriter{Out: os.Stderr}))
		}
		p.loggers[t] = logger
	}
	return p, nil
}

func (p *LogProvider) Errorf(t TypeEnum, format string, args ...interface{}) {
	p.logger(t).Error().Msgf(format, args...)
}

func (p *LogProvider) Warnf(t TypeEnum, format string, args ...interface{}) {
	p.logger(t).Warn().Msgf(format, args...)
}

func (p *LogProvider) Infof(t TypeEnum, format string, args ...interface{}) {
	p.logger(t).Info().Msgf(format, args...)
}

func (p *LogProvider) Debugf(t TypeEnum, format string, args ...interface{}) {
	p.logger(t).Debug().Msgf(format, args...)
}

func (p *LogProvider) Fatalf(t TypeEnum, format string, args ...interface{}) {
	p.logger(t).Fatal().Msgf(format, args...)
}

func (p *LogProvider) logger(t TypeEnum) *zerolog.Logger {
	if l, ok := p.loggers[t]; ok {
		return &l
	}
	l := p.loggers[TypeApp]
	return &l
}

func (p *LogProvider) Close() {
	for _, f := range p.files {
		f.Close()
	}
	p.files = nil
}
