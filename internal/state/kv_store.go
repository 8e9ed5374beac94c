// Package state is the durable client-side key-value store: navigation
// context, nudge throttle timestamps and the persisted session live here.
// The contract is "durable across reloads, scoped to this client
// installation": a compressed JSON snapshot on disk, never a server round
// trip.
package state

import (
	"os"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/atomic"

	"anitrackr/internal/providers"
	"anitrackr/internal/structures"
)

type KVStoreInterface interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Remove(key string)
	Flush() error
	Close() error
}

type FileKVStore struct {
	mu         sync.RWMutex
	data       map[string]string
	path       string
	compressor CompressorInterface
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
	dirty      atomic.Bool
}

func NewFileKVStore(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface, compressor CompressorInterface) (KVStoreInterface, error) {
	s := &FileKVStore{
		data:       make(map[string]string),
		path:       conf.State.FilePath,
		compressor: compressor,
		logger:     logger,
		metrics:    metrics,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileKVStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.data[key]
	return val, ok
}

func (s *FileKVStore) Set(key, value string) {
	s.mu.Lock()
	s.data[key] = value
	s.mu.Unlock()
	s.dirty.Store(true)
}

func (s *FileKVStore) Remove(key string) {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
	s.dirty.Store(true)
}

func (s *FileKVStore) load() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	decompressed, err := s.compressor.Decompress(raw)
	if err != nil {
		// A corrupt snapshot only costs restored navigation state; start clean.
		s.logger.Warnf(providers.TypeStore, "Discarding unreadable state snapshot: %s", err)
		return nil
	}
	var data map[string]string
	if err := json.Unmarshal(decompressed, &data); err != nil {
		s.logger.Warnf(providers.TypeStore, "Discarding malformed state snapshot: %s", err)
		return nil
	}
	s.data = data
	return nil
}

// Flush writes the snapshot when anything changed since the last write.
// The write is atomic: tmp file, fsync, rename.
func (s *FileKVStore) Flush() error {
	if !s.dirty.Swap(false) {
		return nil
	}
	started := time.Now()

	s.mu.RLock()
	jsonData, err := json.Marshal(s.data)
	s.mu.RUnlock()
	if err != nil {
		return err
	}
	data, err := s.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	tmpFile := s.path + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	if err = os.Rename(tmpFile, s.path); err != nil {
		return err
	}
	s.metrics.ObservePersistenceDuration(time.Since(started))
	return nil
}

func (s *FileKVStore) Close() error {
	err := s.Flush()
	s.compressor.Close()
	return err
}
