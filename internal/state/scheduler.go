package state

import (
	"sync"

	"github.com/roylee0704/gron"

	"anitrackr/internal/providers"
	"anitrackr/internal/state/interfaces"
	"anitrackr/internal/structures"
)

// Scheduler drives the two periodic jobs of the client core: flushing the
// state snapshot and refetching the news feed (the core polls, it never
// subscribes to live change streams).
type Scheduler struct {
	config *structures.Config
	logger providers.Logger
	store  KVStoreInterface
	cron   *gron.Cron
	opsMu  sync.Mutex

	refreshMu sync.Mutex
	refresh   func()
}

// OnNewsRefresh registers the feed refetch job; call before Init.
func (s *Scheduler) OnNewsRefresh(fn func()) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	s.refresh = fn
}

// Init starts both jobs. gron stretches sub-second periods to one second,
// so configured intervals below 1s fire at 1s.
func (s *Scheduler) Init() {
	s.cron = gron.New()

	s.cron.AddFunc(gron.Every(s.config.State.SaveInterval), func() {
		s.opsMu.Lock()
		defer s.opsMu.Unlock()

		if err := s.store.Flush(); err != nil {
			s.logger.Errorf(providers.TypeStore, "Error while persisting client state: %s", err)
			return
		}
	})

	s.cron.AddFunc(gron.Every(s.config.News.RefreshInterval), func() {
		s.refreshMu.Lock()
		fn := s.refresh
		s.refreshMu.Unlock()
		if fn == nil {
			return
		}
		s.logger.Debugf(providers.TypeRemote, "Refreshing news feed...")
		fn()
	})

	s.cron.Start()
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	s.logger.Infof(providers.TypeStore, "Persisting client state to file...")
	if err := s.store.Flush(); err != nil {
		s.logger.Errorf(providers.TypeStore, "Error while persisting client state: %s", err)
		return err
	}
	return nil
}

func NewScheduler(config *structures.Config, logger providers.Logger, store KVStoreInterface) interfaces.SchedulerInterface {
	return &Scheduler{
		config: config,
		logger: logger,
		store:  store,
	}
}
