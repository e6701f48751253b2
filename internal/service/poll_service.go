package service

import (
	"context"
	"github.com/google/uuid"
	"github.com/ilindan-dev/slot-watcher/internal/config"
	"github.com/ilindan-dev/slot-watcher/internal/domain/model"
	repo "github.com/ilindan-dev/slot-watcher/internal/domain/repository"
	"github.com/ilindan-dev/slot-watcher/internal/notifiers"
	"github.com/rs/zerolog"
	"sync"
	"time"
)

// MessageSubject is the subject used for availability messages.
const MessageSubject = "Appointment availability"

// PollService runs one poll cycle: query every store, format, notify.
type PollService struct {
	source    repo.AvailabilitySource
	formatter *Formatter
	notifier  notifiers.Notifier
	status    repo.StatusStore
	stores    []model.StoreCode
	parallel  bool
	logger    zerolog.Logger
}

// NewPollService creates a new instance of PollService.
func NewPollService(
	cfg *config.Config,
	source repo.AvailabilitySource,
	formatter *Formatter,
	notifier notifiers.Notifier,
	status repo.StatusStore,
	logger *zerolog.Logger,
) *PollService {
	stores := make([]model.StoreCode, 0, len(cfg.Watcher.Stores))
	for _, s := range cfg.Watcher.Stores {
		stores = append(stores, model.StoreCode(s.Code))
	}

	return &PollService{
		source:    source,
		formatter: formatter,
		notifier:  notifier,
		status:    status,
		stores:    stores,
		parallel:  cfg.Watcher.Parallel,
		logger:    logger.With().Str("layer", "service").Logger(),
	}
}

// RunCycle queries every configured store, waits for all of them, and sends
// the formatted message when at least one store has availability.
// Fetch and notify failures are logged and recorded in the report; they never abort the cycle.
func (s *PollService) RunCycle(ctx context.Context) *model.CycleReport {
	report := &model.CycleReport{
		ID:        uuid.New(),
		StartedAt: time.Now().UTC(),
		Stores:    make(map[model.StoreCode]int, len(s.stores)),
	}
	log := s.logger.With().Stringer("cycle_id", report.ID).Logger()

	result, failed := s.collect(ctx, log)
	for code, slots := range result {
		report.Stores[code] = len(slots)
	}
	if len(failed) > 0 {
		report.Failed = make(map[model.StoreCode]string, len(failed))
		for code, err := range failed {
			report.Failed[code] = err.Error()
		}
	}

	body, available := s.formatter.Format(result)
	report.Available = available

	if available {
		msg := model.NewMessage(report.ID, MessageSubject, body)
		if err := s.notifier.Send(ctx, msg); err != nil {
			log.Error().Err(err).Msg("failed to deliver availability message")
			report.NotifyErr = err.Error()
		} else {
			report.Notified = true
		}
	}

	report.FinishedAt = time.Now().UTC()
	if err := s.status.Save(ctx, report); err != nil {
		log.Warn().Err(err).Msg("failed to save cycle report")
	}

	log.Info().
		Int("stores", len(s.stores)).
		Int("failed", len(failed)).
		Bool("available", report.Available).
		Bool("notified", report.Notified).
		Dur("took", report.FinishedAt.Sub(report.StartedAt)).
		Msg("poll cycle finished")

	return report
}

// collect fetches every store. A failed store is recorded with no timeslots.
func (s *PollService) collect(ctx context.Context, log zerolog.Logger) (model.PollResult, map[model.StoreCode]error) {
	result := make(model.PollResult, len(s.stores))
	failed := make(map[model.StoreCode]error)

	record := func(code model.StoreCode, slots []model.Timeslot, err error) {
		if err != nil {
			log.Error().Err(err).Str("store", string(code)).Msg("failed to fetch availability")
			failed[code] = err
			slots = []model.Timeslot{}
		}
		result[code] = slots
	}

	if !s.parallel {
		for _, code := range s.stores {
			slots, err := s.source.Fetch(ctx, code)
			record(code, slots, err)
		}
		return result, failed
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, code := range s.stores {
		wg.Add(1)
		go func(code model.StoreCode) {
			defer wg.Done()
			slots, err := s.source.Fetch(ctx, code)

			mu.Lock()
			defer mu.Unlock()
			record(code, slots, err)
		}(code)
	}
	wg.Wait()

	return result, failed
}
