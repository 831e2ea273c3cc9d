package api

import (
	"context"
	"errors"

	"github.com/dataforgoodfr/shiftdataportal-sub001/core/urlstate"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/utils"
)

type BackgroundWorker interface {
	StartWithContext(context.Context)
	StopWithContext(context.Context) error
}

type BackgroundController interface {
	Start(context.Context)
	Stop(context.Context) error
}

type backgroundManager struct {
	history *urlstate.History
	logger  *utils.Logger
	workers []BackgroundWorker
}

func newBackgroundManager(history *urlstate.History, logger *utils.Logger, workers ...BackgroundWorker) *backgroundManager {
	out := make([]BackgroundWorker, 0, len(workers))
	for _, w := range workers {
		if w == nil {
			continue
		}
		out = append(out, w)
	}
	return &backgroundManager{
		history: history,
		logger:  logger,
		workers: out,
	}
}

// BuildBackgroundController starts workers together and, on stop, applies
// the url writes still waiting on their debounce.
func BuildBackgroundController(history *urlstate.History, logger *utils.Logger, workers ...BackgroundWorker) BackgroundController {
	return newBackgroundManager(history, logger, workers...)
}

func (m *backgroundManager) Start(ctx context.Context) {
	if m == nil {
		return
	}
	for _, w := range m.workers {
		w.StartWithContext(ctx)
	}
	m.logger.Printf("background workers started count=%d", len(m.workers))
}

func (m *backgroundManager) Stop(ctx context.Context) error {
	if m == nil {
		return nil
	}
	var errs []error
	for _, w := range m.workers {
		if err := w.StopWithContext(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if m.history != nil {
		m.history.Flush()
	}
	return errors.Join(errs...)
}
