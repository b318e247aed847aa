package store

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// EventStatusCounts reports how many events changed status in one pass
type EventStatusCounts struct {
	Live      int64
	Completed int64
}

// UpdateEventStatuses moves events from upcoming to live at tipoff and from
// live to completed three hours later
func (s *Store) UpdateEventStatuses(ctx context.Context) (EventStatusCounts, error) {
	var counts EventStatusCounts

	res, err := s.db.ExecContext(ctx, `
		UPDATE events
		SET event_status = 'live'
		WHERE event_status = 'upcoming'
		  AND commence_time <= NOW()
	`)
	if err != nil {
		return counts, fmt.Errorf("update to live: %w", err)
	}
	counts.Live, _ = res.RowsAffected()

	res, err = s.db.ExecContext(ctx, `
		UPDATE events
		SET event_status = 'completed'
		WHERE event_status = 'live'
		  AND commence_time < NOW() - INTERVAL '3 hours'
	`)
	if err != nil {
		return counts, fmt.Errorf("update to completed: %w", err)
	}
	counts.Completed, _ = res.RowsAffected()

	if counts.Live > 0 || counts.Completed > 0 {
		s.log.WithFields(logrus.Fields{
			"live":      counts.Live,
			"completed": counts.Completed,
		}).Info("updated event statuses")
	}

	return counts, nil
}
