package prefs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/XavierBriggs/Athena/internal/filters"
	"github.com/XavierBriggs/Athena/pkg/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrInvalidChange is returned when a filter change carries values the pipeline cannot apply
var ErrInvalidChange = errors.New("invalid filter change")

// Container owns one user's preferences. Load reads the store once; every
// action that changes state saves it before returning. Containers for the
// same user may run concurrently when the store implements Updater.
type Container struct {
	store     Store
	publisher Publisher
	userID    string
	log       *logrus.Entry
	now       func() time.Time

	mu     sync.Mutex
	loaded bool
	prefs  models.Preferences
}

// NewContainer creates a container for userID. publisher may be nil.
func NewContainer(store Store, publisher Publisher, userID string, log *logrus.Entry) *Container {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Container{
		store:     store,
		publisher: publisher,
		userID:    userID,
		log:       log.WithField("user_id", userID),
		now:       time.Now,
	}
}

// Load reads the user's state from the store on first call and returns a copy
func (c *Container) Load(ctx context.Context) (models.Preferences, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureLoaded(ctx); err != nil {
		return models.Preferences{}, err
	}
	return clonePrefs(c.prefs), nil
}

// ToggleStar stars playerID, or unstars it if already starred
func (c *Container) ToggleStar(ctx context.Context, playerID int) (models.Preferences, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureLoaded(ctx); err != nil {
		return models.Preferences{}, err
	}

	err := c.commit(ctx, func(next models.Preferences) models.Preferences {
		next.StarredPlayers = toggleInt(next.StarredPlayers, playerID)
		return next
	})
	if err != nil {
		return models.Preferences{}, err
	}
	return clonePrefs(c.prefs), nil
}

// ApplyFilterChange merges the fields present in event into the saved filters,
// persists the result and publishes the event
func (c *Container) ApplyFilterChange(ctx context.Context, event models.FilterChangeEvent) (models.Preferences, error) {
	if err := validateChange(event); err != nil {
		return models.Preferences{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureLoaded(ctx); err != nil {
		return models.Preferences{}, err
	}

	if event.EventID == "" {
		event.EventID = uuid.New().String()
	}
	if event.ChangedAt.IsZero() {
		event.ChangedAt = c.now().UTC()
	}
	event.UserID = c.userID

	err := c.commit(ctx, func(next models.Preferences) models.Preferences {
		next.Filters = merge(next.Filters, event)
		return next
	})
	if err != nil {
		return models.Preferences{}, err
	}

	if c.publisher != nil {
		if err := c.publisher.PublishFilterChange(ctx, event); err != nil {
			c.log.WithError(err).WithField("event_id", event.EventID).Warn("publish filter change failed")
		}
	}

	return clonePrefs(c.prefs), nil
}

func (c *Container) ensureLoaded(ctx context.Context) error {
	if c.loaded {
		return nil
	}

	prefs, err := c.store.Load(ctx, c.userID)
	if err != nil {
		return fmt.Errorf("load preferences: %w", err)
	}

	c.prefs = prefs
	c.loaded = true
	return nil
}

// commit saves the changed state and only then makes it the current one.
// Stores that implement Updater apply change to their latest saved document.
func (c *Container) commit(ctx context.Context, change func(models.Preferences) models.Preferences) error {
	if u, ok := c.store.(Updater); ok {
		saved, err := u.Update(ctx, c.userID, func(current models.Preferences) models.Preferences {
			return change(clonePrefs(current))
		})
		if err != nil {
			return fmt.Errorf("save preferences: %w", err)
		}
		c.prefs = saved
		return nil
	}

	next := change(clonePrefs(c.prefs))
	if err := c.store.Save(ctx, c.userID, next); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	c.prefs = next
	return nil
}

func merge(state models.FilterState, event models.FilterChangeEvent) models.FilterState {
	if event.QuickFilters != nil {
		state.QuickFilters = []models.QuickFilter(filters.NewQuickSet(*event.QuickFilters...))
	}
	if event.RangeFilters != nil {
		state.RangeFilters = append([]models.RangeFilter{}, *event.RangeFilters...)
	}
	if event.InjuryFilters != nil {
		state.InjuryFilters = append([]models.InjuryFilter{}, *event.InjuryFilters...)
	}
	if event.GameWindow != nil {
		state.GameWindow = *event.GameWindow
	}
	if event.H2HOpponent != nil {
		state.H2HOpponent = strings.ToUpper(strings.TrimSpace(*event.H2HOpponent))
	}
	return state
}

func validateChange(event models.FilterChangeEvent) error {
	if event.QuickFilters != nil {
		for _, f := range *event.QuickFilters {
			if !filters.ValidQuick(f) {
				return fmt.Errorf("%w: unknown quick filter %q", ErrInvalidChange, f)
			}
		}
	}
	if event.RangeFilters != nil {
		for _, r := range *event.RangeFilters {
			if !filters.ValidRangeField(r.Field) {
				return fmt.Errorf("%w: unknown range field %q", ErrInvalidChange, r.Field)
			}
			if r.Min > r.Max {
				return fmt.Errorf("%w: range %s has min %v above max %v", ErrInvalidChange, r.Field, r.Min, r.Max)
			}
		}
	}
	if event.InjuryFilters != nil {
		for _, f := range *event.InjuryFilters {
			if f.Mode != nil && *f.Mode != models.InjuryWith && *f.Mode != models.InjuryWithout {
				return fmt.Errorf("%w: unknown injury mode %q", ErrInvalidChange, *f.Mode)
			}
		}
	}
	if event.GameWindow != nil && !filters.ValidWindow(*event.GameWindow) {
		return fmt.Errorf("%w: unsupported game window %d", ErrInvalidChange, *event.GameWindow)
	}
	return nil
}

func toggleInt(ids []int, id int) []int {
	out := make([]int, 0, len(ids)+1)
	found := false
	for _, existing := range ids {
		if existing == id {
			found = true
			continue
		}
		out = append(out, existing)
	}
	if !found {
		out = append(out, id)
		sort.Ints(out)
	}
	return out
}

func clonePrefs(p models.Preferences) models.Preferences {
	out := models.Preferences{
		StarredPlayers: append([]int{}, p.StarredPlayers...),
		Filters:        p.Filters,
	}
	out.Filters.QuickFilters = append([]models.QuickFilter{}, p.Filters.QuickFilters...)
	out.Filters.RangeFilters = append([]models.RangeFilter{}, p.Filters.RangeFilters...)
	out.Filters.InjuryFilters = append([]models.InjuryFilter{}, p.Filters.InjuryFilters...)
	return out
}
