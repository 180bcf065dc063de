package monitoring

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"picstream/internal/services"
)

// TrendingUpdater refreshes the trending hashtag tally on a cron schedule.
type TrendingUpdater struct {
	trending services.TrendingServiceProvider
	schedule cron.Schedule
	done     chan bool
}

// NewTrendingUpdater parses spec ("@hourly", "*/10 * * * *", ...) and wires
// the updater. A bad spec is a startup error, not a silent no-op.
func NewTrendingUpdater(trending services.TrendingServiceProvider, spec string) (*TrendingUpdater, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, err
	}
	return &TrendingUpdater{
		trending: trending,
		schedule: schedule,
		done:     make(chan bool),
	}, nil
}

// Run refreshes once immediately, then on every schedule tick.
func (u *TrendingUpdater) Run() {
	log.Info().Msg("Starting trending updater")
	u.refresh()

	for {
		timer := time.NewTimer(time.Until(u.schedule.Next(time.Now())))
		select {
		case <-u.done:
			timer.Stop()
			log.Info().Msg("Stopping trending updater")
			return
		case <-timer.C:
			u.refresh()
		}
	}
}

// Stop halts the updater.
func (u *TrendingUpdater) Stop() {
	u.done <- true
}

func (u *TrendingUpdater) refresh() {
	if err := u.trending.Refresh(); err != nil {
		log.Error().Err(err).Msg("Failed to refresh trending hashtags")
	}
}
