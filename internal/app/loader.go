package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/pulseboard/internal/adapters/backend"
	"github.com/okian/pulseboard/internal/domain/model"
	"github.com/okian/pulseboard/internal/domain/types"
	"github.com/okian/pulseboard/pkg/logger"
	"github.com/okian/pulseboard/pkg/metrics"
)

// Slice names used in logs and metrics.
const (
	sliceSummary   = "summary"
	sliceHeartRate = "heart_rate"
	sliceLogins    = "logins"
	sliceUserRates = "user_heart_rate"
	sliceUsers     = "users"
)

type sliceLoader struct {
	name string
	load func(ctx context.Context) bool
}

func (c *Controller) slices() []sliceLoader {
	return []sliceLoader{
		{sliceSummary, c.loadSummary},
		{sliceHeartRate, c.loadHeartRateStats},
		{sliceLogins, c.loadLoginChart},
		{sliceUserRates, c.loadHeartRateChart},
		{sliceUsers, c.loadUsersList},
	}
}

// RunCycle performs one refresh cycle: busy marker on, every slice loaded
// concurrently, busy marker off. Slices are independent; a failing slice
// leaves its part of the view unchanged. A panic in any slice is reported
// once through the view alert.
func (c *Controller) RunCycle(ctx context.Context) {
	c.load(ctx)

	cycleID := uuid.NewString()
	log := c.logger.With(logger.String("cycle", cycleID))
	start := time.Now()
	metrics.RecordCycleStarted()

	c.view.SetBusy(true)
	defer c.view.SetBusy(false)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures []string
	)
	loaders := c.slices()
	wg.Add(len(loaders))
	for _, s := range loaders {
		go func(s sliceLoader) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					mu.Lock()
					failures = append(failures, fmt.Sprintf("%s: %v", s.name, r))
					mu.Unlock()
				}
			}()
			if s.load(ctx) {
				metrics.RecordSliceUpdated(s.name)
			} else {
				metrics.RecordSliceSkipped(s.name)
			}
		}(s)
	}
	wg.Wait()

	durationMs := float64(time.Since(start).Milliseconds())
	metrics.RecordCycleFinished(durationMs)

	if len(failures) > 0 {
		metrics.RecordCyclePanic()
		log.Error(ctx, "error initializing dashboard", logger.Any("failures", failures))
		c.view.Alert(loadErrorAlert)
		return
	}
	log.Debug(ctx, "refresh cycle finished", logger.Float64("duration_ms", durationMs))
}

func (c *Controller) loadSummary(ctx context.Context) bool {
	s, err := backend.Fetch[model.Summary](ctx, c.client, backend.PathSummary)
	if err != nil {
		return false
	}
	c.view.SetText(types.SlotTotalUsers, model.FormatNumber(float64(s.TotalUsers)))
	c.view.SetText(types.SlotSuccessLogins, model.FormatNumber(float64(s.SuccessfulLogins)))
	c.view.SetText(types.SlotAvgHeartRate, model.FormatBPM(s.AverageHeartRate))
	c.view.SetText(types.SlotTotalLogs, model.FormatNumber(float64(s.TotalLogs)))
	return true
}

func (c *Controller) loadHeartRateStats(ctx context.Context) bool {
	hr, err := backend.Fetch[model.HeartRate](ctx, c.client, backend.PathHeartRate)
	if err != nil {
		return false
	}
	c.view.SetText(types.SlotMinHeartRate, model.FormatBPM(hr.Min))
	c.view.SetText(types.SlotAvgHeartRateLarge, model.FormatBPM(hr.Average))
	c.view.SetText(types.SlotMaxHeartRate, model.FormatBPM(hr.Max))
	return true
}

func (c *Controller) loadLoginChart(ctx context.Context) bool {
	l, err := backend.Fetch[model.Logins](ctx, c.client, backend.PathLogins)
	if err != nil {
		return false
	}
	c.rebuildChart(types.ChartLogins, types.ChartSpec{
		Kind:   types.KindDoughnut,
		Title:  "Login Outcomes",
		Labels: []string{"Successful", "Failed"},
		Values: []float64{float64(l.SuccessfulLogins), float64(l.FailedLogins)},
	})
	return true
}

func (c *Controller) loadHeartRateChart(ctx context.Context) bool {
	rates, err := backend.Fetch[model.UserHeartRates](ctx, c.client, backend.PathUserWiseHeartRate)
	if err != nil {
		return false
	}
	users := rates.Users()
	values := make([]float64, len(users))
	for i, u := range users {
		values[i] = rates[u]
	}
	c.rebuildChart(types.ChartHeartRate, types.ChartSpec{
		Kind:        types.KindBar,
		Title:       "User-wise Heart Rate",
		SeriesLabel: "Average Heart Rate (bpm)",
		Labels:      users,
		Values:      values,
		Unit:        "bpm",
	})
	return true
}

// loadUsersList rebuilds the roster. Detail requests run one at a time in
// roster order, so cards always appear in roster order.
func (c *Controller) loadUsersList(ctx context.Context) bool {
	roster, err := backend.Fetch[model.Roster](ctx, c.client, backend.PathUsers)
	if err != nil {
		return false
	}
	c.view.ClearUsers()
	for _, id := range roster.Users {
		card := types.UserCard{UserID: id}
		if d, err := backend.Fetch[model.UserDetail](ctx, c.client, backend.UserPath(id)); err == nil {
			card.Detail = &types.CardDetail{
				Username:         d.Username,
				TotalLogs:        d.TotalLogs,
				LoginAttempts:    d.LoginAttempts,
				SuccessfulLogins: d.SuccessfulLogins,
			}
		}
		c.view.AppendUserCard(card)
	}
	return true
}
