package testbackend

import (
	"math"
	"sort"
	"strconv"

	"github.com/okian/pulseboard/internal/domain/model"
)

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func heartRates(logs []LogEntry, user string) []int {
	var out []int
	for _, e := range logs {
		if e.Action != ActionHeartRate || (user != "" && e.User != user) {
			continue
		}
		if v, err := strconv.Atoi(e.Value); err == nil {
			out = append(out, v)
		}
	}
	return out
}

func mean(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

func userIDs(logs []LogEntry) []string {
	seen := make(map[string]struct{})
	for _, e := range logs {
		seen[e.User] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for u := range seen {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

func summarize(logs []LogEntry) model.Summary {
	s := model.Summary{
		TotalUsers:       len(userIDs(logs)),
		AverageHeartRate: round2(mean(heartRates(logs, ""))),
		TotalLogs:        len(logs),
	}
	for _, e := range logs {
		if e.Action == ActionLogin && e.Value == loginSuccess {
			s.SuccessfulLogins++
		}
	}
	return s
}

func heartRateStats(logs []LogEntry) model.HeartRate {
	rates := heartRates(logs, "")
	if len(rates) == 0 {
		return model.HeartRate{}
	}
	lo, hi := rates[0], rates[0]
	for _, v := range rates {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return model.HeartRate{
		TotalReadings: len(rates),
		Min:           float64(lo),
		Average:       round2(mean(rates)),
		Max:           float64(hi),
	}
}

func loginStats(logs []LogEntry) model.Logins {
	var l model.Logins
	for _, e := range logs {
		if e.Action != ActionLogin {
			continue
		}
		l.TotalLogins++
		switch e.Value {
		case loginSuccess:
			l.SuccessfulLogins++
		case loginFailed:
			l.FailedLogins++
		}
	}
	if l.TotalLogins > 0 {
		l.SuccessRate = round2(float64(l.SuccessfulLogins) / float64(l.TotalLogins) * 100)
	}
	return l
}

func userWiseHeartRate(logs []LogEntry) model.UserHeartRates {
	out := make(model.UserHeartRates)
	for _, u := range userIDs(logs) {
		if rates := heartRates(logs, u); len(rates) > 0 {
			out[u] = round2(mean(rates))
		}
	}
	return out
}

func userDetail(logs []LogEntry, user string) (model.UserDetail, bool) {
	d := model.UserDetail{Username: user}
	for _, e := range logs {
		if e.User != user {
			continue
		}
		d.TotalLogs++
		if e.Action == ActionLogin {
			d.LoginAttempts++
			if e.Value == loginSuccess {
				d.SuccessfulLogins++
			}
		}
	}
	return d, d.TotalLogs > 0
}
