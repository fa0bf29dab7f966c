package testbackend

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"time"
)

// Log actions.
const (
	ActionLogin     = "LOGIN"
	ActionHeartRate = "HEART_RATE"
	loginSuccess    = "success"
	loginFailed     = "failed"
)

// Constants for generated readings.
const (
	heartRateMin      = 55
	heartRateRange    = 60
	loginSuccessRatio = 4
	entrySpacing      = 7 * time.Minute
)

// LogEntry is one line of the health log.
type LogEntry struct {
	Date   time.Time
	User   string
	Action string
	Value  string
}

// Login builds a login entry.
func Login(user string, ok bool) LogEntry {
	value := loginFailed
	if ok {
		value = loginSuccess
	}
	return LogEntry{Date: time.Now().UTC(), User: user, Action: ActionLogin, Value: value}
}

// HeartRate builds a heart rate entry.
func HeartRate(user string, bpm int) LogEntry {
	return LogEntry{Date: time.Now().UTC(), User: user, Action: ActionHeartRate, Value: strconv.Itoa(bpm)}
}

// randomInt returns a value in [0, n) using crypto/rand.
func randomInt(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

// Generate creates a random health log of n entries spread over users
// user01..userNN. Roughly one entry in three is a login.
func Generate(n, users int) []LogEntry {
	if users <= 0 {
		users = 1
	}
	start := time.Now().UTC().Add(-time.Duration(n) * entrySpacing)
	logs := make([]LogEntry, 0, n)
	for i := 0; i < n; i++ {
		user := fmt.Sprintf("user%02d", randomInt(users)+1)
		var e LogEntry
		if randomInt(3) == 0 {
			e = Login(user, randomInt(loginSuccessRatio+1) != 0)
		} else {
			e = HeartRate(user, heartRateMin+randomInt(heartRateRange))
		}
		e.Date = start.Add(time.Duration(i) * entrySpacing)
		logs = append(logs, e)
	}
	return logs
}
