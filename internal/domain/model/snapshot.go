// Package model contains domain models passed between layers.
package model

import (
	"sort"
	"strconv"
)

// StatusSuccess is the envelope status of a usable response.
const StatusSuccess = "success"

// Envelope is the response shape shared by every backend endpoint.
type Envelope[T any] struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data"`
}

// OK reports whether the envelope carries a usable snapshot.
func (e Envelope[T]) OK() bool { return e.Status == StatusSuccess }

// Summary is the /summary snapshot.
type Summary struct {
	TotalUsers       int     `json:"total_users"`
	SuccessfulLogins int     `json:"successful_logins"`
	AverageHeartRate float64 `json:"average_heart_rate"`
	TotalLogs        int     `json:"total_logs"`
}

// HeartRate is the /heart-rate snapshot.
type HeartRate struct {
	TotalReadings int     `json:"total_readings"`
	Min           float64 `json:"min"`
	Average       float64 `json:"average"`
	Max           float64 `json:"max"`
}

// Logins is the /logins snapshot driving the login outcome chart.
type Logins struct {
	TotalLogins      int     `json:"total_logins"`
	SuccessfulLogins int     `json:"successful_logins"`
	FailedLogins     int     `json:"failed_logins"`
	SuccessRate      float64 `json:"success_rate"`
}

// UserHeartRates maps user id to average heart rate (/user-wise-heart-rate).
type UserHeartRates map[string]float64

// Users returns the user ids in sorted order.
func (u UserHeartRates) Users() []string {
	users := make([]string, 0, len(u))
	for user := range u {
		users = append(users, user)
	}
	sort.Strings(users)
	return users
}

// Roster is the /users snapshot.
type Roster struct {
	TotalUsers int      `json:"total_users"`
	Users      []string `json:"users"`
}

// UserDetail is the /user/{id} snapshot.
type UserDetail struct {
	Username         string `json:"username"`
	TotalLogs        int    `json:"total_logs"`
	LoginAttempts    int    `json:"login_attempts"`
	SuccessfulLogins int    `json:"successful_logins"`
}

// FormatNumber renders a value the way it arrived on the wire: 72.4, 5, 0.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatBPM renders a heart rate with its unit suffix.
func FormatBPM(v float64) string {
	return FormatNumber(v) + " bpm"
}
