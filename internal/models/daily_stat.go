package models

// DailyStat is the global per-day counter pair. It lives in Redis and is
// bumped with atomic increments from every request.
type DailyStat struct {
	Date    string `json:"date"`
	Scanned int64  `json:"scanned"`
	Flagged int64  `json:"flagged"`
}
