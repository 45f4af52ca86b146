package service

import "time"

// LogFilter supports history filtering by time range, type and operator.
type LogFilter struct {
	From       time.Time // inclusive; zero means no lower bound
	To         time.Time // inclusive; zero means no upper bound
	Type       string    // "", "ENABLE", "DISABLE", "CALIBRATION", "ERROR"
	OperatorID int       // 0 means any actor
}

// ReadingFilter selects stored readings.
type ReadingFilter struct {
	From  time.Time // inclusive; zero means no lower bound
	To    time.Time // inclusive; zero means no upper bound
	Limit int       // 0 means the repository default
}
