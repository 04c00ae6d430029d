package model

import "time"

// SeasonWindow is the regulatory date window for a hunt code.
type SeasonWindow struct {
	HuntCode string
	StartAt  time.Time
	EndAt    time.Time
}
