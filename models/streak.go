package models

// StreakState holds the per-user daily completion counters.
// CurrentStreak counts consecutive qualifying days; LongestStreak never
// decreases and is always >= CurrentStreak.
type StreakState struct {
	CurrentStreak int `json:"current"`
	LongestStreak int `json:"longest"`
}
