package model

import "time"

// LeaderboardEntry is the public projection of a profile shown on the wall of fame.
type LeaderboardEntry struct {
	UpdatedAt     time.Time `json:"updatedAt"`
	UserID        string    `json:"userId"`
	DisplayName   string    `json:"displayName"`
	PhotoURL      string    `json:"photoURL,omitempty"`
	CurrentStreak int       `json:"currentStreak"`
	LongestStreak int       `json:"longestStreak"`
	Rank          int       `json:"rank,omitempty"`
}

// EntryFromProfile projects the public fields of a profile.
func EntryFromProfile(p *UserProfile, now time.Time) LeaderboardEntry {
	return LeaderboardEntry{
		UserID:        p.ID,
		DisplayName:   p.DisplayName,
		PhotoURL:      p.PhotoURL,
		CurrentStreak: p.CurrentStreak,
		LongestStreak: p.LongestStreak,
		UpdatedAt:     now,
	}
}
