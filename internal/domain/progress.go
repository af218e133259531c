package domain

// UserProgress tracks accumulated experience for a single user.
// Level is always derived from Experience and never edited directly.
type UserProgress struct {
	Experience   int64 `json:"xp"`
	Level        int   `json:"level"`
	MessageCount int64 `json:"messages"`
}
