package domain

import "time"

// User is a learner known to the bot frontend
type User struct {
	ID         int64     `db:"id"`
	TelegramID int64     `db:"telegram_id"`
	Username   string    `db:"username"`
	Authorized bool      `db:"authorized"`
	CreatedAt  time.Time `db:"created_at"`
}

// UserState represents user's current interaction state
type UserState string

const (
	StateIdle           UserState = "idle"
	StateWaitingWord    UserState = "waiting_word"
	StateWaitingMeaning UserState = "waiting_meaning"
	StateWaitingAnswer  UserState = "waiting_answer"
)

// StateData holds temporary data for user's current state
type StateData struct {
	State       UserState
	CurrentWord string
	Quiz        *Quiz
	MessageID   int // For editing messages
}
