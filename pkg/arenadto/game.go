package arenadto

import "time"

// GameState mirrors the position state carried in notifications and responses.
type GameState struct {
	Board    string   `json:"board"`
	Turn     string   `json:"turn"`
	MovesUCI []string `json:"moves_uci"`
	MovesSAN []string `json:"moves_san"`
}

type GameSummary struct {
	GameID         string    `json:"game_id"`
	CreatorID      string    `json:"creator_id"`
	CreatorName    string    `json:"creator_username"`
	CreatorRating  int       `json:"creator_rating"`
	Wager          float64   `json:"bet"`
	CreatedAt      time.Time `json:"created_at"`
	RatingDistance int       `json:"-"`
}

type GameRecord struct {
	GameID     string     `json:"game_id"`
	CreatorID  string     `json:"player1_id"`
	OpponentID string     `json:"player2_id,omitempty"`
	Wager      float64    `json:"bet"`
	Status     string     `json:"status"`
	State      *GameState `json:"game_state,omitempty"`
	Winner     string     `json:"winner,omitempty"`
	Outcome    string     `json:"outcome,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type LeaderboardEntry struct {
	Username      string  `json:"username"`
	Rating        int     `json:"rating"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	Draws         int     `json:"draws"`
	WinPercentage float64 `json:"win_percentage"`
}
