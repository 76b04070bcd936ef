package arenadto

type RegisterRequest struct {
	Username string `json:"username"`
	Rating   int    `json:"rating"`
}

type RegisterResponse struct {
	UserID string `json:"user_id"`
}

type CreateGameRequest struct {
	UserID string  `json:"user_id"`
	Wager  float64 `json:"bet"`
}

type CreateGameResponse struct {
	GameID  string  `json:"game_id"`
	Creator string  `json:"creator"`
	Wager   float64 `json:"bet"`
}

type ListGamesRequest struct {
	UserID string `json:"user_id"`
}

type JoinGameRequest struct {
	UserID string `json:"user_id"`
	GameID string `json:"game_id"`
}

type MoveRequest struct {
	GameID   string `json:"game_id"`
	PlayerID string `json:"player_id"`
	Move     string `json:"move"`
}

type CompleteGameRequest struct {
	GameID   string `json:"game_id"`
	WinnerID string `json:"winner_id,omitempty"`
	IsDraw   bool   `json:"is_draw"`
}

type CompleteGameResponse struct {
	NewRatings map[string]int `json:"new_ratings"`
}

type SpectateRequest struct {
	UserID string `json:"user_id"`
	GameID string `json:"game_id"`
}
