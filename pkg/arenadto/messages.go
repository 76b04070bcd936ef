package arenadto

// Notification envelope types carried over the live channel.
const (
	MsgGameStarted = "game_started"
	MsgMoveMade    = "move_made"
	MsgInfo        = "info"
)

// Envelope is the outbound notification payload. Text-only messages use
// Type "info" with Body set; state-bearing messages carry GameState.
type Envelope struct {
	Type     string     `json:"type"`
	GameID   string     `json:"game_id,omitempty"`
	PlayerID string     `json:"player_id,omitempty"`
	Move     string     `json:"move,omitempty"`
	State    *GameState `json:"game_state,omitempty"`
	Outcome  string     `json:"outcome,omitempty"`
	Body     string     `json:"body,omitempty"`
}

// Info wraps free text into an informational envelope.
func Info(body string) Envelope {
	return Envelope{Type: MsgInfo, Body: body}
}
