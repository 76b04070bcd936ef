package rules

import (
	"regexp"
	"strings"

	nchess "github.com/corentings/chess/v2"
)

// ChessEngine implements Engine on corentings/chess. History entries are UCI.
type ChessEngine struct{}

func NewChessEngine() *ChessEngine { return &ChessEngine{} }

var (
	uciRe = regexp.MustCompile(`^[a-h][1-8][a-h][1-8][nbrq]?$`)
	sanRe = regexp.MustCompile(`^(O-O(-O)?|[KQRBN]?[a-h]?[1-8]?x?[a-h][1-8](=[QRBN])?)[+#]?$`)
)

func (e *ChessEngine) InitialFEN() string {
	return nchess.NewGame().FEN()
}

func (e *ChessEngine) Parse(text string) (Move, error) {
	t := strings.TrimSpace(text)
	if t == "" {
		return Move{}, ErrMalformed
	}
	if uciRe.MatchString(strings.ToLower(t)) {
		return Move{UCI: strings.ToLower(t)}, nil
	}
	if sanRe.MatchString(t) {
		return Move{SAN: t}, nil
	}
	return Move{}, ErrMalformed
}

func (e *ChessEngine) Legal(history []string, candidate Move) bool {
	game := reconstruct(history)
	if game == nil {
		return false
	}
	_, err := decode(game, candidate)
	return err == nil
}

func (e *ChessEngine) Apply(history []string, candidate Move) (*Applied, error) {
	game := reconstruct(history)
	if game == nil {
		return nil, ErrCorruptHistory
	}
	pos := game.Position()
	mv, err := decode(game, candidate)
	if err != nil {
		return nil, ErrIllegal
	}
	san := nchess.AlgebraicNotation{}.Encode(pos, mv)
	game.Move(mv, nil)
	return &Applied{
		UCI:     mv.String(),
		SAN:     san,
		FEN:     game.FEN(),
		Outcome: outcomeFrom(game),
	}, nil
}

func (e *ChessEngine) FEN(history []string) (string, error) {
	game := reconstruct(history)
	if game == nil {
		return "", ErrCorruptHistory
	}
	return game.FEN(), nil
}

// decode resolves a candidate against the current position without mutating it.
func decode(game *nchess.Game, candidate Move) (*nchess.Move, error) {
	pos := game.Position()
	if candidate.UCI != "" {
		return nchess.UCINotation{}.Decode(pos, candidate.UCI)
	}
	return nchess.AlgebraicNotation{}.Decode(pos, candidate.SAN)
}

// reconstruct replays the stored UCI history from the start position. The FEN
// kept on the game record is presentation state; replaying is authoritative.
func reconstruct(history []string) *nchess.Game {
	game := nchess.NewGame()
	for _, mv := range history {
		if err := game.PushNotationMove(mv, nchess.UCINotation{}, nil); err != nil {
			return nil
		}
	}
	return game
}

func outcomeFrom(game *nchess.Game) Outcome {
	switch game.Outcome() {
	case nchess.WhiteWon:
		return OutcomeFirstWins
	case nchess.BlackWon:
		return OutcomeSecondWins
	case nchess.Draw:
		return OutcomeDraw
	default:
		return OutcomeNone
	}
}
