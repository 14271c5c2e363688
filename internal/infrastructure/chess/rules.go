package chess

import (
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"
	"github.com/go-autoresign/internal/domain"
)

// Rules answers whose turn it is from a stored position history.
type Rules struct{}

func NewRules() *Rules { return &Rules{} }

// TurnToMove returns the side to move after the last position of history.
// An empty history means the standard starting position, where white moves.
func (Rules) TurnToMove(history []string) (domain.Side, error) {
	if len(history) == 0 {
		return fromColor(nchess.NewGame().Position().Turn()), nil
	}
	fen := strings.TrimSpace(history[len(history)-1])
	if fen == "" || fen == "startpos" {
		return fromColor(nchess.NewGame().Position().Turn()), nil
	}
	option, err := nchess.FEN(fen)
	if err != nil {
		return "", fmt.Errorf("parse fen %q: %w", fen, domain.ErrInvalidPosition)
	}
	return fromColor(nchess.NewGame(option).Position().Turn()), nil
}

func fromColor(c nchess.Color) domain.Side {
	if c == nchess.Black {
		return domain.SideBlack
	}
	return domain.SideWhite
}
