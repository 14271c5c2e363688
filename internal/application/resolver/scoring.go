package resolver

import "github.com/go-autoresign/internal/domain"

// scoreFactor is the number of points a full game's worth of moves is worth.
const scoreFactor = 20.0

// Redistribute computes the score change of every player who moved in game
// once winner has been decided. Each player's delta is
// scoreFactor * movesByPlayer / len(History), positive for the winning side
// and negative for the forfeiting side. System moves count towards the
// denominator but belong to nobody. Changes are ordered by first move.
func Redistribute(game domain.Game, winner domain.Side) []domain.ScoreChange {
	total := len(game.History)
	if total == 0 {
		return nil
	}
	winners := toSet(game.Roster(winner))
	losers := toSet(game.Roster(winner.Opponent()))

	counts := make(map[string]int)
	var order []string
	for _, m := range game.History {
		if m.PlayerID == nil {
			continue
		}
		id := *m.PlayerID
		if _, ok := counts[id]; !ok {
			order = append(order, id)
		}
		counts[id]++
	}

	var changes []domain.ScoreChange
	for _, id := range order {
		var sign float64
		switch {
		case winners[id]:
			sign = 1
		case losers[id]:
			sign = -1
		default:
			continue
		}
		moves := counts[id]
		changes = append(changes, domain.ScoreChange{
			PlayerID: id,
			Moves:    moves,
			Delta:    sign * scoreFactor * float64(moves) / float64(total),
		})
	}
	return changes
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
