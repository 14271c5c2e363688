package resolver

import (
	"testing"

	"github.com/go-autoresign/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func by(id string) domain.Move { return domain.Move{FEN: "startpos", PlayerID: &id} }

func systemMove() domain.Move { return domain.Move{FEN: "startpos"} }

func TestRedistribute_DeltaPerPlayer(t *testing.T) {
	g := domain.Game{
		WhitePlayers: []string{"w1", "w2"},
		BlackPlayers: []string{"b1"},
		History:      []domain.Move{by("w1"), by("b1"), by("w2"), by("b1"), by("w1"), systemMove(), by("w1"), systemMove()},
	}

	changes := Redistribute(g, domain.SideWhite)
	require.Len(t, changes, 3)

	assert.Equal(t, "w1", changes[0].PlayerID)
	assert.Equal(t, 3, changes[0].Moves)
	assert.InDelta(t, 20.0*3/8, changes[0].Delta, 1e-9)

	assert.Equal(t, "b1", changes[1].PlayerID)
	assert.InDelta(t, -20.0*2/8, changes[1].Delta, 1e-9)

	assert.Equal(t, "w2", changes[2].PlayerID)
	assert.InDelta(t, 20.0*1/8, changes[2].Delta, 1e-9)
}

func TestRedistribute_Conservation(t *testing.T) {
	g := domain.Game{
		WhitePlayers: []string{"w1", "idle"},
		BlackPlayers: []string{"b1", "b2"},
		History:      []domain.Move{by("w1"), by("b1"), by("w1"), by("b2"), systemMove(), by("w1"), by("b1")},
	}

	changes := Redistribute(g, domain.SideBlack)
	partitioned, absSum := 0, 0.0
	for _, c := range changes {
		partitioned += c.Moves
		if c.Delta < 0 {
			absSum -= c.Delta
		} else {
			absSum += c.Delta
		}
		assert.NotEqual(t, "idle", c.PlayerID)
	}
	assert.Equal(t, 6, partitioned)
	assert.InDelta(t, 20.0*6/7, absSum, 1e-9)
}

func TestRedistribute_IgnoresPlayersOffRoster(t *testing.T) {
	g := domain.Game{
		WhitePlayers: []string{"w1"},
		BlackPlayers: []string{"b1"},
		History:      []domain.Move{by("w1"), by("spectator"), by("b1")},
	}
	changes := Redistribute(g, domain.SideWhite)
	require.Len(t, changes, 2)
	assert.InDelta(t, 20.0/3, changes[0].Delta, 1e-9)
	assert.InDelta(t, -20.0/3, changes[1].Delta, 1e-9)
}

func TestRedistribute_EmptyHistory(t *testing.T) {
	g := domain.Game{WhitePlayers: []string{"w1"}, BlackPlayers: []string{"b1"}}
	assert.Empty(t, Redistribute(g, domain.SideBlack))
}
