package auction

import (
	"fmt"
	"sync"
	"testing"

	"github.com/erain9/sealedbid/pkg/core"
	"github.com/erain9/sealedbid/pkg/mechanism"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRound_ConcurrentSubmit(t *testing.T) {
	round := NewRound(core.NewOrderBook[int]())

	const workers, perWorker = 8, 250
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				id := core.Identifier(fmt.Sprintf("w%d-%d", w, i))
				assert.NoError(t, round.Submit(core.NewBid(id, (w*perWorker+i)%97)))
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, workers*perWorker, round.Len())

	res, bids, err := round.Resolve(mechanism.FirstPrice[int]{})
	require.NoError(t, err)
	assert.Equal(t, 96, res.Payment)
	require.Len(t, bids, workers*perWorker)
	for i := 1; i < len(bids); i++ {
		assert.GreaterOrEqual(t, bids[i-1].Amount, bids[i].Amount)
	}
}

func TestRound_ClosedAfterResolve(t *testing.T) {
	round := NewRound(core.NewOrderBook[int]())
	require.NoError(t, round.Submit(core.NewBid[int]("A", 1)))

	_, _, err := round.Resolve(mechanism.FirstPrice[int]{})
	require.NoError(t, err)

	assert.ErrorIs(t, round.Submit(core.NewBid[int]("B", 2)), ErrRoundClosed)
	_, _, err = round.Resolve(mechanism.FirstPrice[int]{})
	assert.ErrorIs(t, err, ErrRoundClosed)
	assert.Equal(t, 1, round.Len())
}

func TestRound_EmptyResolveClosesRound(t *testing.T) {
	round := NewRound(core.NewOrderBook[int]())

	_, _, err := round.Resolve(mechanism.SecondPrice[int]())
	assert.ErrorIs(t, err, core.ErrEmptyBook)
	assert.ErrorIs(t, round.Submit(core.NewBid[int]("A", 1)), ErrRoundClosed)
}
