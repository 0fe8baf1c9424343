// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remora-chain/remora/collator"
	"github.com/remora-chain/remora/eventdb"
	"github.com/remora-chain/remora/remora"
	"github.com/remora-chain/remora/test/datagen"
)

func newArchive(t *testing.T) *eventdb.EventDB {
	db, err := eventdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func archiveBlocks(t *testing.T, db *eventdb.EventDB, blocks int) {
	c1 := remora.BytesToAddress([]byte("c1"))
	for i := 0; i < blocks; i++ {
		ctx := eventdb.BlockContext{
			Number:  uint32(i),
			Time:    1000 + uint64(i)*10,
			Session: uint64(i / 10),
		}
		events := []collator.Event{
			collator.RewardPaid{Author: c1, Amount: big.NewInt(int64(i + 1))},
		}
		if i%10 == 0 {
			events = append(events,
				collator.CandidateAdded{Addr: c1, Deposit: big.NewInt(100)},
				collator.SessionAssembled{Index: uint64(i / 10), Authorities: 3, Evicted: 1},
			)
		}
		require.NoError(t, db.Prepare(ctx).Insert(events).Commit())
	}
}

func TestEventDBSelections(t *testing.T) {
	db := newArchive(t)
	archiveBlocks(t, db, 100)
	c1 := remora.BytesToAddress([]byte("c1"))

	all, err := db.FilterSelections(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, all, 20)

	named, err := db.FilterSelections(context.Background(), &eventdb.SelectionFilter{
		Names: []string{"candidate-added"},
	})
	require.NoError(t, err)
	require.Len(t, named, 10)
	assert.Equal(t, c1, *named[0].Addr)
	assert.Equal(t, big.NewInt(100), named[0].Amount)

	ranged, err := db.FilterSelections(context.Background(), &eventdb.SelectionFilter{
		Range: &eventdb.Range{Unit: eventdb.Block, From: 0, To: 50},
		Names: []string{"session-assembled"},
	})
	require.NoError(t, err)
	assert.Len(t, ranged, 6)

	bySession, err := db.FilterSelections(context.Background(), &eventdb.SelectionFilter{
		Range: &eventdb.Range{Unit: eventdb.Session, From: 3, To: 3},
	})
	require.NoError(t, err)
	assert.Len(t, bySession, 2)

	paged, err := db.FilterSelections(context.Background(), &eventdb.SelectionFilter{
		Names:   []string{"candidate-added"},
		Order:   eventdb.DESC,
		Options: &eventdb.Options{Offset: 0, Limit: 3},
	})
	require.NoError(t, err)
	require.Len(t, paged, 3)
	assert.Equal(t, uint32(90), paged[0].BlockNumber)
}

func TestEventDBRewards(t *testing.T) {
	db := newArchive(t)
	archiveBlocks(t, db, 100)
	c1 := remora.BytesToAddress([]byte("c1"))

	rewards, err := db.FilterRewards(context.Background(), &eventdb.RewardFilter{
		Author: &c1,
		Range:  &eventdb.Range{Unit: eventdb.Block, From: 0, To: 9},
	})
	require.NoError(t, err)
	require.Len(t, rewards, 10)
	assert.Equal(t, big.NewInt(1), rewards[0].Amount)
	assert.Equal(t, c1, rewards[0].Author)

	other := remora.BytesToAddress([]byte("other"))
	none, err := db.FilterRewards(context.Background(), &eventdb.RewardFilter{Author: &other})
	require.NoError(t, err)
	assert.Empty(t, none)

	latest, err := db.FilterRewards(context.Background(), &eventdb.RewardFilter{
		Order:   eventdb.DESC,
		Options: &eventdb.Options{Offset: 0, Limit: 1},
	})
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, big.NewInt(100), latest[0].Amount)
}

func TestEventDBManyAuthors(t *testing.T) {
	db := newArchive(t)

	authors := make([]remora.Address, 8)
	for i := range authors {
		authors[i] = datagen.RandAddress()
	}

	perAuthor := make(map[remora.Address]int)
	for i := 0; i < 200; i++ {
		author := authors[datagen.RandIntN(len(authors))]
		perAuthor[author]++
		ctx := eventdb.BlockContext{
			Number:  uint32(i),
			Time:    1000 + uint64(i)*10,
			Session: uint64(i / 20),
		}
		events := []collator.Event{
			collator.RewardPaid{Author: author, Amount: datagen.RandBalance()},
		}
		require.NoError(t, db.Prepare(ctx).Insert(events).Commit())
	}

	for _, author := range authors {
		author := author
		rewards, err := db.FilterRewards(context.Background(), &eventdb.RewardFilter{Author: &author})
		require.NoError(t, err)
		assert.Len(t, rewards, perAuthor[author])
	}

	all, err := db.FilterRewards(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, all, 200)
}

func TestEventDBTruncate(t *testing.T) {
	db := newArchive(t)
	archiveBlocks(t, db, 30)

	require.NoError(t, db.Truncate(20))
	rewards, err := db.FilterRewards(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, rewards, 20)

	selections, err := db.FilterSelections(context.Background(), nil)
	require.NoError(t, err)
	for _, s := range selections {
		assert.Less(t, s.BlockNumber, uint32(20))
	}
}
