package inventory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"ronid.ru/shop-bot/internal/common"
)

func TestReserveTakesInInsertionOrder(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()

	s.Add(ctx, "60", []string{"AAA", "BBB", "CCC"})

	taken, err := s.Reserve(ctx, map[string]int{"60": 2})
	require.NoError(t, err)
	require.Len(t, taken["60"], 2)
	require.Equal(t, "AAA", taken["60"][0].Value)
	require.Equal(t, "BBB", taken["60"][1].Value)
	require.Equal(t, 1, s.Available("60"))
	require.Equal(t, "CCC", s.Unused("60")[0].Value)
}

func TestReserveAllOrNothing(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()

	s.Add(ctx, "A", []string{"a1", "a2"})
	s.Add(ctx, "B", []string{"b1"})

	// по метке B не хватает — не трогаем ни один пул
	_, err := s.Reserve(ctx, map[string]int{"A": 2, "B": 2})
	require.ErrorIs(t, err, common.ErrInsufficientInventory)
	require.Equal(t, 2, s.Available("A"))
	require.Equal(t, 1, s.Available("B"))

	taken, err := s.Reserve(ctx, map[string]int{"A": 2, "B": 1})
	require.NoError(t, err)
	require.Len(t, taken["A"], 2)
	require.Len(t, taken["B"], 1)
	require.Equal(t, 0, s.Available("A"))
	require.Equal(t, 0, s.Available("B"))
}

func TestReserveUnknownLabel(t *testing.T) {
	s := NewStore(nil)
	_, err := s.Reserve(context.Background(), map[string]int{"нет": 1})
	require.ErrorIs(t, err, common.ErrInsufficientInventory)
}

func TestConcurrentReserveLastCode(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()
	s.Add(ctx, "60", []string{"единственный"})

	const workers = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	var winners [][]Code

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			taken, err := s.Reserve(ctx, map[string]int{"60": 1})
			if err == nil {
				mu.Lock()
				winners = append(winners, taken["60"])
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// один код — ровно один победитель, и код не выдан дважды
	require.Len(t, winners, 1)
	require.Equal(t, "единственный", winners[0][0].Value)
	require.Equal(t, 0, s.Available("60"))
}

func TestRequeueRestoresAvailability(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()
	s.Add(ctx, "325", []string{"x1", "x2"})

	taken, err := s.Reserve(ctx, map[string]int{"325": 2})
	require.NoError(t, err)
	require.Equal(t, 0, s.Available("325"))

	// активировался только первый, второй возвращается
	s.Requeue(ctx, "325", taken["325"][1:])
	require.Equal(t, 1, s.Available("325"))
	require.Equal(t, "x2", s.Unused("325")[0].Value)
}

func TestDeleteByValue(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()
	s.Add(ctx, "60", []string{"a", "b"})

	require.NoError(t, s.DeleteByValue(ctx, "60", "a"))
	require.Equal(t, 1, s.Available("60"))
	require.ErrorIs(t, s.DeleteByValue(ctx, "60", "a"), common.ErrCodeNotFound)
	require.ErrorIs(t, s.DeleteByValue(ctx, "нет", "a"), common.ErrCodeNotFound)
}

func TestAddAssignsUniqueIDs(t *testing.T) {
	s := NewStore(nil)
	added := s.Add(context.Background(), "60", []string{"a", "b", "c"})

	seen := make(map[string]bool)
	for _, c := range added {
		require.NotEmpty(t, c.ID)
		require.False(t, seen[c.ID])
		seen[c.ID] = true
	}
}
