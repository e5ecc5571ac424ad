package testutil

import (
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeterministicClock_Sequence(t *testing.T) {
	tests := []struct {
		name  string
		clock *DeterministicClock
		want  []int64
	}{
		{"fresh", NewDeterministicClock(), []int64{1, 2, 3}},
		{"resumed", StartingAt(41), []int64{42, 43}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := tt.clock.Current()
			assert.Equal(t, tt.want[0]-1, start)
			for _, want := range tt.want {
				assert.Equal(t, want, tt.clock.Next())
				assert.Equal(t, want, tt.clock.Current())
			}
		})
	}
}

func TestDeterministicClock_Reset(t *testing.T) {
	clock := StartingAt(7)
	clock.Next()

	clock.Reset()
	assert.Zero(t, clock.Current())
	assert.Equal(t, int64(1), clock.Next())
}

// Concurrent callers each get distinct values and together cover 1..n.
func TestDeterministicClock_Concurrent(t *testing.T) {
	const workers, perWorker = 50, 200
	clock := NewDeterministicClock()

	var (
		mu  sync.Mutex
		got []int64
		wg  sync.WaitGroup
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]int64, 0, perWorker)
			for range perWorker {
				local = append(local, clock.Next())
			}
			mu.Lock()
			got = append(got, local...)
			mu.Unlock()
		}()
	}
	wg.Wait()

	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	for i, v := range got {
		if v != int64(i+1) {
			t.Fatalf("value %d at sorted position %d, want %d", v, i, i+1)
		}
	}
	assert.Len(t, got, workers*perWorker)
}
