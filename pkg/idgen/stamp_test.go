package idgen

import (
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

// MockClock for deterministic testing
type MockClock struct {
	CurrentTime int64
}

func (m *MockClock) Now() int64 {
	return m.CurrentTime
}

func TestStamper_Next(t *testing.T) {
	clock := &MockClock{CurrentTime: 1700000000000}
	st := NewStamper(clock)

	s1 := st.Next()
	s2 := st.Next()

	assert.Equal(t, int64(1700000000000), s1)
	assert.Equal(t, int64(1700000000001), s2)

	clock.CurrentTime = 1700000000500
	assert.Equal(t, int64(1700000000500), st.Next())
}

func TestStamper_ClockMovedBack(t *testing.T) {
	clock := &MockClock{CurrentTime: 2000}
	st := NewStamper(clock)

	_ = st.Next()
	clock.CurrentTime = 1000

	assert.Equal(t, int64(2001), st.Next())
}

func TestStamper_NilClockUsesSystemTime(t *testing.T) {
	before := time.Now().UnixMilli()
	got := NewStamper(nil).Next()
	assert.GreaterOrEqual(t, got, before)
}

func TestStamper_Concurrency(t *testing.T) {
	st := NewStamper(&SystemClock{})
	numGoroutines := 20
	numStamps := 200
	stamps := make(chan int64, numGoroutines*numStamps)

	for i := 0; i < numGoroutines; i++ {
		go func() {
			for j := 0; j < numStamps; j++ {
				stamps <- st.Next()
			}
		}()
	}

	seen := make(map[int64]bool)
	for i := 0; i < numGoroutines*numStamps; i++ {
		select {
		case s := <-stamps:
			if seen[s] {
				t.Errorf("Duplicate stamp generated: %d", s)
			}
			seen[s] = true
		case <-time.After(5 * time.Second):
			t.Fatalf("Timeout waiting for stamps")
		}
	}
}

func TestRedisClock_FallsBackWhenUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer func() { _ = client.Close() }()

	before := time.Now().UnixMilli()
	got := NewRedisClock(client).Now()
	assert.GreaterOrEqual(t, got, before)
	assert.LessOrEqual(t, got, time.Now().UnixMilli())
}
