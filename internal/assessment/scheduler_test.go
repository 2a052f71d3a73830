package assessment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualScheduler_RunsInDueOrder(t *testing.T) {
	s := NewManualScheduler()
	var order []string

	s.AfterFunc(3*time.Second, func() { order = append(order, "c") })
	s.AfterFunc(time.Second, func() { order = append(order, "a") })
	s.AfterFunc(2*time.Second, func() { order = append(order, "b") })

	s.Advance(2 * time.Second)
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, 1, s.Pending())

	s.Advance(time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Zero(t, s.Pending())
}

func TestManualScheduler_Stop(t *testing.T) {
	s := NewManualScheduler()
	fired := false
	task := s.AfterFunc(time.Second, func() { fired = true })

	assert.True(t, task.Stop())
	assert.False(t, task.Stop())
	s.Advance(time.Minute)
	assert.False(t, fired)
}

func TestManualScheduler_ChainedTasksInsideWindow(t *testing.T) {
	s := NewManualScheduler()
	count := 0
	s.AfterFunc(time.Second, func() {
		count++
		s.AfterFunc(time.Second, func() { count++ })
	})

	s.Advance(1500 * time.Millisecond)
	assert.Equal(t, 1, count)
	s.Advance(500 * time.Millisecond)
	assert.Equal(t, 2, count)
}
