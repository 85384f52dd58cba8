package job

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDrainRunsFIFO(t *testing.T) {
	q := NewQueue(nil)
	var order []int
	for i := 0; i < 3; i++ {
		i := i
		q.Enqueue(Task{Name: "task", Run: func() { order = append(order, i) }})
	}
	q.Drain()
	require.Equal(t, []int{0, 1, 2}, order)
	require.Equal(t, 0, q.Len())
}

func TestDrainRunsJobsEnqueuedDuringDrain(t *testing.T) {
	q := NewQueue(nil)
	var order []string
	q.Enqueue(Task{Name: "first", Run: func() {
		order = append(order, "first")
		q.Enqueue(Task{Name: "nested", Run: func() {
			order = append(order, "nested")
		}})
	}})
	q.Drain()
	require.Equal(t, []string{"first", "nested"}, order)
}

func TestDrainSkipsPanickingTaskWithoutStopping(t *testing.T) {
	q := NewQueue(nil)
	var ran []string
	q.Enqueue(Task{Name: "boom", Run: func() {
		ran = append(ran, "boom")
		panic("task failure")
	}})
	q.Enqueue(Task{Name: "after", Run: func() {
		ran = append(ran, "after")
	}})
	require.NotPanics(t, func() { q.Drain() })
	require.Equal(t, []string{"boom", "after"}, ran)
}

func TestLenReflectsPendingCount(t *testing.T) {
	q := NewQueue(nil)
	require.Equal(t, 0, q.Len())
	q.Enqueue(Task{Name: "a", Run: func() {}})
	q.Enqueue(Task{Name: "b", Run: func() {}})
	require.Equal(t, 2, q.Len())
}
