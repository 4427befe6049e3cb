package trackers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codegangsta/zcommand/internal/zcommand"
)

type nopClient struct{}

func (nopClient) Command(ctx context.Context, command string) (*zcommand.Result, error) {
	return &zcommand.Result{}, nil
}

func TestDispatcherPerChat(t *testing.T) {
	created := map[int64]int{}
	m := NewManager(func(chatID int64) *zcommand.Dispatcher {
		created[chatID]++
		return zcommand.New(nopClient{}, zcommand.UI{}, nil)
	})

	a := m.Dispatcher(1)
	assert.Same(t, a, m.Dispatcher(1))
	assert.NotSame(t, a, m.Dispatcher(2))
	assert.Equal(t, map[int64]int{1: 1, 2: 1}, created)

	a.Process(context.Background(), "/ping")
	m.Wait()
}

func TestUndoLifecycle(t *testing.T) {
	m := NewManager(nil)

	ran := 0
	token := m.AddUndo(5, func() { ran++ })
	require.Len(t, token, 8)
	m.SetUndoMessage(5, token, 99)

	assert.Nil(t, m.TakeUndo(6, token), "other chat")

	p := m.TakeUndo(5, token)
	require.NotNil(t, p)
	assert.Equal(t, int64(99), p.MessageID)
	p.Undo()
	assert.Equal(t, 1, ran)

	assert.Nil(t, m.TakeUndo(5, token), "taken once")
}

func TestUndoBounded(t *testing.T) {
	m := NewManager(nil)

	first := m.AddUndo(1, func() {})
	var last string
	for i := 0; i < maxUndo; i++ {
		last = m.AddUndo(1, func() {})
	}

	assert.Nil(t, m.TakeUndo(1, first), "oldest evicted")
	assert.NotNil(t, m.TakeUndo(1, last))
}

func TestClearUndo(t *testing.T) {
	m := NewManager(nil)
	token := m.AddUndo(1, func() {})
	m.ClearUndo(1)
	assert.Nil(t, m.TakeUndo(1, token))
}
