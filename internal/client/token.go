package client

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"

	"user-search/internal/domain"
)

// State - состояние вызова
type State int32

const (
	StatePending State = iota
	StateResolved
	StateCanceled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateResolved:
		return "resolved"
	case StateCanceled:
		return "canceled"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// CallToken - идентификатор текущего вызова Dispatcher.
// Результат вызова применяется только пока токен текущий.
type CallToken struct {
	id     string
	query  domain.SearchQuery
	ctx    context.Context
	cancel context.CancelFunc
	state  atomic.Int32
	done   chan struct{}
}

func newCallToken(query domain.SearchQuery) *CallToken {
	ctx, cancel := context.WithCancel(context.Background())
	return &CallToken{
		id:     uuid.NewString(),
		query:  query,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// ID - уникальный идентификатор вызова
func (t *CallToken) ID() string { return t.id }

// Query - запрос вызова
func (t *CallToken) Query() domain.SearchQuery { return t.query }

// State - текущее состояние
func (t *CallToken) State() State { return State(t.state.Load()) }

// Done закрывается при переходе в конечное состояние
func (t *CallToken) Done() <-chan struct{} { return t.done }

// finish - переход из Pending в конечное состояние, срабатывает один раз
func (t *CallToken) finish(s State) bool {
	if !t.state.CompareAndSwap(int32(StatePending), int32(s)) {
		return false
	}
	t.cancel()
	close(t.done)
	return true
}
