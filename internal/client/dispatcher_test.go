package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"user-search/internal/domain"
)

type reply struct {
	users []domain.UserRecord
	err   error
}

type pendingCall struct {
	query domain.SearchQuery
	ctx   context.Context
	reply chan reply
}

// fakeTransport отдает вызовы тесту и ждет ответа от него.
// С ignoreCancel вызов не прерывается отменой ctx, как медленный транспорт.
type fakeTransport struct {
	calls        chan *pendingCall
	ignoreCancel bool
}

func newFakeTransport(ignoreCancel bool) *fakeTransport {
	return &fakeTransport{calls: make(chan *pendingCall, 16), ignoreCancel: ignoreCancel}
}

func (f *fakeTransport) Search(ctx context.Context, q domain.SearchQuery) ([]domain.UserRecord, error) {
	c := &pendingCall{query: q, ctx: ctx, reply: make(chan reply, 1)}
	f.calls <- c
	if f.ignoreCancel {
		r := <-c.reply
		return r.users, r.err
	}
	select {
	case r := <-c.reply:
		return r.users, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *fakeTransport) next(t *testing.T) *pendingCall {
	t.Helper()
	select {
	case c := <-f.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("no call issued")
		return nil
	}
}

type recordingView struct {
	mu      sync.Mutex
	events  []string
	loading bool
	results []domain.UserRecord
	message string
	errMsg  string
}

func (v *recordingView) record(e string) {
	v.events = append(v.events, e)
}

func (v *recordingView) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.results, v.message, v.errMsg = nil, "", ""
	v.record("reset")
}

func (v *recordingView) SetLoading(loading bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.loading = loading
	v.record(fmt.Sprintf("loading:%t", loading))
}

func (v *recordingView) ShowResults(users []domain.UserRecord) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.results = users
	v.record(fmt.Sprintf("results:%d", len(users)))
}

func (v *recordingView) ShowNoResults(message string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.message = message
	v.record("no-results")
}

func (v *recordingView) ShowError(message string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.errMsg = message
	v.record("error")
}

func (v *recordingView) snapshot() recordingView {
	v.mu.Lock()
	defer v.mu.Unlock()
	return recordingView{
		events:  append([]string(nil), v.events...),
		loading: v.loading,
		results: v.results,
		message: v.message,
		errMsg:  v.errMsg,
	}
}

func newTestDispatcher(transport Searcher) (*Dispatcher, *recordingView, chan *CallToken) {
	view := &recordingView{}
	d := NewDispatcher(transport, view, nil)
	ran := make(chan *CallToken, 16)
	d.afterRun = func(tok *CallToken) { ran <- tok }
	return d, view, ran
}

func waitRun(t *testing.T, ran chan *CallToken, want *CallToken) {
	t.Helper()
	select {
	case got := <-ran:
		require.Same(t, want, got)
	case <-time.After(2 * time.Second):
		t.Fatal("call did not finish")
	}
}

var (
	q1 = domain.SearchQuery{Email: "a@x.com"}
	q2 = domain.SearchQuery{Email: "b@x.com"}
)

func TestDispatcher_Success(t *testing.T) {
	transport := newFakeTransport(false)
	d, view, ran := newTestDispatcher(transport)

	tok := d.Submit(q1)
	assert.Same(t, tok, d.Current())
	assert.Equal(t, StatePending, tok.State())
	assert.NotEmpty(t, tok.ID())
	assert.True(t, view.snapshot().loading)

	call := transport.next(t)
	assert.Equal(t, q1, call.query)
	users := []domain.UserRecord{{Email: "a@x.com", Number: "123456"}}
	call.reply <- reply{users: users}
	waitRun(t, ran, tok)

	got := view.snapshot()
	assert.Equal(t, StateResolved, tok.State())
	assert.Nil(t, d.Current())
	assert.False(t, got.loading)
	assert.Equal(t, users, got.results)
	assert.Equal(t, []string{"reset", "loading:true", "results:1", "loading:false"}, got.events)
}

func TestDispatcher_NoResults(t *testing.T) {
	transport := newFakeTransport(false)
	d, view, ran := newTestDispatcher(transport)

	tok := d.Submit(q1)
	transport.next(t).reply <- reply{users: []domain.UserRecord{}}
	waitRun(t, ran, tok)

	got := view.snapshot()
	assert.Equal(t, StateResolved, tok.State())
	assert.Equal(t, MsgNoResults, got.message)
	assert.Empty(t, got.errMsg)
	assert.False(t, got.loading)
}

func TestDispatcher_Failure(t *testing.T) {
	transport := newFakeTransport(false)
	d, view, ran := newTestDispatcher(transport)

	tok := d.Submit(q1)
	transport.next(t).reply <- reply{err: fmt.Errorf("%w: status 500: Error reading data file", ErrRequestFailed)}
	waitRun(t, ran, tok)

	got := view.snapshot()
	assert.Equal(t, StateFailed, tok.State())
	assert.Equal(t, MsgFetchError, got.errMsg)
	assert.False(t, got.loading)
	assert.Nil(t, d.Current())
}

func TestDispatcher_NewSubmitCancelsPrevious(t *testing.T) {
	transport := newFakeTransport(false)
	d, view, ran := newTestDispatcher(transport)

	tok1 := d.Submit(q1)
	call1 := transport.next(t)
	tok2 := d.Submit(q2)
	call2 := transport.next(t)

	assert.Equal(t, StateCanceled, tok1.State())
	assert.ErrorIs(t, call1.ctx.Err(), context.Canceled)
	assert.NoError(t, call2.ctx.Err())
	assert.Same(t, tok2, d.Current())
	select {
	case <-tok1.Done():
	default:
		t.Fatal("canceled token should be done")
	}

	waitRun(t, ran, tok1)
	assert.True(t, view.snapshot().loading, "stale cancellation must not clear the newer call's loading state")

	users := []domain.UserRecord{{Email: "b@x.com", Number: "654321"}}
	call2.reply <- reply{users: users}
	waitRun(t, ran, tok2)

	got := view.snapshot()
	assert.Equal(t, StateResolved, tok2.State())
	assert.Equal(t, users, got.results)
	assert.False(t, got.loading)
	assert.Equal(t, []string{"reset", "loading:true", "reset", "loading:true", "results:1", "loading:false"}, got.events)
}

func TestDispatcher_StaleResolutionIgnoredWhenTransportIgnoresCancel(t *testing.T) {
	transport := newFakeTransport(true)
	d, view, ran := newTestDispatcher(transport)

	tok1 := d.Submit(q1)
	call1 := transport.next(t)
	tok2 := d.Submit(q2)
	call2 := transport.next(t)

	// старый ответ приходит после новой отправки
	call1.reply <- reply{users: []domain.UserRecord{{Email: "a@x.com", Number: "123456"}}}
	waitRun(t, ran, tok1)

	got := view.snapshot()
	assert.Equal(t, StateCanceled, tok1.State())
	assert.Nil(t, got.results)
	assert.True(t, got.loading)
	assert.Same(t, tok2, d.Current())

	call2.reply <- reply{err: errors.New("connection reset")}
	waitRun(t, ran, tok2)

	got = view.snapshot()
	assert.Equal(t, StateFailed, tok2.State())
	assert.Equal(t, MsgFetchError, got.errMsg)
	assert.Nil(t, got.results)
	assert.False(t, got.loading)
}

func TestDispatcher_AtMostOnePending(t *testing.T) {
	transport := newFakeTransport(false)
	d, _, _ := newTestDispatcher(transport)

	var tokens []*CallToken
	for i := 0; i < 5; i++ {
		tokens = append(tokens, d.Submit(domain.SearchQuery{Email: fmt.Sprintf("u%d@x.com", i)}))
		transport.next(t)

		pending := 0
		for _, tok := range tokens {
			if tok.State() == StatePending {
				pending++
			}
		}
		assert.Equal(t, 1, pending)
	}
}

func TestDispatcher_Cancel(t *testing.T) {
	transport := newFakeTransport(false)
	d, view, ran := newTestDispatcher(transport)

	assert.False(t, d.Cancel())

	tok := d.Submit(q1)
	call := transport.next(t)
	assert.True(t, d.Cancel())

	assert.Equal(t, StateCanceled, tok.State())
	assert.ErrorIs(t, call.ctx.Err(), context.Canceled)
	assert.Nil(t, d.Current())
	assert.False(t, view.snapshot().loading)

	waitRun(t, ran, tok)
	got := view.snapshot()
	assert.Empty(t, got.errMsg)
	assert.Equal(t, []string{"reset", "loading:true", "loading:false"}, got.events)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "pending", StatePending.String())
	assert.Equal(t, "resolved", StateResolved.String())
	assert.Equal(t, "canceled", StateCanceled.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "unknown", State(42).String())
}
