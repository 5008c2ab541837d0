package client

import (
	"sync"

	"go.uber.org/zap"

	"user-search/internal/domain"
)

// Сообщения для пользователя
const (
	MsgNoResults  = "No results found."
	MsgFetchError = "Error fetching data"
)

// View - состояние экрана поиска, которым управляет Dispatcher
type View interface {
	Reset()
	SetLoading(loading bool)
	ShowResults(users []domain.UserRecord)
	ShowNoResults(message string)
	ShowError(message string)
}

// Dispatcher отправляет по одному вызову на отправку формы. Новая отправка отменяет
// предыдущий вызов; результат применяется к View только если токен вызова все еще текущий.
type Dispatcher struct {
	mu        sync.Mutex
	current   *CallToken
	transport Searcher
	view      View
	log       *zap.Logger

	// afterRun вызывается после обработки результата вызова (для тестов)
	afterRun func(tok *CallToken)
}

// NewDispatcher создает диспетчер
func NewDispatcher(transport Searcher, view View, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		transport: transport,
		view:      view,
		log:       log,
	}
}

// Submit - сбрасывает экран, отменяет текущий вызов и запускает новый
func (d *Dispatcher) Submit(query domain.SearchQuery) *CallToken {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.view.Reset()

	if d.current != nil {
		prev := d.current
		if prev.finish(StateCanceled) {
			d.log.Debug("request canceled due to new request", zap.String("call_id", prev.id))
		}
	}

	tok := newCallToken(query)
	d.current = tok
	d.view.SetLoading(true)

	go d.run(tok)

	return tok
}

// Cancel - отменяет текущий вызов без нового. false если вызова нет.
func (d *Dispatcher) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.current == nil {
		return false
	}
	d.current.finish(StateCanceled)
	d.log.Debug("request canceled", zap.String("call_id", d.current.id))
	d.current = nil
	d.view.SetLoading(false)
	return true
}

// Current - текущий вызов или nil
func (d *Dispatcher) Current() *CallToken {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

func (d *Dispatcher) run(tok *CallToken) {
	if d.afterRun != nil {
		defer d.afterRun(tok)
	}

	users, err := d.transport.Search(tok.ctx, tok.query)

	d.mu.Lock()
	defer d.mu.Unlock()

	// токен вытеснен или отменен: его результат экран не меняет
	if d.current != tok {
		tok.finish(StateCanceled)
		return
	}

	state := StateResolved
	switch {
	case err != nil:
		state = StateFailed
		d.log.Warn("search request failed", zap.String("call_id", tok.id), zap.Error(err))
		d.view.ShowError(MsgFetchError)
	case len(users) == 0:
		d.view.ShowNoResults(MsgNoResults)
	default:
		d.view.ShowResults(users)
	}

	d.current = nil
	d.view.SetLoading(false)
	tok.finish(state)
}
