package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"user-search/internal/domain"
)

// Finder - то, что Gate вызывает после периода тишины
type Finder interface {
	Find(ctx context.Context, query domain.SearchQuery) ([]domain.UserRecord, error)
}

// stopper - отменяемый отложенный вызов, *time.Timer подходит
type stopper interface {
	Stop() bool
}

type afterFunc func(d time.Duration, f func()) stopper

func timeAfterFunc(d time.Duration, f func()) stopper {
	return time.AfterFunc(d, f)
}

type result struct {
	users []domain.UserRecord
	err   error
}

// Pending - запланированный поиск одного клиента
type Pending struct {
	identity string
	query    domain.SearchQuery
	timer    stopper
	done     chan result
}

// Wait - ждет результат поиска. Вытесненный запрос получает domain.ErrSuperseded.
// Истечение ctx не снимает таймер: поиск все равно выполнится.
func (p *Pending) Wait(ctx context.Context) ([]domain.UserRecord, error) {
	select {
	case r := <-p.done:
		return r.users, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Query - запрос, с которым запланирован поиск
func (p *Pending) Query() domain.SearchQuery {
	return p.query
}

// deliver вызывается ровно один раз тем, кто удалил запись из реестра
func (p *Pending) deliver(users []domain.UserRecord, err error) {
	p.done <- result{users: users, err: err}
}

// Gate - debounce по клиенту: пачка запросов от одного клиента схлопывается
// в один поиск с данными последнего запроса после периода тишины.
type Gate struct {
	mu      sync.Mutex
	pending map[string]*Pending // ключ - идентификатор клиента (IP)
	closed  bool

	finder        Finder
	delay         time.Duration
	lookupTimeout time.Duration
	afterFunc     afterFunc
	log           *zap.Logger
	metrics       *Metrics
}

// GateOption - настройка Gate
type GateOption func(*Gate)

// WithLookupTimeout ограничивает время одного поиска после срабатывания таймера
func WithLookupTimeout(d time.Duration) GateOption {
	return func(g *Gate) { g.lookupTimeout = d }
}

// WithGateLogger задает логгер
func WithGateLogger(log *zap.Logger) GateOption {
	return func(g *Gate) { g.log = log }
}

// WithGateMetrics задает метрики
func WithGateMetrics(m *Metrics) GateOption {
	return func(g *Gate) { g.metrics = m }
}

// NewGate создает реестр таймеров с периодом тишины delay
func NewGate(finder Finder, delay time.Duration, opts ...GateOption) *Gate {
	g := &Gate{
		pending:   make(map[string]*Pending),
		finder:    finder,
		delay:     delay,
		afterFunc: timeAfterFunc,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Schedule - планирует поиск для клиента с периодом тишины по умолчанию
func (g *Gate) Schedule(identity string, query domain.SearchQuery) *Pending {
	return g.ScheduleAfter(identity, query, g.delay)
}

// ScheduleAfter - отменяет незапущенный поиск клиента (если есть) и планирует новый через delay.
// Поиск, который уже выполняется, не трогается и доставит результат своему запросу.
func (g *Gate) ScheduleAfter(identity string, query domain.SearchQuery, delay time.Duration) *Pending {
	p := &Pending{
		identity: identity,
		query:    query,
		done:     make(chan result, 1),
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		p.deliver(nil, domain.ErrShuttingDown)
		return p
	}

	prev, superseded := g.pending[identity]
	if superseded {
		delete(g.pending, identity)
		prev.timer.Stop()
		prev.deliver(nil, domain.ErrSuperseded)
		g.log.Debug("pending search superseded",
			zap.String("client", identity),
			zap.String("email", prev.query.Email),
		)
	}

	g.pending[identity] = p
	p.timer = g.afterFunc(delay, func() { g.fire(p) })

	g.metrics.observeSchedule(len(g.pending), superseded)
	g.log.Debug("search scheduled",
		zap.String("client", identity),
		zap.Duration("delay", delay),
	)

	return p
}

// fire - срабатывание таймера. Выполняется только если p все еще текущая запись клиента,
// поэтому отмена и срабатывание не могут оба вступить в силу.
func (g *Gate) fire(p *Pending) {
	g.mu.Lock()
	if g.pending[p.identity] != p {
		g.mu.Unlock()
		return
	}
	delete(g.pending, p.identity)
	left := len(g.pending)
	g.mu.Unlock()

	g.metrics.observeFire(left)

	ctx := context.Background()
	if g.lookupTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.lookupTimeout)
		defer cancel()
	}

	users, err := g.finder.Find(ctx, p.query)
	if err != nil {
		g.log.Warn("debounced search failed",
			zap.String("client", p.identity),
			zap.Error(err),
		)
	}
	p.deliver(users, err)
}

// PendingCount - число клиентов с незапущенным таймером
func (g *Gate) PendingCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pending)
}

// Close - останавливает все незапущенные таймеры, их запросы получают domain.ErrShuttingDown.
// Уже выполняющиеся поиски доводятся до конца.
func (g *Gate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return
	}
	g.closed = true

	for identity, p := range g.pending {
		delete(g.pending, identity)
		p.timer.Stop()
		p.deliver(nil, domain.ErrShuttingDown)
	}
	g.metrics.setPending(0)
}
