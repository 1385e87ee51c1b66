package network

import (
	"sync"

	"github.com/MKhiriev/go-biz-sync/internal/logger"
)

// changesBuffer is the capacity of the channel returned by Changes.
const changesBuffer = 16

type reconnectHandler struct {
	id uint64
	fn func()
}

// Monitor holds the connectivity state of one device. The zero value is not
// usable; construct it with NewMonitor.
type Monitor struct {
	mu       sync.Mutex
	online   bool
	nextID   uint64
	handlers []reconnectHandler

	changes chan bool

	logger *logger.Logger
}

// NewMonitor returns a Monitor starting in the given state.
func NewMonitor(initialOnline bool, log *logger.Logger) *Monitor {
	return &Monitor{
		online:  initialOnline,
		changes: make(chan bool, changesBuffer),
		logger:  log,
	}
}

// IsOnline returns the last state reported to SetOnline.
func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// SetOnline records a connectivity signal. Repeating the current state is a
// no-op. Going from offline to online runs every reconnect handler, in
// registration order, in the caller's goroutine after the state lock is
// released.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online

	var handlers []reconnectHandler
	if online {
		handlers = make([]reconnectHandler, len(m.handlers))
		copy(handlers, m.handlers)
	}
	m.mu.Unlock()

	m.logger.Info().
		Str("func", "Monitor.SetOnline").
		Bool("online", online).
		Msg("connectivity changed")

	select {
	case m.changes <- online:
	default:
		// наблюдатель не успевает читать, переход не блокирует монитор
	}

	for _, h := range handlers {
		m.runHandler(h)
	}
}

// OnReconnect registers fn to run on every offline to online transition.
// The returned function unregisters it and may be called more than once.
func (m *Monitor) OnReconnect(fn func()) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	id := m.nextID
	m.handlers = append(m.handlers, reconnectHandler{id: id, fn: fn})

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, h := range m.handlers {
			if h.id == id {
				m.handlers = append(m.handlers[:i:i], m.handlers[i+1:]...)
				return
			}
		}
	}
}

// Changes delivers every transition. Transitions are dropped while the
// buffer is full.
func (m *Monitor) Changes() <-chan bool {
	return m.changes
}

// runHandler isolates handlers from each other: a panicking handler is
// logged and the remaining ones still run.
func (m *Monitor) runHandler(h reconnectHandler) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error().
				Str("func", "Monitor.runHandler").
				Uint64("handler_id", h.id).
				Interface("panic", r).
				Msg("reconnect handler panicked")
		}
	}()
	h.fn()
}
