package channel

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/taskgate/taskgate/protocol"
)

// Handler consumes a message delivered to the backend side of the channel.
type Handler func(ctx context.Context, message *protocol.Message)

// Config controls per-connection delivery buffering.
type Config struct {
	// Buffer is the outbound queue depth per frontend connection. A full
	// buffer drops the message: delivery is at-most-once by contract.
	Buffer int
}

// DefaultConfig returns the standard channel configuration.
func DefaultConfig() Config {
	return Config{Buffer: 64}
}

// Service is the bidirectional typed-message transport between the backend
// and N frontend connections. Sends from one connection arrive in order;
// sends from different connections interleave arbitrarily. A message that is
// structurally identical to the immediately preceding message in the same
// direction is coalesced away - an optimization against UI churn, never a
// reliability guarantee.
type Service struct {
	config Config

	mu       sync.RWMutex
	conns    map[int]*Conn
	handlers map[int]Handler
	nextID   int
	closed   bool

	inboundMu    sync.Mutex
	lastInbound  *protocol.Message
	outboundMu   sync.Mutex
	lastOutbound *protocol.Message
}

// New creates a channel service.
func New(config Config) *Service {
	if config.Buffer <= 0 {
		config.Buffer = DefaultConfig().Buffer
	}
	return &Service{
		config:   config,
		conns:    make(map[int]*Conn),
		handlers: make(map[int]Handler),
	}
}

// OnMessage registers a backend handler for frontend-originated messages and
// returns its unsubscribe function.
func (s *Service) OnMessage(handler Handler) func() {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.handlers[id] = handler
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.handlers, id)
		s.mu.Unlock()
	}
}

// Connect attaches a new frontend connection.
func (s *Service) Connect() *Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	conn := &Conn{
		id:      s.nextID,
		service: s,
		inbox:   make(chan *protocol.Message, s.config.Buffer),
	}
	if s.closed {
		close(conn.inbox)
		conn.closed = true
		return conn
	}
	s.conns[conn.id] = conn
	return conn
}

// Broadcast delivers a message to every currently connected frontend. A
// connection whose inbox is full misses the message.
func (s *Service) Broadcast(ctx context.Context, message *protocol.Message) error {
	if message == nil {
		return fmt.Errorf("message cannot be nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.outboundMu.Lock()
	if message.Equal(s.lastOutbound) {
		s.outboundMu.Unlock()
		return nil
	}
	s.lastOutbound = message
	s.outboundMu.Unlock()

	s.mu.RLock()
	conns := make([]*Conn, 0, len(s.conns))
	for _, conn := range s.conns {
		conns = append(conns, conn)
	}
	s.mu.RUnlock()

	for _, conn := range conns {
		select {
		case conn.inbox <- message:
		default:
			log.Printf("channel: connection %d inbox full, dropping %s", conn.id, message.Type)
		}
	}
	return nil
}

// ConnCount returns the number of attached frontend connections.
func (s *Service) ConnCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conns)
}

// Close detaches every connection.
func (s *Service) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	conns := s.conns
	s.conns = map[int]*Conn{}
	s.mu.Unlock()
	for _, conn := range conns {
		conn.shutdown()
	}
}

func (s *Service) dispatch(ctx context.Context, message *protocol.Message) {
	s.inboundMu.Lock()
	if message.Equal(s.lastInbound) {
		s.inboundMu.Unlock()
		return
	}
	s.lastInbound = message
	s.inboundMu.Unlock()

	s.mu.RLock()
	handlers := make([]Handler, 0, len(s.handlers))
	for _, handler := range s.handlers {
		handlers = append(handlers, handler)
	}
	s.mu.RUnlock()

	for _, handler := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("channel: handler panicked on %s: %v", message.Type, r)
				}
			}()
			handler(ctx, message)
		}()
	}
}

// Conn is one frontend context attached to the channel.
type Conn struct {
	id      int
	service *Service
	inbox   chan *protocol.Message

	sendMu sync.Mutex

	closeMu sync.Mutex
	closed  bool

	listenerMu sync.Mutex
	listener   context.CancelFunc
}

// Send delivers a message to the backend. Calls on the same connection are
// serialised, which preserves per-sender FIFO ordering.
func (c *Conn) Send(ctx context.Context, message *protocol.Message) error {
	if message == nil {
		return fmt.Errorf("message cannot be nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	c.closeMu.Lock()
	if c.closed {
		c.closeMu.Unlock()
		return fmt.Errorf("connection closed")
	}
	c.closeMu.Unlock()

	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	c.service.dispatch(ctx, message)
	return nil
}

// Receive blocks for the next broadcast message or until ctx is done.
func (c *Conn) Receive(ctx context.Context) (*protocol.Message, error) {
	select {
	case message, ok := <-c.inbox:
		if !ok {
			return nil, fmt.Errorf("connection closed")
		}
		return message, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// OnMessage starts a background pump invoking handler for every broadcast
// delivered to this connection; the returned function stops it.
func (c *Conn) OnMessage(handler Handler) func() {
	ctx, cancel := context.WithCancel(context.Background())
	c.listenerMu.Lock()
	if c.listener != nil {
		c.listener()
	}
	c.listener = cancel
	c.listenerMu.Unlock()
	go func() {
		for {
			message, err := c.Receive(ctx)
			if err != nil {
				return
			}
			handler(ctx, message)
		}
	}()
	return cancel
}

// Close detaches the connection from the channel.
func (c *Conn) Close() {
	c.service.mu.Lock()
	delete(c.service.conns, c.id)
	c.service.mu.Unlock()
	c.shutdown()
}

func (c *Conn) shutdown() {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.inbox)
}
