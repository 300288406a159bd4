// Package devtools streams store snapshots to websocket inspectors.
//
// Every attached store publishes a JSON snapshot on each change. A newly
// connected inspector first receives a connect frame listing the attached
// stores, then the latest snapshot of each, then live changes.
package devtools

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 5 * time.Second

type Server struct {
	// pub keeps enqueue order equal to seq order across publishers.
	pub sync.Mutex

	mu      sync.RWMutex
	clients map[*websocket.Conn]uint64
	latest  map[string]Message
	seq     uint64

	broadcast chan Message
	register  chan *websocket.Conn
	done      chan struct{}
	closeOnce sync.Once

	upgrader websocket.Upgrader
	log      *zap.Logger
}

type Option func(*Server)

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		s.log = l
	}
}

// WithCheckOrigin restricts which origins may open an inspector socket.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(s *Server) {
		s.upgrader.CheckOrigin = fn
	}
}

func NewServer(opts ...Option) *Server {
	s := &Server{
		clients:   make(map[*websocket.Conn]uint64),
		latest:    make(map[string]Message),
		broadcast: make(chan Message, 256),
		register:  make(chan *websocket.Conn),
		done:      make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Start() {
	go s.run()
}

// Close stops the broadcast loop and disconnects every inspector.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		close(s.done)

		s.mu.Lock()
		for conn := range s.clients {
			conn.Close()
		}
		s.clients = make(map[*websocket.Conn]uint64)
		s.mu.Unlock()
	})
}

func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	select {
	case s.register <- conn:
	case <-s.done:
		conn.Close()
		return
	}
	defer s.drop(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Publish records snapshot as the latest state of the named store and
// forwards it to connected inspectors.
func (s *Server) Publish(name string, snapshot json.RawMessage) {
	s.pub.Lock()
	defer s.pub.Unlock()

	s.mu.Lock()
	s.seq++
	msg := Message{Type: MsgTypeSnapshot, Seq: s.seq, Store: name, Snapshot: snapshot}
	s.latest[name] = msg
	s.mu.Unlock()

	s.enqueue(msg)
}

// Detach forgets the named store and tells inspectors it is gone.
func (s *Server) Detach(name string) {
	s.pub.Lock()
	defer s.pub.Unlock()

	s.mu.Lock()
	if _, ok := s.latest[name]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.latest, name)
	s.seq++
	msg := Message{Type: MsgTypeDetach, Seq: s.seq, Store: name}
	s.mu.Unlock()

	s.enqueue(msg)
}

// Clients reports the number of connected inspectors.
func (s *Server) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Stores lists the attached store names in sorted order.
func (s *Server) Stores() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.storeNames()
}

func (s *Server) storeNames() []string {
	names := make([]string, 0, len(s.latest))
	for name := range s.latest {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Server) enqueue(msg Message) {
	select {
	case s.broadcast <- msg:
	case <-s.done:
	}
}

func (s *Server) run() {
	for {
		select {
		case <-s.done:
			return
		case conn := <-s.register:
			s.join(conn)
		case msg := <-s.broadcast:
			s.mu.RLock()
			targets := make([]*websocket.Conn, 0, len(s.clients))
			for conn, joined := range s.clients {
				if msg.Seq > joined {
					targets = append(targets, conn)
				}
			}
			s.mu.RUnlock()

			for _, conn := range targets {
				s.send(conn, msg)
			}
		}
	}
}

// join registers conn and sends it the current state. Changes published
// before the join are covered by the initial snapshots and are skipped for
// this client when they come out of the queue.
func (s *Server) join(conn *websocket.Conn) {
	s.mu.Lock()
	s.clients[conn] = s.seq
	names := s.storeNames()
	snapshots := make([]Message, 0, len(names))
	for _, name := range names {
		snapshots = append(snapshots, s.latest[name])
	}
	hello := Message{Type: MsgTypeConnect, Seq: s.seq, Stores: names}
	s.mu.Unlock()

	s.log.Debug("inspector connected", zap.String("remote", conn.RemoteAddr().String()))

	if !s.send(conn, hello) {
		return
	}
	for _, msg := range snapshots {
		if !s.send(conn, msg) {
			return
		}
	}
}

func (s *Server) send(conn *websocket.Conn, msg Message) bool {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		s.log.Debug("inspector write failed", zap.Error(err))
		s.drop(conn)
		return false
	}
	return true
}

func (s *Server) drop(conn *websocket.Conn) {
	s.mu.Lock()
	_, ok := s.clients[conn]
	delete(s.clients, conn)
	s.mu.Unlock()

	if ok {
		conn.Close()
	}
}
