package feed

import "sort"

// SessionStore tracks the sessions the game loop knows about.
// Accessed only from the game loop goroutine; no locks.
type SessionStore struct {
	sessions map[uint64]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[uint64]*Session, 64)}
}

func (s *SessionStore) Add(sess *Session)        { s.sessions[sess.ID] = sess }
func (s *SessionStore) Remove(id uint64)         { delete(s.sessions, id) }
func (s *SessionStore) Get(id uint64) *Session   { return s.sessions[id] }
func (s *SessionStore) Count() int               { return len(s.sessions) }
func (s *SessionStore) Raw() map[uint64]*Session { return s.sessions }

// ForEach visits sessions in id order.
func (s *SessionStore) ForEach(fn func(*Session)) {
	ids := make([]uint64, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		fn(s.sessions[id])
	}
}

// Broadcast buffers frame on every open session.
func (s *SessionStore) Broadcast(frame []byte) {
	for _, sess := range s.sessions {
		sess.Send(frame)
	}
}

// Flush drains every session's output buffer.
func (s *SessionStore) Flush() {
	for _, sess := range s.sessions {
		sess.FlushOutput()
	}
}
