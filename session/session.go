package session

import "sync"

// Store holds, per chat, the single URL awaiting a format choice. A new URL
// overwrites any pending one (last-URL-wins, no queueing). Entries live in
// memory only; a restart drops them, which the controller treats as a
// recoverable stale-choice condition.
type Store struct {
	mu   sync.RWMutex
	urls map[int64]string
}

func NewStore() *Store {
	return &Store{urls: make(map[int64]string)}
}

func (s *Store) Put(chatID int64, url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.urls[chatID] = url
}

func (s *Store) Get(chatID int64) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	url, ok := s.urls[chatID]
	return url, ok
}

func (s *Store) Clear(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.urls, chatID)
}
