package mail

import (
	"errors"
	"sync"

	"golang.org/x/oauth2"
)

// ErrNoToken is returned when the store holds no OAuth token yet; the
// operator must complete the authorization flow first.
var ErrNoToken = errors.New("no gmail token stored; authorize first")

// TokenStore holds the Gmail OAuth token for the process. Abstracted as an
// interface so the storage mechanism (memory, file, session) can be swapped
// without touching the notifier.
type TokenStore interface {
	Get() (*oauth2.Token, error)
	Set(tok *oauth2.Token) error
	Clear()
}

// MemoryTokenStore keeps the token in process memory, good for one pool
// lifetime. Safe for concurrent use.
type MemoryTokenStore struct {
	mu  sync.RWMutex
	tok *oauth2.Token
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) Get() (*oauth2.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tok == nil {
		return nil, ErrNoToken
	}
	return s.tok, nil
}

func (s *MemoryTokenStore) Set(tok *oauth2.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tok = tok
	return nil
}

func (s *MemoryTokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tok = nil
}
