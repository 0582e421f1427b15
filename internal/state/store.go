package state

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/danhigham/tgsend/internal/domain"
)

// PendingSuffix is appended to the session path to name the pending login file.
const PendingSuffix = ".login"

// PendingLogin is a login that stopped waiting for user input. Telegram only
// accepts a code together with the hash returned when it was sent, so the
// hash has to survive until the next run.
type PendingLogin struct {
	Phone    string           `yaml:"phone"`
	CodeHash string           `yaml:"code_hash"`
	Stage    domain.AuthState `yaml:"stage"`
}

// Matches reports whether the record belongs to phone.
func (p PendingLogin) Matches(phone string) bool {
	return p.Phone != "" && p.Phone == phone
}

type Store struct {
	mu   sync.Mutex
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

// ForSession returns the store kept next to the given session file.
func ForSession(sessionPath string) *Store {
	return New(sessionPath + PendingSuffix)
}

func (s *Store) Path() string {
	return s.path
}

// Load returns the stored record, or a zero record when there is none.
func (s *Store) Load() (PendingLogin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return PendingLogin{}, nil
	}
	if err != nil {
		return PendingLogin{}, fmt.Errorf("read pending login: %w", err)
	}

	var p PendingLogin
	if err := yaml.Unmarshal(data, &p); err != nil {
		return PendingLogin{}, fmt.Errorf("parse pending login: %w", err)
	}
	return p, nil
}

func (s *Store) Save(p PendingLogin) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode pending login: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create pending login dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("write pending login: %w", err)
	}
	return nil
}

// Clear removes the record. A missing record is not an error.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove pending login: %w", err)
	}
	return nil
}
