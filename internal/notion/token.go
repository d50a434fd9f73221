package notion

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/kapturehq/kapture/internal/common"
)

// FileTokenSource is an Authenticator backed by a token file on disk.
// The token is cached in memory after the first read.
type FileTokenSource struct {
	path string

	mu    sync.Mutex
	token string
}

func NewFileTokenSource(path string) *FileTokenSource {
	return &FileTokenSource{path: path}
}

// Token returns the stored bearer token, or common.ErrNotAuthenticated if
// no token has been saved yet.
func (s *FileTokenSource) Token(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" {
		return s.token, nil
	}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return "", common.ErrNotAuthenticated
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token file: %w", err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", common.ErrNotAuthenticated
	}

	s.token = token
	return token, nil
}

// Save stores the token on disk (owner read/write only) and refreshes the
// in-memory copy.
func (s *FileTokenSource) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(s.path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	s.token = strings.TrimSpace(token)
	return nil
}
