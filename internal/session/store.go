// Package session persists chat sessions as one JSON file each under a
// sessions directory, and manages the currently active session.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mike-a-ellis/persona-chat/internal/conversation"
)

// ErrSessionNotFound indicates the requested session file does not exist.
var ErrSessionNotFound = errors.New("session not found")

// previewRunes bounds the last-message excerpt shown in listings.
const previewRunes = 60

// Info summarizes a stored session for listings.
type Info struct {
	SessionID string    `json:"session_id"`
	Messages  int       `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Preview   string    `json:"preview"`
}

// Store manages chat sessions on disk. One session is active at a time;
// Append records turns into it and persists after every write so a
// killed process loses at most nothing.
type Store struct {
	dir        string
	maxHistory int
	current    *conversation.ChatSession
}

// NewStore creates a session store rooted at dir. maxHistory bounds how
// many turns a session retains; older turns are dropped oldest-first.
func NewStore(dir string, maxHistory int) *Store {
	return &Store{dir: dir, maxHistory: maxHistory}
}

// Create starts a new active session. An empty id gets a generated one.
func (s *Store) Create(id string) *conversation.ChatSession {
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()
	s.current = &conversation.ChatSession{
		SessionID: id,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return s.current
}

// Current returns the active session, creating one if none exists.
func (s *Store) Current() *conversation.ChatSession {
	if s.current == nil {
		s.Create("")
	}
	return s.current
}

// Reset abandons the active session and starts a fresh one. The old
// session's file, if any, is left on disk.
func (s *Store) Reset() *conversation.ChatSession {
	s.current = nil
	return s.Current()
}

// Append records a turn into the active session, trims history to the
// configured bound, and persists the session.
func (s *Store) Append(msg conversation.ChatMessage) error {
	sess := s.Current()
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	sess.Messages = append(sess.Messages, msg)
	if s.maxHistory > 0 && len(sess.Messages) > s.maxHistory {
		sess.Messages = sess.Messages[len(sess.Messages)-s.maxHistory:]
	}
	sess.UpdatedAt = time.Now().UTC()
	return s.Save()
}

// History returns up to limit most recent turns of the active session.
// A non-positive limit returns the full history.
func (s *Store) History(limit int) []conversation.ChatMessage {
	msgs := s.Current().Messages
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs
}

// Save writes the active session to its file.
func (s *Store) Save() error {
	sess := s.Current()
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(s.path(sess.SessionID), data, 0o644); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Load reads a stored session and makes it the active one.
func (s *Store) Load(id string) (*conversation.ChatSession, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	var sess conversation.ChatSession
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	s.current = &sess
	return s.current, nil
}

// List returns summaries of stored sessions, most recently updated
// first. A non-positive limit returns all of them.
func (s *Store) List(limit int) ([]Info, error) {
	paths, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	var infos []Info
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var sess conversation.ChatSession
		if err := json.Unmarshal(data, &sess); err != nil {
			continue
		}
		infos = append(infos, Info{
			SessionID: sess.SessionID,
			Messages:  len(sess.Messages),
			CreatedAt: sess.CreatedAt,
			UpdatedAt: sess.UpdatedAt,
			Preview:   preview(sess.Messages),
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].UpdatedAt.After(infos[j].UpdatedAt)
	})
	if limit > 0 && len(infos) > limit {
		infos = infos[:limit]
	}
	return infos, nil
}

// Delete removes a stored session file.
func (s *Store) Delete(id string) error {
	if err := os.Remove(s.path(id)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		}
		return fmt.Errorf("delete session: %w", err)
	}
	if s.current != nil && s.current.SessionID == id {
		s.current = nil
	}
	return nil
}

// CleanupOlderThan deletes sessions not updated within the given number
// of days and returns how many were removed.
func (s *Store) CleanupOlderThan(days int) (int, error) {
	infos, err := s.List(0)
	if err != nil {
		return 0, err
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	removed := 0
	for _, info := range infos {
		if info.UpdatedAt.After(cutoff) {
			continue
		}
		if err := s.Delete(info.SessionID); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// Summary describes the active session for display.
func (s *Store) Summary() Info {
	sess := s.Current()
	return Info{
		SessionID: sess.SessionID,
		Messages:  len(sess.Messages),
		CreatedAt: sess.CreatedAt,
		UpdatedAt: sess.UpdatedAt,
		Preview:   preview(sess.Messages),
	}
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func preview(msgs []conversation.ChatMessage) string {
	if len(msgs) == 0 {
		return ""
	}
	text := strings.TrimSpace(msgs[len(msgs)-1].Content)
	runes := []rune(text)
	if len(runes) > previewRunes {
		return string(runes[:previewRunes]) + "..."
	}
	return text
}
