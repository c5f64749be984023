// Package memory keeps a per-workspace list of notes (preferences, decisions,
// known solutions and code patterns) in <workspace>/.iskra/memory.json and
// renders them as prompt context.
package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"github.com/kamikazebr/iskra-desktop/pkg/utils"
)

const (
	DirName  = ".iskra"
	FileName = "memory.json"
)

type EntryType string

const (
	Preference EntryType = "preference"
	Decision   EntryType = "decision"
	Solution   EntryType = "solution"
	Pattern    EntryType = "pattern"
)

// Types lists the entry types in the order they are rendered.
var Types = []EntryType{Preference, Decision, Solution, Pattern}

var sectionTitles = map[EntryType]string{
	Preference: "User Preferences",
	Decision:   "Architectural Decisions",
	Solution:   "Known Solutions",
	Pattern:    "Code Patterns",
}

func (t EntryType) Valid() bool {
	_, ok := sectionTitles[t]
	return ok
}

var (
	ErrInvalidType  = errors.New("type must be preference, decision, solution or pattern")
	ErrEmptyContent = errors.New("content is required")
)

type Entry struct {
	ID        string    `json:"id"`
	Type      EntryType `json:"type"`
	Content   string    `json:"content"`
	Timestamp int64     `json:"timestamp"`
	Context   string    `json:"context,omitempty"`
}

type Bank struct {
	Entries []Entry `json:"entries"`
}

// Store reads and writes one workspace's memory file. Every call re-reads the
// file, so edits made by hand or by another process are kept.
type Store struct {
	path string
	log  logrus.FieldLogger
	now  func() time.Time

	mu sync.Mutex
}

func NewStore(workspace string, log logrus.FieldLogger) *Store {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Store{
		path: filepath.Join(workspace, DirName, FileName),
		log:  log.WithField("component", "memory"),
		now:  time.Now,
	}
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Add(t EntryType, content, context string) (*Entry, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, t)
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bank := s.readLocked()
	now := s.now()
	entry := Entry{
		ID:        "mem_" + strings.ToLower(ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String()),
		Type:      t,
		Content:   content,
		Timestamp: now.UnixMilli(),
		Context:   strings.TrimSpace(context),
	}
	bank.Entries = append(bank.Entries, entry)
	if err := s.writeLocked(bank); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"id": entry.ID, "type": t}).Debug("Memory entry added")
	return &entry, nil
}

// List returns the entries in insertion order.
func (s *Store) List() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked().Entries
}

// Delete removes the entry with id and reports whether one was found.
func (s *Store) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bank := s.readLocked()
	kept := bank.Entries[:0]
	for _, e := range bank.Entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(bank.Entries) {
		return false, nil
	}
	bank.Entries = kept
	if err := s.writeLocked(bank); err != nil {
		return false, err
	}
	return true, nil
}

// Render groups entries by type under a heading each. Solutions carry their
// context in parentheses. It returns "" when there is nothing to render.
func (s *Store) Render() string {
	return Render(s.List())
}

func Render(entries []Entry) string {
	grouped := map[EntryType][]Entry{}
	for _, e := range entries {
		grouped[e.Type] = append(grouped[e.Type], e)
	}

	var sections []string
	for _, t := range Types {
		if len(grouped[t]) == 0 {
			continue
		}
		lines := []string{sectionTitles[t] + ":"}
		for _, e := range grouped[t] {
			line := "- " + e.Content
			if t == Solution && e.Context != "" {
				line += " (" + e.Context + ")"
			}
			lines = append(lines, line)
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}
	return strings.Join(sections, "\n\n")
}

// readLocked yields an empty bank for a missing or malformed file.
func (s *Store) readLocked() Bank {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.WithError(err).Warn("Failed to read memory file")
		}
		return Bank{}
	}

	var bank Bank
	if err := json.Unmarshal(data, &bank); err != nil {
		s.log.WithError(err).Debug("Memory file is malformed, treating as empty")
		return Bank{}
	}
	return bank
}

func (s *Store) writeLocked(bank Bank) error {
	if bank.Entries == nil {
		bank.Entries = []Entry{}
	}
	data, err := json.MarshalIndent(bank, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal memory: %w", err)
	}
	if err := utils.MkdirAllWithOwnership(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create memory directory: %w", err)
	}
	if err := utils.WriteFileAtomic(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write memory: %w", err)
	}
	return nil
}
