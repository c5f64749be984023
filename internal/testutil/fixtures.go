package testutil

import (
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func GenerateTestEmail() string {
	return fmt.Sprintf("test-%s@example.com", uuid.New().String()[:8])
}

// DiscardLogger swallows all output.
func DiscardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// RecordingMailer keeps the last code sent to each address.
type RecordingMailer struct {
	mu      sync.Mutex
	codes   map[string]string
	welcome []string
}

func NewRecordingMailer() *RecordingMailer {
	return &RecordingMailer{codes: map[string]string{}}
}

func (m *RecordingMailer) SendAuthCode(email, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[email] = code
	return nil
}

func (m *RecordingMailer) SendWelcomeEmail(email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.welcome = append(m.welcome, email)
	return nil
}

func (m *RecordingMailer) Code(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[email]
}
