// Package notifier shows desktop notifications.
package notifier

import (
	"os/exec"
	"runtime"

	"github.com/sirupsen/logrus"
)

type Urgency int

const (
	UrgencyLow Urgency = iota
	UrgencyNormal
	UrgencyCritical
)

func (u Urgency) String() string {
	switch u {
	case UrgencyLow:
		return "low"
	case UrgencyCritical:
		return "critical"
	default:
		return "normal"
	}
}

type Notifier interface {
	Send(title, message string, urgency Urgency) error
}

const appName = "Iskra"

// New picks the notifier for the current OS. When the platform tool is not
// installed, notifications are written to log instead.
func New(log logrus.FieldLogger) Notifier {
	fallback := &LogNotifier{Log: log}

	switch runtime.GOOS {
	case "linux", "freebsd", "openbsd":
		if _, err := exec.LookPath("notify-send"); err == nil {
			return &LinuxNotifier{}
		}
	case "darwin":
		if _, err := exec.LookPath("osascript"); err == nil {
			return &DarwinNotifier{}
		}
	}
	return fallback
}

// LogNotifier writes notifications to a logger. Used on headless machines.
type LogNotifier struct {
	Log logrus.FieldLogger
}

func (n *LogNotifier) Send(title, message string, urgency Urgency) error {
	if n.Log == nil {
		return nil
	}
	entry := n.Log.WithFields(logrus.Fields{"title": title, "urgency": urgency.String()})
	if urgency == UrgencyCritical {
		entry.Warn(message)
	} else {
		entry.Info(message)
	}
	return nil
}
