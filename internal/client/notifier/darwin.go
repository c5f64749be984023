package notifier

import (
	"fmt"
	"os/exec"
	"strings"
)

// DarwinNotifier uses osascript.
type DarwinNotifier struct{}

func (n *DarwinNotifier) Send(title, message string, urgency Urgency) error {
	script := fmt.Sprintf("display notification %s with title %s subtitle %s",
		quote(message), quote(appName), quote(title))
	return exec.Command("osascript", "-e", script).Run()
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
