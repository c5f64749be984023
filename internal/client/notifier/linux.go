package notifier

import "os/exec"

// LinuxNotifier uses notify-send.
type LinuxNotifier struct{}

func (n *LinuxNotifier) Send(title, message string, urgency Urgency) error {
	icon := "dialog-information"
	if urgency == UrgencyCritical {
		icon = "dialog-warning"
	}

	cmd := exec.Command("notify-send",
		"--urgency="+urgency.String(),
		"--icon="+icon,
		"--app-name="+appName,
		title,
		message,
	)
	return cmd.Run()
}
