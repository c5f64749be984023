package utils

import (
	"os"
	"os/user"
	"strconv"
)

// sudoInvoker returns the account that ran sudo, if any.
func sudoInvoker() (*user.User, bool) {
	name := os.Getenv("SUDO_USER")
	if name == "" {
		return nil, false
	}
	u, err := user.Lookup(name)
	if err != nil {
		return nil, false
	}
	return u, true
}

// HomeDir is the home of the person at the keyboard. Under sudo that is
// SUDO_USER's home so ~/.iskra never ends up in /root.
func HomeDir() (string, error) {
	if u, ok := sudoInvoker(); ok {
		return u.HomeDir, nil
	}
	return os.UserHomeDir()
}

// FixFileOwnership hands path back to SUDO_USER. No-op outside sudo.
func FixFileOwnership(path string) error {
	u, ok := sudoInvoker()
	if !ok {
		return nil
	}

	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return nil
	}
	gid, err := strconv.Atoi(u.Gid)
	if err != nil {
		return nil
	}
	return os.Chown(path, uid, gid)
}
