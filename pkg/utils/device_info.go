package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"os/exec"
	"regexp"
	"runtime"
	"strings"
)

// ErrMachineIDUnavailable is returned when no platform machine identifier can be read.
var ErrMachineIDUnavailable = errors.New("machine-id not found")

// machineIDPaths are checked in order on Linux and the BSDs.
var machineIDPaths = []string{
	"/etc/machine-id",
	"/var/lib/dbus/machine-id",
}

var (
	ioregUUID   = regexp.MustCompile(`"IOPlatformUUID"\s*=\s*"([^"]+)"`)
	machineGUID = regexp.MustCompile(`MachineGuid\s+REG_SZ\s+(\S+)`)
)

// DetectOS returns the operating system type in a standardized format
func DetectOS() string {
	switch runtime.GOOS {
	case "darwin":
		return "macos"
	default:
		return runtime.GOOS
	}
}

// MachineID returns a stable, hashed identifier of this machine.
// The raw platform identifier never leaves the process; callers get a
// SHA-256 hex digest of it.
func MachineID() (string, error) {
	raw, err := rawMachineID()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:]), nil
}

func rawMachineID() (string, error) {
	switch runtime.GOOS {
	case "darwin":
		out, err := exec.Command("ioreg", "-rd1", "-c", "IOPlatformExpertDevice").Output()
		if err != nil {
			return "", ErrMachineIDUnavailable
		}
		return matchFirst(ioregUUID, string(out))
	case "windows":
		out, err := exec.Command("reg", "query", `HKLM\SOFTWARE\Microsoft\Cryptography`, "/v", "MachineGuid").Output()
		if err != nil {
			return "", ErrMachineIDUnavailable
		}
		return matchFirst(machineGUID, string(out))
	default:
		return readMachineIDFile(machineIDPaths)
	}
}

func readMachineIDFile(paths []string) (string, error) {
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if id := strings.TrimSpace(string(data)); len(id) >= 8 {
			return id, nil
		}
	}
	return "", ErrMachineIDUnavailable
}

func matchFirst(re *regexp.Regexp, s string) (string, error) {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 || m[1] == "" {
		return "", ErrMachineIDUnavailable
	}
	return m[1], nil
}
