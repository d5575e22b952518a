// Package platform answers read-only questions about the host: is this
// WSL, and can we see the hardware token's HID interface. Probes go through
// the FS abstraction and run identically under dry-run.
package platform

import (
	"sort"
	"strings"

	"github.com/wslkit/wslkit/pkg/errors"
	"github.com/wslkit/wslkit/pkg/types"
)

const (
	procVersionPath = "/proc/version"
	devDir          = "/dev"
	hidrawPrefix    = "hidraw"
)

// IsWSL reports whether the host looks like WSL. Errors reading
// /proc/version count as "not WSL"; callers only warn on false.
func IsWSL(fsys types.FS) bool {
	data, err := fsys.ReadFile(procVersionPath)
	if err != nil {
		return false
	}
	version := strings.ToLower(string(data))
	return strings.Contains(version, "microsoft") || strings.Contains(version, "wsl")
}

// HidrawDevices returns the /dev/hidraw* device paths, sorted.
func HidrawDevices(fsys types.FS) []string {
	entries, err := fsys.ReadDir(devDir)
	if err != nil {
		return nil
	}
	var devices []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), hidrawPrefix) {
			devices = append(devices, devDir+"/"+e.Name())
		}
	}
	sort.Strings(devices)
	return devices
}

// RequireHidraw fails with HARDWARE_ABSENT when no FIDO HID interface is
// visible. The condition is retryable: the operator attaches the key on the
// Windows side and re-runs.
func RequireHidraw(fsys types.FS) ([]string, error) {
	devices := HidrawDevices(fsys)
	if len(devices) == 0 {
		return nil, errors.New(errors.ErrHardwareAbsent,
			"no /dev/hidraw* devices found; the YubiKey FIDO interface is not visible to this system").
			WithDetail("remediation", "attach the key with usbipd on the Windows side, then re-run (see: wslkit guide windows)")
	}
	return devices, nil
}
