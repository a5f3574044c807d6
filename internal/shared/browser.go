package shared

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

var getRuntime = func() string { return runtime.GOOS }

// browserCommand returns the opener for the platform, or nil when unsupported.
func browserCommand(platform, target string) *exec.Cmd {
	switch platform {
	case "darwin":
		return exec.Command("open", target)
	case "linux", "freebsd", "openbsd", "netbsd":
		return exec.Command("xdg-open", target)
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	default:
		return nil
	}
}

// OpenBrowser opens target in the default system browser.
//
// Only absolute http and https URLs are accepted.
func OpenBrowser(target string) error {
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: refusing to open %q", ErrInvalidArgument, target)
	}

	platform := getRuntime()
	cmd := browserCommand(platform, u.String())
	if cmd == nil {
		return fmt.Errorf("unsupported platform: %s", platform)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}
