package main

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// browserURL appends the configured start path to the site URL.
func browserURL(siteURL, path string) string {
	if path == "" {
		return siteURL
	}
	return strings.TrimSuffix(siteURL, "/") + "/" + strings.TrimPrefix(path, "/")
}

// browserArgs returns the command line that opens target for goos. A client
// names a specific browser.
func browserArgs(goos, client, target string) []string {
	switch goos {
	case "darwin":
		if client != "" {
			return []string{"open", "-a", client, target}
		}
		return []string{"open", target}
	case "windows":
		if client != "" {
			return []string{"cmd", "/c", "start", "", client, target}
		}
		return []string{"rundll32", "url.dll,FileProtocolHandler", target}
	default:
		if client != "" {
			return []string{client, target}
		}
		return []string{"xdg-open", target}
	}
}

func openBrowser(client, target string) error {
	args := browserArgs(runtime.GOOS, client, target)
	cmd := exec.Command(args[0], args[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", args[0], err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
