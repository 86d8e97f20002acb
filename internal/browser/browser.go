// Package browser opens StackIt pages in the user's default web browser.
package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/skratchdot/open-golang/open"
)

var linuxBrowsers = []string{"xdg-open", "x-www-browser", "www-browser", "firefox", "chromium", "google-chrome"}

// opener is replaced in tests.
var opener = openURL

// OpenURL opens target in the default web browser.
func OpenURL(target string) error {
	return opener(target)
}

func openURL(target string) error {
	err := open.Run(target)
	if err == nil {
		log.Debug("opened URL using open-golang")
		return nil
	}
	log.Debugf("open-golang failed: %v, trying platform-specific commands", err)
	return openURLPlatformSpecific(target)
}

func openURLPlatformSpecific(target string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", target)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	case "linux":
		for _, name := range linuxBrowsers {
			if _, err := exec.LookPath(name); err == nil {
				cmd = exec.Command(name, target)
				break
			}
		}
		if cmd == nil {
			return fmt.Errorf("browser: no suitable browser found")
		}
	default:
		return fmt.Errorf("browser: unsupported operating system %s", runtime.GOOS)
	}
	log.Debugf("running %s %v", cmd.Path, cmd.Args[1:])
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("browser: start %s: %w", cmd.Path, err)
	}
	return nil
}

// ResolveLink turns a notification link into an absolute URL. Absolute links are returned
// as is; site-relative ones such as /questions/5/ are joined onto webURL.
func ResolveLink(webURL, link string) (string, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return "", fmt.Errorf("browser: empty link")
	}
	ref, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("browser: parse link %q: %w", link, err)
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(webURL), "/") + "/")
	if err != nil || !base.IsAbs() {
		return "", fmt.Errorf("browser: invalid web url %q", webURL)
	}
	return base.ResolveReference(&url.URL{Path: strings.TrimLeft(ref.Path, "/"), RawQuery: ref.RawQuery, Fragment: ref.Fragment}).String(), nil
}
