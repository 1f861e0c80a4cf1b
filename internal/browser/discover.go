package browser

import (
	"os"
	"os/exec"
	"runtime"

	"toolproof/internal/toolerr"
)

var candidateNames = []string{
	"chrome", "chrome-browser", "google-chrome-stable", "chromium", "chromium-browser",
	"msedge", "microsoft-edge", "microsoft-edge-stable",
}

var wellKnownPaths = map[string][]string{
	"darwin": {
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		"/Applications/Chromium.app/Contents/MacOS/Chromium",
		"/Applications/Microsoft Edge.app/Contents/MacOS/Microsoft Edge",
	},
	"linux": {
		"/usr/bin/google-chrome", "/usr/bin/chromium", "/usr/bin/chromium-browser", "/usr/bin/microsoft-edge",
	},
	"windows": {
		`C:\Program Files\Google\Chrome\Application\chrome.exe`,
		`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
		`C:\Program Files (x86)\Microsoft\Edge\Application\msedge.exe`,
	},
}

// FindExecutable applies the discovery order from the browser driver
// contract: CHROME env var, then PATH lookup of the candidate set, then
// platform-specific well-known install paths.
func FindExecutable() (string, error) {
	if p := os.Getenv("CHROME"); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	for _, name := range candidateNames {
		if p, err := exec.LookPath(name); err == nil {
			return p, nil
		}
	}
	for _, p := range wellKnownPaths[runtime.GOOS] {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", toolerr.New(toolerr.BrowserUnavailable, -1, "no Chrome/Chromium/Edge executable found")
}
