// Package browser implements the browser driver: one Chromium-family
// process per worker, reused across tests by opening a fresh page per test,
// driven over the DevTools protocol via github.com/go-rod/rod — the
// pattern grounded on theRebelliousNerd-codenerd's session_manager.go,
// adapted here from a long-lived multi-session manager into a
// one-process-per-worker, one-page-per-test driver matching the
// concurrency model of §5.
package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"toolproof/internal/toolerr"
)

// Manager owns one browser process, shared by every test a worker runs in
// sequence. Pages are opened per test and closed at test end.
type Manager struct {
	mu      sync.Mutex
	browser *rod.Browser
	headed  bool
}

// NewManager launches (or connects to) a browser process for one worker.
func NewManager(headed bool) (*Manager, error) {
	bin, err := FindExecutable()
	if err != nil {
		return nil, err
	}
	l := launcher.New().Bin(bin).Headless(!headed)
	u, err := l.Launch()
	if err != nil {
		return nil, toolerr.Wrap(toolerr.BrowserUnavailable, -1, "launching browser", err)
	}
	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		return nil, toolerr.Wrap(toolerr.BrowserUnavailable, -1, "connecting to browser", err)
	}
	return &Manager{browser: b, headed: headed}, nil
}

// NewPage opens a fresh incognito page for one test.
func (m *Manager) NewPage(ctx context.Context, browserTimeout time.Duration) (*Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	incognito, err := m.browser.Incognito()
	if err != nil {
		return nil, toolerr.Wrap(toolerr.BrowserUnavailable, -1, "opening incognito context", err)
	}
	p, err := incognito.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, toolerr.Wrap(toolerr.BrowserUnavailable, -1, "opening page", err)
	}

	if _, err := p.EvalOnNewDocument(harnessScript(browserTimeout.Milliseconds())); err != nil {
		return nil, toolerr.Wrap(toolerr.BrowserUnavailable, -1, "installing harness", err)
	}

	page := &Page{page: p, timeout: browserTimeout}
	page.startConsoleCapture()
	return page, nil
}

// Shutdown terminates the browser process and, transitively, every page it
// owns. It is the hard invariant: this is always called, including on
// panic/signal, by the scheduler's shutdown handler.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.browser == nil {
		return nil
	}
	return m.browser.Close()
}

// Page is one test's browser tab.
type Page struct {
	page    *rod.Page
	timeout time.Duration

	mu      sync.Mutex
	console []string
}

func (p *Page) startConsoleCapture() {
	go p.page.EachEvent(func(e *proto.RuntimeConsoleAPICalled) {
		level := consoleLevel(string(e.Type))
		var parts []string
		for _, a := range e.Args {
			if a.Value.Val() != nil {
				parts = append(parts, fmt.Sprintf("%v", a.Value.Val()))
			}
		}
		p.mu.Lock()
		p.console = append(p.console, fmt.Sprintf("%s: %s", level, strings.Join(parts, " ")))
		p.mu.Unlock()
	})()
}

func consoleLevel(t string) string {
	switch t {
	case "warning":
		return "WARN"
	case "error":
		return "ERR"
	case "debug":
		return "DBG"
	default:
		return "LOG"
	}
}

func (p *Page) Console() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.console))
	copy(out, p.console)
	return out
}

// Load navigates to url (assumed already resolved against the serve port by
// the caller) and waits for the load event.
func (p *Page) Load(url string) error {
	page := p.page.Timeout(p.timeout)
	if err := page.Navigate(url); err != nil {
		return toolerr.Wrap(toolerr.BrowserNavFailed, -1, url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return toolerr.Wrap(toolerr.BrowserNavFailed, -1, url, err)
	}
	return nil
}

// Evaluate runs js as the body of an async function. A throw carrying the
// :toolproof_err: sentinel surfaces as AssertionFailedInBrowser with the
// text after the sentinel; any other evaluation error is BrowserJsError.
func (p *Page) Evaluate(js string) (interface{}, error) {
	wrapped := fmt.Sprintf("async () => { %s }", js)
	res, err := p.page.Timeout(p.timeout).Eval(wrapped)
	if err != nil {
		msg := err.Error()
		if strings.Contains(msg, ":toolproof_err:") {
			return nil, toolerr.New(toolerr.AssertionFailedInBrowser, -1, stripSentinel(msg))
		}
		return nil, toolerr.Wrap(toolerr.BrowserJsError, -1, js, err)
	}
	var v interface{}
	raw := res.Value.String()
	if raw != "" {
		_ = json.Unmarshal([]byte(res.Value.JSON()), &v)
	}
	return v, nil
}

func stripSentinel(msg string) string {
	idx := strings.Index(msg, ":toolproof_err:")
	if idx < 0 {
		return msg
	}
	return strings.TrimSpace(msg[idx+len(":toolproof_err:"):])
}

// Click finds a visible, clickable element matching selector (a CSS
// selector when byText is false, or trimmed visible text when true) and
// clicks it, failing ClickAmbiguous on multiple exact-case text matches and
// ElementNotFound if nothing appears within the browser timeout.
func (p *Page) Click(selector string, byText bool) error {
	el, err := p.findClickable(selector, byText)
	if err != nil {
		return err
	}
	if err := el.Timeout(p.timeout).Click(proto.InputMouseButtonLeft, 1); err != nil {
		return toolerr.Wrap(toolerr.ElementNotFound, -1, selector, err)
	}
	return nil
}

func (p *Page) Hover(selector string, byText bool) error {
	el, err := p.findClickable(selector, byText)
	if err != nil {
		return err
	}
	if err := el.Timeout(p.timeout).Hover(); err != nil {
		return toolerr.Wrap(toolerr.ElementNotFound, -1, selector, err)
	}
	return nil
}

func (p *Page) ScrollTo(selector string, byText bool) error {
	el, err := p.findClickable(selector, byText)
	if err != nil {
		return err
	}
	if err := el.Timeout(p.timeout).ScrollIntoView(); err != nil {
		return toolerr.Wrap(toolerr.ElementNotFound, -1, selector, err)
	}
	return nil
}

const clickableJS = `(text) => {
	const clickableSel = 'button, a, option, input[type=submit], input[type=button], [role=button], [role=option]';
	const all = Array.from(document.querySelectorAll(clickableSel));
	return all.filter(el => {
		const style = getComputedStyle(el);
		if (style.display === 'none' || style.visibility === 'hidden') return false;
		return el.textContent.trim() === text;
	});
}`

func (p *Page) findClickable(selector string, byText bool) (*rod.Element, error) {
	if !byText {
		el, err := p.page.Timeout(p.timeout).Element(selector)
		if err != nil {
			return nil, toolerr.Wrap(toolerr.ElementNotFound, -1, selector, err)
		}
		return el, nil
	}

	deadline := time.Now().Add(p.timeout)
	res, err := p.page.Timeout(p.timeout).Eval(clickableJS, selector)
	for err == nil && time.Now().Before(deadline) {
		if arr, aerr := res.Value.Array(); aerr == nil && len(arr) > 0 {
			break
		}
		time.Sleep(100 * time.Millisecond)
		res, err = p.page.Timeout(p.timeout).Eval(clickableJS, selector)
	}
	if err != nil {
		return nil, toolerr.Wrap(toolerr.ElementNotFound, -1, selector, err)
	}
	arr, err := res.Value.Array()
	if err != nil || len(arr) == 0 {
		return nil, toolerr.New(toolerr.ElementNotFound, -1, selector)
	}
	if len(arr) > 1 {
		return nil, toolerr.New(toolerr.ClickAmbiguous, -1, selector)
	}
	// clickableJS confirmed exactly one text match; selector holds the
	// match text here, not a CSS selector, so re-resolve it via XPath
	// rather than passing it to Elements.
	el, err := p.page.Timeout(p.timeout).ElementX(fmt.Sprintf(`//*[normalize-space(text())="%s"]`, escapeXPath(selector)))
	if err != nil {
		return nil, toolerr.Wrap(toolerr.ElementNotFound, -1, selector, err)
	}
	return el, nil
}

func escapeXPath(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

// Type sends a synthesised keyboard sequence to the currently focused
// element. \n maps to Enter, \t to Tab, \b to Backspace, \x1b to Escape;
// any other control character below U+0020 fails with
// TypeUnsupportedCharacter, and every remaining rune is inserted as text.
func (p *Page) Type(text string) error {
	for _, r := range text {
		switch r {
		case '\n':
			if err := p.PressKey("Enter"); err != nil {
				return err
			}
		case '\t':
			if err := p.PressKey("Tab"); err != nil {
				return err
			}
		case '\b':
			if err := p.PressKey("Backspace"); err != nil {
				return err
			}
		case '\x1b':
			if err := p.PressKey("Escape"); err != nil {
				return err
			}
		default:
			if r < 0x20 {
				return toolerr.New(toolerr.TypeUnsupportedCharacter, -1, fmt.Sprintf("%q", r))
			}
			if err := p.page.Timeout(p.timeout).InsertText(string(r)); err != nil {
				return toolerr.Wrap(toolerr.TypeUnsupportedCharacter, -1, string(r), err)
			}
		}
	}
	return nil
}

// PressKey sends a single named key press.
func (p *Page) PressKey(name string) error {
	k, ok := keyInput(name)
	if !ok {
		return toolerr.New(toolerr.TypeUnsupportedCharacter, -1, name)
	}
	return p.page.Timeout(p.timeout).Keyboard.Type(k)
}

func (p *Page) ScreenshotViewport(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := p.page.Timeout(p.timeout).Screenshot(false, nil)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (p *Page) ScreenshotElement(selector, path string) error {
	el, err := p.page.Timeout(p.timeout).Element(selector)
	if err != nil {
		return toolerr.Wrap(toolerr.ElementNotFound, -1, selector, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := el.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (p *Page) Close() error {
	return p.page.Close()
}
