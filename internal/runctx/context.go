// Package runctx defines TestContext, the per-running-test state threaded
// through every step handler: temp directory, environment overlay, process
// capture, HTTP server, browser page and the effective placeholder map.
package runctx

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"toolproof/internal/platform"
)

// Page is the narrow surface of the browser driver a test context needs;
// defined here (rather than importing internal/browser) so runctx does not
// depend on the browser driver. Load receives URLs already resolved against
// ServePort by the caller.
type Page interface {
	Load(url string) error
	Evaluate(js string) (interface{}, error)
	Click(selector string, byText bool) error
	Hover(selector string, byText bool) error
	ScrollTo(selector string, byText bool) error
	Type(text string) error
	PressKey(name string) error
	ScreenshotViewport(path string) error
	ScreenshotElement(selector, path string) error
	Console() []string
	Close() error
}

// Server is the narrow surface of the HTTP serve subsystem a context needs.
type Server interface {
	Port() int
	Close() error
}

// Context is the per-test execution state, TestContext in the data model.
type Context struct {
	mu sync.Mutex

	TempDir      string
	EnvOverlay   map[string]string
	Stdout       string
	Stderr       string
	HostPlatform platform.Platform

	ServePort int
	server    Server
	page      Page

	// basePlaceholders is RunSettings.Placeholders overlaid with built-ins;
	// it never changes after New.
	basePlaceholders map[string]string

	// uniqueID is generated once per test, giving scenarios a collision-free
	// value for test data (emails, usernames) when run concurrently —
	// the role the teacher's tester/testdata.GenerateRunID served for its
	// persona-driven scenarios, here exposed as a placeholder instead of a
	// Go API since steps can't call Go functions directly.
	uniqueID string
}

// New creates a fresh TestContext rooted at tempDir.
func New(tempDir string, basePlaceholders map[string]string) *Context {
	c := &Context{
		TempDir:          tempDir,
		EnvOverlay:       map[string]string{},
		HostPlatform:     platform.Host(),
		basePlaceholders: basePlaceholders,
		uniqueID:         uuid.NewString(),
	}
	return c
}

// ResolvePath resolves name beneath TempDir, failing if it would escape.
func (c *Context) ResolvePath(name string) (string, error) {
	clean := filepath.Clean(filepath.Join(c.TempDir, name))
	rel, err := filepath.Rel(c.TempDir, clean)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes the test temp directory", name)
	}
	return clean, nil
}

// SetEnv records an environment-overlay entry.
func (c *Context) SetEnv(name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.EnvOverlay[name] = value
}

// Env returns the process environment with the overlay applied on top.
func (c *Context) Env() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	env := os.Environ()
	for k, v := range c.EnvOverlay {
		env = append(env, k+"="+v)
	}
	return env
}

// RecordRun replaces the captured stdout/stderr, the documented last-wins
// semantics for repeated `I run` steps within one test.
func (c *Context) RecordRun(stdout, stderr string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Stdout = stdout
	c.Stderr = stderr
}

func (c *Context) LastStdout() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Stdout
}

func (c *Context) LastStderr() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Stderr
}

// SetServer installs the test's HTTP server and records its port.
func (c *Context) SetServer(s Server) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.server = s
	c.ServePort = s.Port()
}

func (c *Context) Server() Server {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.server
}

// SetPage installs the test's browser page.
func (c *Context) SetPage(p Page) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.page = p
}

func (c *Context) Page() Page {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// Placeholders returns the effective placeholder map for the given step,
// overlaying built-ins and the step's own macro-argument bindings onto the
// base RunSettings placeholders.
func (c *Context) Placeholders(stepOverlay map[string]string) map[string]string {
	out := make(map[string]string, len(c.basePlaceholders)+len(stepOverlay)+5)
	for k, v := range c.basePlaceholders {
		out[k] = v
	}
	out["toolproof_process_directory"] = c.TempDir
	out["toolproof_process_directory_unix"] = filepath.ToSlash(c.TempDir)
	out["toolproof_test_directory"] = c.TempDir
	out["toolproof_test_directory_unix"] = filepath.ToSlash(c.TempDir)
	out["toolproof_unique_id"] = c.uniqueID
	if c.ServePort != 0 {
		out["toolproof_test_port"] = fmt.Sprintf("%d", c.ServePort)
	}
	for k, v := range stepOverlay {
		out[k] = v
	}
	return out
}

// Close tears down the server and page owned by this context, a test's
// terminal-state cleanup.
func (c *Context) Close() error {
	c.mu.Lock()
	srv, pg := c.server, c.page
	c.mu.Unlock()
	var firstErr error
	if pg != nil {
		if err := pg.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if srv != nil {
		if err := srv.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
