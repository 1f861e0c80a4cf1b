package registry

import (
	"fmt"
	"net/url"
	"strings"

	"toolproof/internal/runctx"
	"toolproof/internal/serve"
	"toolproof/internal/toolerr"
	"toolproof/internal/value"
)

// RegisterBrowser installs the §4.5 browser driver handlers. They all
// require ctx.Page() to already be set by the scheduler before the test's
// first browser step runs.
func RegisterBrowser(r *Registry) {
	r.RegisterBrowserInstruction("I load {url}", func(ctx *runctx.Context, args map[string]string) error {
		page, err := requirePage(ctx)
		if err != nil {
			return err
		}
		target := resolveURL(ctx, args["url"])
		return page.Load(target)
	})

	r.RegisterBrowserInstruction("I evaluate {js}", func(ctx *runctx.Context, args map[string]string) error {
		page, err := requirePage(ctx)
		if err != nil {
			return err
		}
		_, err = page.Evaluate(args["js"])
		return err
	})

	r.RegisterBrowserRetrieval("the result of {js}", func(ctx *runctx.Context, args map[string]string) (value.Value, error) {
		page, err := requirePage(ctx)
		if err != nil {
			return value.Null(), err
		}
		res, err := page.Evaluate(fmt.Sprintf("return %s;", args["js"]))
		if err != nil {
			return value.Null(), err
		}
		return value.FromJSON(res), nil
	})

	r.RegisterBrowserInstruction("I click {text}", func(ctx *runctx.Context, args map[string]string) error {
		page, err := requirePage(ctx)
		if err != nil {
			return err
		}
		return page.Click(args["text"], true)
	})
	r.RegisterBrowserInstruction("I hover {text}", func(ctx *runctx.Context, args map[string]string) error {
		page, err := requirePage(ctx)
		if err != nil {
			return err
		}
		return page.Hover(args["text"], true)
	})
	r.RegisterBrowserInstruction("I click the selector {selector}", func(ctx *runctx.Context, args map[string]string) error {
		page, err := requirePage(ctx)
		if err != nil {
			return err
		}
		return page.Click(args["selector"], false)
	})
	r.RegisterBrowserInstruction("I hover the selector {selector}", func(ctx *runctx.Context, args map[string]string) error {
		page, err := requirePage(ctx)
		if err != nil {
			return err
		}
		return page.Hover(args["selector"], false)
	})
	r.RegisterBrowserInstruction("I scroll to the selector {selector}", func(ctx *runctx.Context, args map[string]string) error {
		page, err := requirePage(ctx)
		if err != nil {
			return err
		}
		return page.ScrollTo(args["selector"], false)
	})

	r.RegisterBrowserInstruction("I type {text}", func(ctx *runctx.Context, args map[string]string) error {
		page, err := requirePage(ctx)
		if err != nil {
			return err
		}
		return page.Type(args["text"])
	})

	r.RegisterBrowserInstruction("I press the {keyname} key", func(ctx *runctx.Context, args map[string]string) error {
		page, err := requirePage(ctx)
		if err != nil {
			return err
		}
		return page.PressKey(args["keyname"])
	})

	r.RegisterBrowserInstruction("I screenshot the viewport to {filepath}", func(ctx *runctx.Context, args map[string]string) error {
		page, err := requirePage(ctx)
		if err != nil {
			return err
		}
		path, err := ctx.ResolvePath(args["filepath"])
		if err != nil {
			return toolerr.Wrap(toolerr.FileEscapesTempDir, -1, args["filepath"], err)
		}
		return page.ScreenshotViewport(path)
	})

	r.RegisterBrowserInstruction("I screenshot the element {selector} to {filepath}", func(ctx *runctx.Context, args map[string]string) error {
		page, err := requirePage(ctx)
		if err != nil {
			return err
		}
		path, err := ctx.ResolvePath(args["filepath"])
		if err != nil {
			return toolerr.Wrap(toolerr.FileEscapesTempDir, -1, args["filepath"], err)
		}
		return page.ScreenshotElement(args["selector"], path)
	})

	r.RegisterBrowserRetrieval("the console", func(ctx *runctx.Context, args map[string]string) (value.Value, error) {
		page, err := requirePage(ctx)
		if err != nil {
			return value.Null(), err
		}
		lines := page.Console()
		seq := make([]value.Value, len(lines))
		for i, l := range lines {
			seq[i] = value.String(l)
		}
		return value.Sequence(seq), nil
	})
}

func requirePage(ctx *runctx.Context) (runctx.Page, error) {
	p := ctx.Page()
	if p == nil {
		return nil, toolerr.New(toolerr.BrowserUnavailable, -1, "no browser page is active for this test")
	}
	return p, nil
}

// resolveURL implements the `I load` scheme resolution: scheme-less URLs
// resolve against the test's own HTTP server.
func resolveURL(ctx *runctx.Context, raw string) string {
	if u, err := url.Parse(raw); err == nil && u.Scheme != "" {
		return raw
	}
	if !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}
	return serve.ResolveURL(ctx.ServePort, raw)
}
