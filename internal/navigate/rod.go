package navigate

import (
	"context"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// RodOptions configures the Chrome launcher.
type RodOptions struct {
	Headless  bool
	NoSandbox bool
	Bin       string
	Proxy     string
	Stealth   bool
	UserAgent string
}

// RodBrowser drives a local Chrome through the DevTools protocol.
type RodBrowser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	opts     RodOptions
}

// NewRodBrowser launches Chrome and connects to it. A failure here is fatal
// for the run.
func NewRodBrowser(opts RodOptions) (*RodBrowser, error) {
	l := launcher.New().
		Headless(opts.Headless).
		NoSandbox(opts.NoSandbox)
	if opts.Bin != "" {
		l = l.Bin(opts.Bin)
	}
	if opts.Proxy != "" {
		l = l.Proxy(opts.Proxy)
	}

	// Hide the automation markers marketplaces fingerprint.
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, eris.Wrap(err, "navigate: launch browser")
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, eris.Wrap(err, "navigate: connect browser")
	}

	zap.L().Info("navigate: browser launched",
		zap.Bool("headless", opts.Headless),
		zap.Bool("stealth", opts.Stealth),
	)

	return &RodBrowser{browser: browser, launcher: l, opts: opts}, nil
}

// NewPage opens a tab, with stealth evasions installed when enabled.
func (b *RodBrowser) NewPage(_ context.Context) (Page, error) {
	var (
		page *rod.Page
		err  error
	)
	if b.opts.Stealth {
		page, err = stealth.Page(b.browser)
	} else {
		page, err = b.browser.Page(proto.TargetCreateTarget{})
	}
	if err != nil {
		return nil, eris.Wrap(err, "navigate: open page")
	}

	if b.opts.UserAgent != "" {
		if uaErr := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: b.opts.UserAgent}); uaErr != nil {
			zap.L().Warn("navigate: set user agent failed", zap.Error(uaErr))
		}
	}
	return &rodPage{page: page}, nil
}

// Close shuts the browser down and kills the process.
func (b *RodBrowser) Close() error {
	err := b.browser.Close()
	b.launcher.Kill()
	if err != nil {
		return eris.Wrap(err, "navigate: close browser")
	}
	return nil
}

type rodPage struct {
	page *rod.Page
}

func (r *rodPage) Load(ctx context.Context, url string, timeout time.Duration) error {
	return loadWithFallback(ctx, url, timeout, r.navigate)
}

func (r *rodPage) navigate(ctx context.Context, url string, cond WaitCondition) error {
	p := r.page.Context(ctx)
	switch cond {
	case WaitDOMContentLoaded:
		wait := p.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)
		if err := p.Navigate(url); err != nil {
			return err
		}
		wait()
		return ctx.Err()
	default:
		if err := p.Navigate(url); err != nil {
			return err
		}
		return p.WaitLoad()
	}
}

func (r *rodPage) ForceLazyRender(ctx context.Context, steps int, pause time.Duration) {
	p := r.page.Context(ctx)
	for i := 0; i < steps; i++ {
		if err := p.Mouse.Scroll(0, ScrollDelta, 1); err != nil {
			if _, evalErr := p.Eval(`(d) => window.scrollBy(0, d)`, ScrollDelta); evalErr != nil {
				zap.L().Debug("navigate: scroll failed", zap.Int("step", i), zap.Error(evalErr))
				return
			}
		}
		if !Pause(ctx, pause) {
			return
		}
	}
}

func (r *rodPage) WaitIdle(ctx context.Context, timeout time.Duration) error {
	if err := r.page.Context(ctx).WaitIdle(timeout); err != nil {
		return eris.Wrap(err, "navigate: wait idle")
	}
	return nil
}

func (r *rodPage) HTML(ctx context.Context) (string, error) {
	html, err := r.page.Context(ctx).HTML()
	if err != nil {
		return "", eris.Wrap(err, "navigate: read html")
	}
	return html, nil
}

func (r *rodPage) Close() error {
	return r.page.Close()
}
