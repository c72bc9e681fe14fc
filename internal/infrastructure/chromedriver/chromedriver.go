// Package chromedriver implements driver.Driver on a local Chrome through the
// DevTools protocol.
package chromedriver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/example/gym-booker/internal/driver"
	"github.com/example/gym-booker/internal/internaltypes"
)

type Options struct {
	Headless bool
	// ProfileDir is passed to Chrome as --user-data-dir so cookies and site
	// permissions survive between runs.
	ProfileDir   string
	ExecPath     string
	WindowWidth  int
	WindowHeight int
	// ActionTimeout bounds each click, keystroke or read on an element.
	// Hidden or re-rendered nodes fail with ErrNotInteractable once it passes.
	ActionTimeout time.Duration
	Logger        *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.WindowWidth <= 0 {
		o.WindowWidth = 1280
	}
	if o.WindowHeight <= 0 {
		o.WindowHeight = 900
	}
	if o.ActionTimeout <= 0 {
		o.ActionTimeout = 10 * time.Second
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

func (o Options) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", o.Headless),
		chromedp.WindowSize(o.WindowWidth, o.WindowHeight),
	)
	if o.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(o.ExecPath))
	}
	if o.ProfileDir != "" {
		opts = append(opts, chromedp.UserDataDir(o.ProfileDir))
	}
	return opts
}

type Driver struct {
	log           *zap.Logger
	actionTimeout time.Duration

	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc

	mu     sync.Mutex
	epoch  uint64
	closed bool
}

var _ driver.Driver = (*Driver)(nil)

// New launches Chrome and opens one tab. The browser lives until Close or
// until ctx is cancelled.
func New(ctx context.Context, opts Options) (*Driver, error) {
	opts = opts.withDefaults()
	sugar := opts.Logger.Sugar()

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts.allocatorOptions()...)
	browserCtx, cancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(sugar.Debugf),
		chromedp.WithErrorf(sugar.Debugf),
	)
	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("start chrome: %w", err)
	}
	opts.Logger.Info("browser started",
		zap.Bool("headless", opts.Headless),
		zap.String("profile_dir", opts.ProfileDir))

	return &Driver{
		log:           opts.Logger,
		actionTimeout: opts.ActionTimeout,
		ctx:           browserCtx,
		cancel:        cancel,
		allocCancel:   allocCancel,
	}, nil
}

// run executes actions on the tab, aborting when either the caller's ctx or
// the browser's ctx ends.
func (d *Driver) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := d.check(ctx); err != nil {
		return err
	}
	runCtx, cancel := context.WithCancel(d.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (d *Driver) check(ctx context.Context) error {
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return driver.ErrClosed
	}
	return ctx.Err()
}

func (d *Driver) currentEpoch() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.epoch
}

func (d *Driver) bump() {
	d.mu.Lock()
	d.epoch++
	d.mu.Unlock()
}

func (d *Driver) Navigate(ctx context.Context, url string) error {
	d.bump()
	if err := d.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func (d *Driver) Reload(ctx context.Context) error {
	d.bump()
	if err := d.run(ctx, chromedp.Reload()); err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	return nil
}

func (d *Driver) FindAll(ctx context.Context, loc driver.Locator) ([]driver.Element, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	epoch := d.currentEpoch()
	var nodes []*cdp.Node
	if err := d.run(ctx, chromedp.Nodes(loc.CSS(), &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0))); err != nil {
		return nil, fmt.Errorf("find %s: %w", loc, err)
	}
	return d.wrap(nodes, loc.String(), epoch), nil
}

func (d *Driver) WaitPresent(ctx context.Context, loc driver.Locator, timeout time.Duration) error {
	if err := loc.Validate(); err != nil {
		return err
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := d.run(waitCtx, chromedp.WaitReady(loc.CSS(), chromedp.ByQuery))
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s after %s: %w", loc, timeout, driver.ErrWaitTimeout)
	default:
		return fmt.Errorf("wait %s: %w", loc, err)
	}
}

func (d *Driver) ScrollToBottom(ctx context.Context) error {
	var ok bool
	if err := d.run(ctx, chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight); true`, &ok)); err != nil {
		return fmt.Errorf("scroll: %w", err)
	}
	return nil
}

// Close shuts the browser down. It is safe to call more than once.
func (d *Driver) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	err := chromedp.Cancel(d.ctx)
	d.cancel()
	d.allocCancel()
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("close chrome: %w", err)
	}
	d.log.Info("browser closed")
	return nil
}

func (d *Driver) wrap(nodes []*cdp.Node, path string, epoch uint64) []driver.Element {
	out := make([]driver.Element, 0, len(nodes))
	for i, n := range nodes {
		out = append(out, &element{d: d, node: n, path: path, index: i, epoch: epoch})
	}
	return out
}

type element struct {
	d     *Driver
	node  *cdp.Node
	path  string
	index int
	epoch uint64
}

func (e *element) String() string { return fmt.Sprintf("%s[%d]", e.path, e.index) }

func (e *element) live() error {
	if cur := e.d.currentEpoch(); cur != e.epoch {
		return fmt.Errorf("%s from page %d (current %d): %w", e, e.epoch, cur, driver.ErrStaleElement)
	}
	return nil
}

func (e *element) ids() []cdp.NodeID { return []cdp.NodeID{e.node.NodeID} }

// act runs actions against the element under the action timeout. chromedp
// retries node queries until its context ends.
func (e *element) act(ctx context.Context, verb string, actions ...chromedp.Action) error {
	actCtx, cancel := context.WithTimeout(ctx, e.d.actionTimeout)
	defer cancel()

	err := e.d.run(actCtx, actions...)
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s %s after %s: %w", verb, e, e.d.actionTimeout, internaltypes.ErrNotInteractable)
	default:
		return fmt.Errorf("%s %s: %w", verb, e, err)
	}
}

func (e *element) Click(ctx context.Context) error {
	if err := e.live(); err != nil {
		return err
	}
	return e.act(ctx, "click", chromedp.Click(e.ids(), chromedp.ByNodeID))
}

func (e *element) SendKeys(ctx context.Context, text string) error {
	if err := e.live(); err != nil {
		return err
	}
	return e.act(ctx, "type into", chromedp.SendKeys(e.ids(), text, chromedp.ByNodeID))
}

func (e *element) Attribute(ctx context.Context, name string) (string, bool, error) {
	if err := e.live(); err != nil {
		return "", false, err
	}
	var (
		value string
		ok    bool
	)
	if err := e.act(ctx, "read "+name+" of", chromedp.AttributeValue(e.ids(), name, &value, &ok, chromedp.ByNodeID)); err != nil {
		return "", false, err
	}
	return value, ok, nil
}

func (e *element) FindAll(ctx context.Context, loc driver.Locator) ([]driver.Element, error) {
	if err := e.live(); err != nil {
		return nil, err
	}
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	var nodes []*cdp.Node
	err := e.act(ctx, "find "+loc.String()+" in", chromedp.Nodes(loc.CSS(), &nodes,
		chromedp.ByQueryAll, chromedp.FromNode(e.node), chromedp.AtLeast(0)))
	if err != nil {
		return nil, err
	}
	return e.d.wrap(nodes, e.path+" > "+loc.String(), e.epoch), nil
}
