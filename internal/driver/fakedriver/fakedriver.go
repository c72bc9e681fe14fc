// Package fakedriver is an in-memory driver.Driver backed by static HTML.
//
// Each navigation or reload renders the page again and starts a new
// generation, so handles from an older generation are rejected just like a
// real browser invalidates them. Every interaction is recorded.
package fakedriver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/example/gym-booker/internal/driver"
)

// Page renders the HTML served for a URL. It is called on every navigation
// and reload, so it can reflect state changed by click handlers.
type Page func() string

type Click struct {
	// Path is the chain of lookups that produced the element, e.g.
	// "id=day-number-2 > class=class-action".
	Path       string
	Index      int
	Attrs      map[string]string
	Generation int
}

// On reports whether the last lookup that produced the element was loc.
func (c Click) On(loc driver.Locator) bool {
	last := loc.String()
	return c.Path == last || strings.HasSuffix(c.Path, " > "+last)
}

type Typed struct {
	Path  string
	Index int
	Text  string
}

type Browser struct {
	pages map[string]Page

	// OnClick runs after a click is recorded.
	OnClick func(Click)

	url        string
	doc        *goquery.Document
	generation int
	closed     bool

	Navigations []string
	Reloads     int
	Clicks      []Click
	Typed       []Typed
	Waits       []string
	Scrolls     int
}

var _ driver.Driver = (*Browser)(nil)

func New(pages map[string]Page) *Browser {
	return &Browser{pages: pages}
}

// Interactions counts every call that would have touched a real browser.
func (b *Browser) Interactions() int {
	return len(b.Navigations) + b.Reloads + len(b.Clicks) + len(b.Typed) + len(b.Waits) + b.Scrolls
}

func (b *Browser) Generation() int { return b.generation }

func (b *Browser) URL() string { return b.url }

func (b *Browser) Closed() bool { return b.closed }

// ClicksOn returns the recorded clicks whose last lookup was loc.
func (b *Browser) ClicksOn(loc driver.Locator) []Click {
	var out []Click
	for _, c := range b.Clicks {
		if c.On(loc) {
			out = append(out, c)
		}
	}
	return out
}

func (b *Browser) Navigate(ctx context.Context, url string) error {
	if err := b.check(ctx); err != nil {
		return err
	}
	b.Navigations = append(b.Navigations, url)
	return b.render(url)
}

func (b *Browser) Reload(ctx context.Context) error {
	if err := b.check(ctx); err != nil {
		return err
	}
	if b.url == "" {
		return fmt.Errorf("reload: no page loaded")
	}
	b.Reloads++
	return b.render(b.url)
}

func (b *Browser) FindAll(ctx context.Context, loc driver.Locator) ([]driver.Element, error) {
	if err := b.check(ctx); err != nil {
		return nil, err
	}
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	if b.doc == nil {
		return nil, nil
	}
	return b.wrap(b.doc.Find(loc.CSS()), loc.String()), nil
}

func (b *Browser) WaitPresent(ctx context.Context, loc driver.Locator, timeout time.Duration) error {
	if err := b.check(ctx); err != nil {
		return err
	}
	if err := loc.Validate(); err != nil {
		return err
	}
	b.Waits = append(b.Waits, loc.String())
	if b.doc != nil && b.doc.Find(loc.CSS()).Length() > 0 {
		return nil
	}
	return fmt.Errorf("%s after %s: %w", loc, timeout, driver.ErrWaitTimeout)
}

func (b *Browser) ScrollToBottom(ctx context.Context) error {
	if err := b.check(ctx); err != nil {
		return err
	}
	b.Scrolls++
	return nil
}

func (b *Browser) Close() error {
	b.closed = true
	return nil
}

func (b *Browser) check(ctx context.Context) error {
	if b.closed {
		return driver.ErrClosed
	}
	return ctx.Err()
}

func (b *Browser) render(url string) error {
	page, ok := b.pages[url]
	if !ok {
		return fmt.Errorf("navigate %s: no such page", url)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page()))
	if err != nil {
		return fmt.Errorf("parse %s: %w", url, err)
	}
	b.url = url
	b.doc = doc
	b.generation++
	return nil
}

func (b *Browser) wrap(sel *goquery.Selection, path string) []driver.Element {
	out := make([]driver.Element, 0, sel.Length())
	sel.Each(func(i int, s *goquery.Selection) {
		out = append(out, &element{b: b, sel: s, path: path, index: i, generation: b.generation})
	})
	return out
}

type element struct {
	b          *Browser
	sel        *goquery.Selection
	path       string
	index      int
	generation int
}

func (e *element) live(ctx context.Context) error {
	if err := e.b.check(ctx); err != nil {
		return err
	}
	if e.generation != e.b.generation {
		return fmt.Errorf("%s[%d] from generation %d (current %d): %w",
			e.path, e.index, e.generation, e.b.generation, driver.ErrStaleElement)
	}
	return nil
}

func (e *element) Click(ctx context.Context) error {
	if err := e.live(ctx); err != nil {
		return err
	}
	c := Click{Path: e.path, Index: e.index, Attrs: attrs(e.sel), Generation: e.generation}
	e.b.Clicks = append(e.b.Clicks, c)
	if e.b.OnClick != nil {
		e.b.OnClick(c)
	}
	return nil
}

func (e *element) SendKeys(ctx context.Context, text string) error {
	if err := e.live(ctx); err != nil {
		return err
	}
	e.b.Typed = append(e.b.Typed, Typed{Path: e.path, Index: e.index, Text: text})
	return nil
}

func (e *element) Attribute(ctx context.Context, name string) (string, bool, error) {
	if err := e.live(ctx); err != nil {
		return "", false, err
	}
	v, ok := e.sel.Attr(name)
	return v, ok, nil
}

func (e *element) FindAll(ctx context.Context, loc driver.Locator) ([]driver.Element, error) {
	if err := e.live(ctx); err != nil {
		return nil, err
	}
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	return e.b.wrap(e.sel.Find(loc.CSS()), e.path+" > "+loc.String()), nil
}

func attrs(s *goquery.Selection) map[string]string {
	out := map[string]string{}
	if len(s.Nodes) == 0 {
		return out
	}
	for _, a := range s.Nodes[0].Attr {
		out[a.Key] = a.Val
	}
	return out
}
