package htmldoc

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/atlasharvest/internal/provider"
)

// Document is a provider.Document over static markup.
type Document struct {
	fetcher Fetcher
	logger  *slog.Logger

	mu      sync.Mutex
	current *url.URL
	doc     *goquery.Document
	closed  bool
}

var _ provider.Document = (*Document)(nil)

// Option configures a Document.
type Option func(*Document)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Document) {
		d.logger = logger
	}
}

// New creates a Document that loads pages through fetcher.
func New(fetcher Fetcher, opts ...Option) *Document {
	d := &Document{
		fetcher: fetcher,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// URL returns the URL of the loaded page, or "" before the first Load.
func (d *Document) URL() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.current == nil {
		return ""
	}
	return d.current.String()
}

// Load implements provider.Document.
func (d *Document) Load(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	return d.navigate(ctx, u)
}

func (d *Document) navigate(ctx context.Context, u *url.URL) error {
	if d.isClosed() {
		return provider.ErrClosed
	}

	body, err := d.fetcher.Fetch(ctx, u.String())
	if err != nil {
		return err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", u, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return provider.ErrClosed
	}
	d.current = u
	d.doc = doc

	d.logger.Debug("page loaded", "url", u.String())
	return nil
}

// Find implements provider.Document.
func (d *Document) Find(q provider.Query) (provider.Element, error) {
	sel, err := d.find(q)
	if err != nil {
		return nil, err
	}
	if sel.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", provider.ErrNotFound, q)
	}
	return &Element{sel: sel.First()}, nil
}

// FindAll implements provider.Document.
func (d *Document) FindAll(q provider.Query) ([]provider.Element, error) {
	sel, err := d.find(q)
	if err != nil {
		return nil, err
	}
	return wrap(sel), nil
}

func (d *Document) find(q provider.Query) (*goquery.Selection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, provider.ErrClosed
	}
	if d.doc == nil {
		return nil, provider.ErrNotLoaded
	}
	return d.doc.Find(q.Selector()), nil
}

// Click implements provider.Document.
func (d *Document) Click(ctx context.Context, el provider.Element) error {
	e, err := own(el)
	if err != nil {
		return err
	}
	if !e.Interactable() {
		return provider.ErrNotInteractable
	}
	return d.follow(ctx, e)
}

// Invoke implements provider.Document. It follows the same target as Click
// but ignores visibility and disabled state.
func (d *Document) Invoke(ctx context.Context, el provider.Element) error {
	e, err := own(el)
	if err != nil {
		return err
	}
	return d.follow(ctx, e)
}

func (d *Document) follow(ctx context.Context, e *Element) error {
	target, ok := actionTarget(e)
	if !ok {
		return ErrNoAction
	}

	next, err := d.resolve(target)
	if err != nil {
		return err
	}
	return d.navigate(ctx, next)
}

// SelectOption implements provider.Document.
func (d *Document) SelectOption(ctx context.Context, el provider.Element, value string) error {
	e, err := own(el)
	if err != nil {
		return err
	}
	if goquery.NodeName(e.sel) != "select" {
		return ErrNotSelect
	}
	if !e.Interactable() {
		return provider.ErrNotInteractable
	}

	found := false
	e.sel.Find("option").EachWithBreak(func(_ int, opt *goquery.Selection) bool {
		v, ok := opt.Attr("value")
		if !ok {
			v = strings.TrimSpace(opt.Text())
		}
		found = v == value
		return !found
	})
	if !found {
		return fmt.Errorf("%w: %q", ErrOptionNotFound, value)
	}

	name, _ := e.sel.Attr("name")
	if name == "" {
		return fmt.Errorf("%w: select has no name", ErrNoAction)
	}

	d.mu.Lock()
	if d.current == nil {
		d.mu.Unlock()
		return provider.ErrNotLoaded
	}
	next := *d.current
	d.mu.Unlock()

	query := next.Query()
	query.Set(name, value)
	next.RawQuery = query.Encode()
	return d.navigate(ctx, &next)
}

// Close implements provider.Document.
func (d *Document) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	d.doc = nil
	return nil
}

func (d *Document) isClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

func (d *Document) resolve(target string) (*url.URL, error) {
	ref, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("invalid link %q: %w", target, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current == nil {
		return nil, provider.ErrNotLoaded
	}
	return d.current.ResolveReference(ref), nil
}

// actionTarget returns the link an element activates: its own href or
// data-href, else that of the nearest enclosing anchor. Fragment-only and
// javascript: links do not count.
func actionTarget(e *Element) (string, bool) {
	for _, sel := range []*goquery.Selection{e.sel, e.sel.Closest("a")} {
		for _, attr := range []string{"href", "data-href"} {
			v, ok := sel.Attr(attr)
			v = strings.TrimSpace(v)
			if !ok || v == "" || strings.HasPrefix(v, "#") ||
				strings.HasPrefix(strings.ToLower(v), "javascript:") {
				continue
			}
			return v, true
		}
	}
	return "", false
}

func own(el provider.Element) (*Element, error) {
	e, ok := el.(*Element)
	if !ok || e == nil || e.sel.Length() == 0 {
		return nil, ErrForeignElement
	}
	return e, nil
}
