// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webviewui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/YindSoft/webview-ebitengine/backends/headless"
	"github.com/YindSoft/webview-ebitengine/engine"
	"github.com/YindSoft/webview-ebitengine/events"
	"github.com/YindSoft/webview-ebitengine/host"
	"github.com/YindSoft/webview-ebitengine/internal/metrics"
	"github.com/YindSoft/webview-ebitengine/runner"
	"github.com/YindSoft/webview-ebitengine/window"
)

// ErrClosed is returned by operations on a closed view or UI.
var ErrClosed = errors.New("webviewui: closed")

// closeTimeout bounds how long Close waits for the runner to finish.
const closeTimeout = 5 * time.Second

// Options for creating the UI. All fields are optional.
type Options struct {
	// Backend renders the views. Defaults to the headless backend.
	Backend  engine.Backend
	TickMode engine.TickMode
	Logger   *log.Logger
	// Registerer, if set, receives the runner and host metrics.
	Registerer    prometheus.Registerer
	OnFallthrough func(runner.Request)
}

// UI drives every view from the game loop. Call Update once per Ebiten
// Update. It is not safe for concurrent use.
type UI struct {
	host    *host.Host
	log     *log.Logger
	views   []*View
	byID    map[runner.InstanceID]*View
	focused *View
	closed  bool
}

// New starts the runner thread.
func New(opts Options) *UI {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	backend := opts.Backend
	if backend == nil {
		backend = headless.New(headless.Options{Logger: logger.WithPrefix("headless")})
	}
	var m *metrics.Metrics
	if opts.Registerer != nil {
		m = metrics.New(opts.Registerer)
	}
	return &UI{
		host: host.New(backend, host.Options{
			TickMode:      opts.TickMode,
			Logger:        logger,
			Metrics:       m,
			OnFallthrough: opts.OnFallthrough,
		}),
		log:  logger.WithPrefix("ui"),
		byID: make(map[runner.InstanceID]*View),
	}
}

// Registry returns the event registry. Register events before the first
// Update.
func (u *UI) Registry() *events.Registry { return u.host.Registry() }

// Host returns the underlying host, for commands not covered by View.
func (u *UI) Host() *host.Host { return u.host }

// ViewSpec describes a new view. A zero size means window.DefaultSize.
type ViewSpec struct {
	Title       string
	Width       int
	Height      int
	Transparent bool
	Attributes  engine.Attributes
}

// NewView creates a view and waits until its engine is constructed. The
// view receives mouse input over its whole texture until SetBounds is
// called.
func (u *UI) NewView(spec ViewSpec) (*View, error) {
	if u.closed {
		return nil, ErrClosed
	}
	size := window.Size{Width: spec.Width, Height: spec.Height}
	if size == (window.Size{}) {
		size = window.DefaultSize
	}
	if err := size.Validate(); err != nil {
		return nil, err
	}
	id, err := u.host.LaunchWait(context.Background(), runner.LaunchSpec{
		Window: window.Attributes{
			Title:       spec.Title,
			Size:        size,
			Transparent: spec.Transparent,
		},
		Attributes: spec.Attributes,
	})
	if err != nil {
		return nil, fmt.Errorf("webviewui: create view: %w", err)
	}
	v := &View{
		ui:      u,
		id:      id,
		size:    size,
		texture: ebiten.NewImage(size.Width, size.Height),
		visible: true,
	}
	u.views = append(u.views, v)
	u.byID[id] = v
	u.log.Debug("view created", "view", id, "size", size)
	return v, nil
}

// Update forwards input, runs one host cycle and refreshes the textures of
// views that received a new frame.
func (u *UI) Update() error {
	if u.closed {
		return ErrClosed
	}
	mouse := cursor()
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		for _, v := range u.views {
			if v.visible && v.inBounds(mouse.x, mouse.y) {
				u.focused = v
			}
		}
	}
	for _, v := range u.views {
		v.forwardMouse(mouse)
	}
	if u.focused != nil {
		u.focused.forwardKeyboard()
	}

	updated, err := u.host.Update()
	u.sweep()
	for _, id := range updated {
		if v, ok := u.byID[id]; ok {
			v.refresh()
		}
	}
	return err
}

// Focused returns the view receiving keyboard input, or nil.
func (u *UI) Focused() *View { return u.focused }

// Close closes every view and stops the runner.
func (u *UI) Close() error {
	if u.closed {
		return nil
	}
	u.closed = true
	for _, v := range u.views {
		v.closed = true
		v.texture.Deallocate()
	}
	u.views, u.focused = nil, nil
	clear(u.byID)

	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	return u.host.Close(ctx)
}

// sweep closes views whose instance the host dropped, after a despawn
// request from the page or a failed construction.
func (u *UI) sweep() {
	for _, v := range slices.Clone(u.views) {
		if !u.host.Live(v.id) {
			u.log.Debug("view removed", "view", v.id)
			v.detach()
		}
	}
}

func (u *UI) forget(v *View) {
	delete(u.byID, v.id)
	for i, w := range u.views {
		if w == v {
			u.views = append(u.views[:i], u.views[i+1:]...)
			break
		}
	}
	if u.focused == v {
		u.focused = nil
	}
}

// Emit pushes value to the page listeners of its registered outbound
// method on view v, or on every view when v is nil.
func Emit[T any](u *UI, v *View, value T) error {
	var id runner.InstanceID
	if v != nil {
		if v.closed {
			return ErrClosed
		}
		id = v.id
	}
	return host.Emit(u.host, id, value)
}

// View is one web page rendered into an Ebiten image.
type View struct {
	ui      *UI
	id      runner.InstanceID
	size    window.Size
	texture *ebiten.Image
	visible bool
	closed  bool

	// Screen rectangle for mouse routing; empty means the texture area at
	// the origin.
	boundsX, boundsY, boundsW, boundsH int

	mouseX, mouseY int
	hovering       bool
	buttons        [3]bool
}

// ID returns the runner instance id of the view.
func (v *View) ID() runner.InstanceID { return v.id }

// Size returns the current view size.
func (v *View) Size() window.Size { return v.size }

// Texture returns the image holding the latest frame. It is replaced when
// the view is resized.
func (v *View) Texture() *ebiten.Image { return v.texture }

// SetBounds sets the screen rectangle the view is drawn at. Mouse input is
// only forwarded when the cursor is inside it, scaled to the view size.
// Use (0,0,0,0) to restore the default.
func (v *View) SetBounds(x, y, w, h int) {
	v.boundsX, v.boundsY, v.boundsW, v.boundsH = x, y, w, h
}

// SetFocus gives this view keyboard focus.
func (v *View) SetFocus() {
	if !v.closed {
		v.ui.focused = v
	}
}

// Eval runs script in the page. It does not wait for the result.
func (v *View) Eval(script string) error {
	return v.run(runner.RunJavascript{Script: script})
}

// LoadURL navigates to uri.
func (v *View) LoadURL(uri string) error { return v.run(runner.LoadURI{URI: uri}) }

// LoadHTML replaces the page with markup.
func (v *View) LoadHTML(markup string) error { return v.run(runner.LoadHTML{HTML: markup}) }

// Reload loads the current content again.
func (v *View) Reload() error { return v.run(runner.Reload{}) }

func (v *View) run(cmd runner.WebCommand) error {
	if v.closed {
		return ErrClosed
	}
	return v.ui.host.Send(runner.RunCommand{ID: v.id, Command: cmd})
}

// Resize changes the view size. The texture is replaced by the next frame
// of the new size.
func (v *View) Resize(w, h int) error {
	if v.closed {
		return ErrClosed
	}
	size, err := window.NewSize(w, h)
	if err != nil {
		return err
	}
	if size == v.size {
		return nil
	}
	v.size = size
	return v.ui.host.Send(runner.Resize{ID: v.id, Size: size})
}

// SetVisible shows or hides the view. Hidden views produce no frames and
// receive no input.
func (v *View) SetVisible(visible bool) error {
	if v.closed {
		return ErrClosed
	}
	v.visible = visible
	return v.ui.host.Send(runner.SetVisibility{ID: v.id, Visible: visible})
}

// Close removes the view. It is safe to call more than once.
func (v *View) Close() error {
	if v.closed {
		return nil
	}
	v.detach()
	return v.ui.host.Remove(v.id)
}

func (v *View) detach() {
	v.closed = true
	v.ui.forget(v)
	v.texture.Deallocate()
}

// Closed reports whether the view was closed, by Close or by the page.
func (v *View) Closed() bool { return v.closed }

func (v *View) refresh() {
	img := v.ui.host.Texture(v.id)
	if img == nil {
		return
	}
	if b := v.texture.Bounds(); b.Dx() != img.Width || b.Dy() != img.Height {
		v.texture.Deallocate()
		v.texture = ebiten.NewImage(img.Width, img.Height)
	}
	v.texture.WritePixels(img.Pix)
}
