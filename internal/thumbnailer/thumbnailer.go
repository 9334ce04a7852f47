package thumbnailer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"

	"thumbq/internal/logging"
	"thumbq/internal/mediatypes"
	"thumbq/internal/uri"
)

// D-Bus names of the thumbnailer service.
const (
	BusName    = "org.freedesktop.thumbnails.Thumbnailer1"
	ObjectPath = dbus.ObjectPath("/org/freedesktop/thumbnails/Thumbnailer1")
	Interface  = "org.freedesktop.thumbnails.Thumbnailer1"
)

// DefaultTimeout bounds every method call.
const DefaultTimeout = time.Second

// IdleTimeout ends a wait when the service has been silent this long.
const IdleTimeout = 60 * time.Second

// Observer receives call instrumentation.
type Observer interface {
	ObserveCall(method string, duration time.Duration, err error)
	ObserveQueued(n int)
}

// caller is the subset of dbus.BusObject used by the client.
type caller interface {
	CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

// signaler is the subset of *dbus.Conn used for signal delivery.
type signaler interface {
	AddMatchSignal(options ...dbus.MatchOption) error
	RemoveMatchSignal(options ...dbus.MatchOption) error
	Signal(ch chan<- *dbus.Signal)
	RemoveSignal(ch chan<- *dbus.Signal)
}

// Client talks to the thumbnailer service over a bus connection.
type Client struct {
	conn     *dbus.Conn
	obj      caller
	bus      caller
	signals  signaler
	timeout  time.Duration
	observer Observer
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithObserver installs call instrumentation.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// Connect opens a private session bus connection.
func Connect(opts ...Option) (*Client, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	c := &Client{
		conn:    conn,
		obj:     conn.Object(BusName, ObjectPath),
		bus:     conn.BusObject(),
		signals: conn,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *Client) call(ctx context.Context, method string, args ...interface{}) *dbus.Call {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	call := c.obj.CallWithContext(ctx, Interface+"."+method, 0, args...)
	if c.observer != nil {
		c.observer.ObserveCall(method, time.Since(start), call.Err)
	}
	if call.Err != nil {
		logging.Debug("thumbnailer: %s failed: %v", method, call.Err)
	}
	return call
}

// Flavors lists the thumbnail flavors the service can produce.
func (c *Client) Flavors(ctx context.Context) ([]string, error) {
	var flavors []string
	if err := c.call(ctx, "GetFlavors").Store(&flavors); err != nil {
		return nil, fmt.Errorf("GetFlavors: %w", err)
	}
	return flavors, nil
}

// Schedulers lists the request schedulers the service offers.
func (c *Client) Schedulers(ctx context.Context) ([]string, error) {
	var schedulers []string
	if err := c.call(ctx, "GetSchedulers").Store(&schedulers); err != nil {
		return nil, fmt.Errorf("GetSchedulers: %w", err)
	}
	return schedulers, nil
}

// Supported returns the MIME types the service can thumbnail.
func (c *Client) Supported(ctx context.Context) ([]string, error) {
	var schemes, mimes []string
	if err := c.call(ctx, "GetSupported").Store(&schemes, &mimes); err != nil {
		return nil, fmt.Errorf("GetSupported: %w", err)
	}
	return mimes, nil
}

// SupportedRequest is an in-flight GetSupported call.
type SupportedRequest struct {
	done  chan struct{}
	allow mediatypes.AllowList
	err   error
}

// RequestSupported starts fetching the supported MIME types in the
// background.
func (c *Client) RequestSupported(ctx context.Context) *SupportedRequest {
	r := &SupportedRequest{done: make(chan struct{})}
	go func() {
		defer close(r.done)
		mimes, err := c.Supported(ctx)
		if err != nil {
			r.err = err
			return
		}
		r.allow = mediatypes.NewAllowList(mimes)
		logging.Debug("thumbnailer: %d supported MIME types", r.allow.Len())
	}()
	return r
}

// Wait blocks until the reply arrives. It may be called from any number of
// goroutines.
func (r *SupportedRequest) Wait() (mediatypes.AllowList, error) {
	<-r.done
	return r.allow, r.err
}

// Queue asks the service to generate thumbnails for uris, whose MIME types
// are given pairwise in mimes. It returns the request handle.
func (c *Client) Queue(ctx context.Context, uris, mimes []string, flavor, scheduler string) (uint32, error) {
	if len(uris) != len(mimes) {
		return 0, fmt.Errorf("Queue: %d uris but %d mime types", len(uris), len(mimes))
	}
	var handle uint32
	if err := c.call(ctx, "Queue", uris, mimes, flavor, scheduler, uint32(0)).Store(&handle); err != nil {
		return 0, fmt.Errorf("Queue: %w", err)
	}
	if c.observer != nil {
		c.observer.ObserveQueued(len(uris))
	}
	logging.Info("Queued %d thumbnails (flavor=%s scheduler=%s handle=%d)", len(uris), flavor, scheduler, handle)
	return handle, nil
}

// Subscription delivers Ready and Finished signals of the service.
type Subscription struct {
	signals signaler
	opts    []dbus.MatchOption
	ch      chan *dbus.Signal
}

// Subscribe starts receiving thumbnailer signals. Call Close when done.
func (c *Client) Subscribe() (*Subscription, error) {
	s := &Subscription{
		signals: c.signals,
		opts: []dbus.MatchOption{
			dbus.WithMatchObjectPath(ObjectPath),
			dbus.WithMatchInterface(Interface),
		},
		ch: make(chan *dbus.Signal, 64),
	}
	if err := s.signals.AddMatchSignal(s.opts...); err != nil {
		return nil, fmt.Errorf("failed to add signal match: %w", err)
	}
	s.signals.Signal(s.ch)
	return s, nil
}

// Close stops signal delivery.
func (s *Subscription) Close() error {
	s.signals.RemoveSignal(s.ch)
	return s.signals.RemoveMatchSignal(s.opts...)
}

// Wait reports the path of every thumbnail the service announces as Ready
// for handle. It returns when the service sends Finished for handle, when
// no signal arrives for idle, or when ctx is done.
func (s *Subscription) Wait(ctx context.Context, handle uint32, idle time.Duration, ready func(path string)) error {
	timer := time.NewTimer(idle)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			logging.Debug("thumbnailer: no signal for %s, giving up on handle %d", idle, handle)
			return nil
		case sig, ok := <-s.ch:
			if !ok {
				return errors.New("signal channel closed")
			}
			timer.Reset(idle)

			switch sig.Name {
			case Interface + ".Ready":
				h, uris, ok := readyBody(sig)
				if ok && h == handle {
					emitPaths(uris, ready)
				}
			case Interface + ".Finished":
				if len(sig.Body) == 1 {
					if h, ok := sig.Body[0].(uint32); ok && h == handle {
						return nil
					}
				}
			}
		}
	}
}

// Listen turns the connection into a bus monitor for Ready signals of the
// service and reports every announced thumbnail source path until ctx is
// done.
func (c *Client) Listen(ctx context.Context, ready func(path string)) error {
	rule := fmt.Sprintf("type='signal',interface='%s',path='%s',member='Ready'", Interface, ObjectPath)

	ch := make(chan *dbus.Signal, 64)
	c.signals.Signal(ch)
	defer c.signals.RemoveSignal(ch)

	call := c.bus.CallWithContext(ctx, "org.freedesktop.DBus.Monitoring.BecomeMonitor", 0, []string{rule}, uint32(0))
	if call.Err != nil {
		return fmt.Errorf("BecomeMonitor: %w", call.Err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sig, ok := <-ch:
			if !ok {
				return nil
			}
			if _, uris, ok := readyBody(sig); ok {
				emitPaths(uris, ready)
			}
		}
	}
}

func readyBody(sig *dbus.Signal) (uint32, []string, bool) {
	if len(sig.Body) != 2 {
		return 0, nil, false
	}
	handle, ok := sig.Body[0].(uint32)
	if !ok {
		return 0, nil, false
	}
	uris, ok := sig.Body[1].([]string)
	if !ok {
		return 0, nil, false
	}
	return handle, uris, true
}

func emitPaths(uris []string, ready func(path string)) {
	for _, u := range uris {
		if path, ok := uri.Path(u); ok {
			ready(path)
		}
	}
}
