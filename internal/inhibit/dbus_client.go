package inhibit

import (
	"github.com/godbus/dbus/v5"
)

const (
	screenSaverDest = "org.freedesktop.ScreenSaver"
	screenSaverPath = "/org/freedesktop/ScreenSaver"
)

// DBusClient defines the interface for the D-Bus operations the
// inhibitor needs. This abstraction allows us to mock D-Bus
// interactions in tests.
//
//go:generate mockgen -destination=mocks/dbus_client_mock.go -package=mocks github.com/reverie-player/reverie/internal/inhibit DBusClient
type DBusClient interface {
	// Close closes the D-Bus connection
	Close() error

	// Inhibit requests a suspend/idle inhibition and returns its cookie.
	// who names the requesting application, why the human-readable reason.
	Inhibit(who, why string) (uint32, error)

	// UnInhibit releases the inhibition identified by cookie
	UnInhibit(cookie uint32) error
}

// StdDBusClient is the real implementation using godbus against the
// org.freedesktop.ScreenSaver service on the session bus
type StdDBusClient struct {
	conn *dbus.Conn
}

// NewStdDBusClient creates a real D-Bus client connected to the session bus
func NewStdDBusClient() (*StdDBusClient, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, err
	}
	return &StdDBusClient{conn: conn}, nil
}

// Close closes the D-Bus connection
func (c *StdDBusClient) Close() error {
	return c.conn.Close()
}

// Inhibit requests a suspend/idle inhibition and returns its cookie
func (c *StdDBusClient) Inhibit(who, why string) (uint32, error) {
	var cookie uint32
	obj := c.conn.Object(screenSaverDest, dbus.ObjectPath(screenSaverPath))
	err := obj.Call(screenSaverDest+".Inhibit", 0, who, why).Store(&cookie)
	return cookie, err
}

// UnInhibit releases the inhibition identified by cookie
func (c *StdDBusClient) UnInhibit(cookie uint32) error {
	obj := c.conn.Object(screenSaverDest, dbus.ObjectPath(screenSaverPath))
	return obj.Call(screenSaverDest+".UnInhibit", 0, cookie).Err
}
