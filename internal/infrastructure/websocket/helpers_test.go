package websocket_test

import (
	"errors"
	"sync"

	"setlist-sync/internal/domain"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Fatal(string, ...interface{}) {}

// fakeConn records every delivered event so tests can assert on fan-out.
type fakeConn struct {
	id     string
	userID string

	mu     sync.Mutex
	sent   []map[string]interface{}
	broken bool
}

var _ domain.Connection = (*fakeConn)(nil)

func newFakeConn(id, userID string) *fakeConn {
	return &fakeConn{id: id, userID: userID}
}

func (c *fakeConn) ID() string     { return c.id }
func (c *fakeConn) UserID() string { return c.userID }

func (c *fakeConn) Send(message interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.broken {
		return errors.New("recipient unreachable")
	}
	c.sent = append(c.sent, message.(map[string]interface{}))
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.broken = true
	return nil
}

func (c *fakeConn) received() []map[string]interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]map[string]interface{}, len(c.sent))
	copy(out, c.sent)
	return out
}
