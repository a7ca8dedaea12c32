//go:build !linux

package canbridge

import (
	"context"
	"errors"

	"github.com/kstaniek/mavlink-go/internal/engine"
)

// ErrUnsupported is returned by Open on platforms without SocketCAN.
var ErrUnsupported = errors.New("canbridge: SocketCAN is only available on linux")

// ErrTxOverflow mirrors the linux build's overflow sentinel so non-linux
// builds referencing it still compile.
var ErrTxOverflow = errors.New("canbridge: tx buffer overflow (stub)")

// Device is an unusable placeholder on non-linux platforms.
type Device struct{}

// Open always fails on non-linux platforms.
func Open(iface string) (*Device, error) { return nil, ErrUnsupported }

// Close is a no-op.
func (d *Device) Close() error { return nil }

// Bridge is an unusable placeholder on non-linux platforms.
type Bridge struct{}

// NewBridge returns an inert Bridge on non-linux platforms: its Send and
// ReadLoop return ErrUnsupported. dev is always nil since Open cannot
// succeed.
func NewBridge(ctx context.Context, dev *Device, eng *engine.Engine, txBuffer int) *Bridge {
	return &Bridge{}
}

func (b *Bridge) Send(wire []byte) error { return ErrUnsupported }
func (b *Bridge) Close() error           { return nil }
func (b *Bridge) ReadLoop(ctx context.Context, onRaw func([]byte), onMessage func(*engine.ParsedMessage)) error {
	return ErrUnsupported
}
