//go:build linux

package canbridge

import (
	"context"
	"errors"

	"github.com/kstaniek/mavlink-go/internal/engine"
	"github.com/kstaniek/mavlink-go/internal/metrics"
	"github.com/kstaniek/mavlink-go/internal/transport"
)

// ErrTxOverflow is returned by Bridge.Send when the chunk transmit queue
// is full.
var ErrTxOverflow = errors.New("canbridge: tx buffer overflow")

// Bridge funnels a MAVLink engine's wire frames over a Device, 8 bytes at
// a time, and reassembles received chunks back into messages.
type Bridge struct {
	dev *Device
	eng *engine.Engine
	tx  *transport.AsyncTx[[]byte]
}

// NewBridge wires dev to eng. txBuffer sizes the outgoing chunk queue.
func NewBridge(ctx context.Context, dev *Device, eng *engine.Engine, txBuffer int) *Bridge {
	b := &Bridge{dev: dev, eng: eng}
	b.tx = transport.NewAsyncTx(ctx, txBuffer, dev.WriteChunk, transport.Hooks{
		OnError: func(err error) { metrics.IncError(metrics.ErrTransportWrite) },
		OnDrop:  func() error { metrics.IncError(metrics.ErrTransportWrite); return ErrTxOverflow },
	})
	return b
}

// Send chunks wire bytes into 8-byte CAN frames and queues them.
func (b *Bridge) Send(wire []byte) error {
	for i := 0; i < len(wire); i += 8 {
		end := i + 8
		if end > len(wire) {
			end = len(wire)
		}
		if err := b.tx.Send(wire[i:end]); err != nil {
			return err
		}
	}
	metrics.IncFramesSerialized()
	return nil
}

// Close stops the transmit worker and closes the device.
func (b *Bridge) Close() error {
	b.tx.Close()
	return b.dev.Close()
}

// ReadLoop blocks reading chunks from the device. Each reassembled chunk
// is passed to onRaw verbatim before being fed to the engine, which
// invokes onMessage for each decoded message, until ctx is cancelled or
// the device errors. Either callback may be nil.
func (b *Bridge) ReadLoop(ctx context.Context, onRaw func([]byte), onMessage func(*engine.ParsedMessage)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		chunk, err := b.dev.ReadChunk()
		if err != nil {
			return err
		}
		if onRaw != nil {
			onRaw(chunk)
		}
		for _, pm := range b.eng.ParseBytes(chunk) {
			metrics.IncFramesParsed()
			if !pm.Frame.CRCOK {
				metrics.IncCRCFailure()
			}
			if onMessage != nil {
				onMessage(pm)
			}
		}
	}
}
