package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kstaniek/mavlink-go/internal/canbridge"
	"github.com/kstaniek/mavlink-go/internal/engine"
	"github.com/kstaniek/mavlink-go/internal/relay"
	"github.com/kstaniek/mavlink-go/internal/transportdemo/serialio"
)

const txQueueSize = 1024

// sendFunc transmits a MAVLink frame's wire bytes to the vehicle link.
type sendFunc func([]byte) error

// initTransport opens the configured vehicle link, starts its RX loop
// (which relays every raw byte read straight to the hub and every
// decoded message to onMessage), and returns a sender for outgoing
// frames plus a cleanup function.
func initTransport(ctx context.Context, cfg *appConfig, h *relay.Hub, eng *engine.Engine, l *slog.Logger, wg *sync.WaitGroup, onMessage func(*engine.ParsedMessage)) (sendFunc, func(), error) {
	switch cfg.transport {
	case "serial":
		return initSerialTransport(ctx, cfg, h, eng, l, wg, onMessage)
	case "canbridge":
		return initCANBridgeTransport(ctx, cfg, h, eng, l, wg, onMessage)
	default:
		return nil, func() {}, fmt.Errorf("unknown transport %q (use serial|canbridge)", cfg.transport)
	}
}

func initSerialTransport(ctx context.Context, cfg *appConfig, h *relay.Hub, eng *engine.Engine, l *slog.Logger, wg *sync.WaitGroup, onMessage func(*engine.ParsedMessage)) (sendFunc, func(), error) {
	port, err := serialio.Open(cfg.serialDev, cfg.baud, cfg.serialReadTO)
	if err != nil {
		return nil, func() {}, fmt.Errorf("open serial: %w", err)
	}
	l.Info("serial_open", "device", cfg.serialDev, "baud", cfg.baud)
	link := serialio.NewLink(ctx, port, eng, txQueueSize)

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer l.Info("serial_rx_end")
		backoff := rxBackoffMin
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			err := link.ReadLoop(ctx, func(raw []byte) { h.Broadcast(append([]byte(nil), raw...)) }, onMessage)
			if err == nil || ctx.Err() != nil {
				return
			}
			l.Warn("serial_read_error", "error", err, "backoff", backoff)
			time.Sleep(backoff)
			backoff *= 2
			if backoff > rxBackoffMax {
				backoff = rxBackoffMax
			}
		}
	}()
	return link.Send, func() { _ = link.Close() }, nil
}

const (
	rxBackoffMin = 20 * time.Millisecond
	rxBackoffMax = 500 * time.Millisecond
)

func initCANBridgeTransport(ctx context.Context, cfg *appConfig, h *relay.Hub, eng *engine.Engine, l *slog.Logger, wg *sync.WaitGroup, onMessage func(*engine.ParsedMessage)) (sendFunc, func(), error) {
	dev, err := canbridge.Open(cfg.canIf)
	if err != nil {
		return nil, func() {}, fmt.Errorf("canbridge open %s: %w", cfg.canIf, err)
	}
	l.Info("canbridge_open", "if", cfg.canIf)
	bridge := canbridge.NewBridge(ctx, dev, eng, txQueueSize)

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer l.Info("canbridge_rx_end")
		backoff := rxBackoffMin
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			err := bridge.ReadLoop(ctx, func(raw []byte) { h.Broadcast(append([]byte(nil), raw...)) }, onMessage)
			if err == nil || ctx.Err() != nil {
				return
			}
			l.Warn("canbridge_read_error", "error", err, "backoff", backoff)
			time.Sleep(backoff)
			backoff *= 2
			if backoff > rxBackoffMax {
				backoff = rxBackoffMax
			}
		}
	}()
	return bridge.Send, func() { _ = bridge.Close() }, nil
}
