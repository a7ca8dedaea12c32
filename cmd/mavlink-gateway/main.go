package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/kstaniek/mavlink-go/internal/dialect"
	"github.com/kstaniek/mavlink-go/internal/dialect/common"
	"github.com/kstaniek/mavlink-go/internal/engine"
	"github.com/kstaniek/mavlink-go/internal/metrics"
	"github.com/kstaniek/mavlink-go/internal/relay"
)

// Helper implementations live in dedicated files: version.go, config.go,
// logger.go, hub_init.go, metrics_logger.go, mdns.go, transport_init.go.

func main() {
	cfg, showVersion := parseFlags()
	if showVersion {
		fmt.Printf("mavlink-gateway %s (commit %s, built %s)\n", version, commit, date)
		return
	}
	l := setupLogger(cfg.logFormat, cfg.logLevel)
	h := initHub(cfg, l)

	cat, err := dialect.New(common.Messages())
	if err != nil {
		l.Error("dialect_build_error", "error", err)
		return
	}
	eng := engine.New(cat)
	l.Info("dialect_loaded", "messages", len(eng.SupportedIDs()))

	if cfg.dialectInfo {
		printDialectInfo(eng)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var wg sync.WaitGroup
	startMetricsLogger(ctx, cfg.logMetricsEvery, l, &wg)

	var send sendFunc
	sendMu := &sync.RWMutex{}
	onInbound := func(pm *engine.ParsedMessage) {
		l.Debug("inbound_message", "name", pm.MessageName, "crc_ok", pm.Frame.CRCOK)
	}

	sendMu.Lock()
	s, cleanup, terr := initTransport(ctx, cfg, h, eng, l, &wg, onInbound)
	send = s
	sendMu.Unlock()
	if terr != nil {
		l.Error("transport_init_error", "error", terr)
		return
	}

	relaySrv := relay.NewServer(
		relay.WithListenAddr(cfg.listenAddr),
		relay.WithHub(h),
		relay.WithEngine(eng),
		relay.WithLogger(l),
		relay.WithMaxClients(cfg.maxClients),
		relay.WithReadDeadline(cfg.clientReadTO),
		relay.WithInboundHandler(func(pm *engine.ParsedMessage) {
			// A subscriber sent bytes upstream to the vehicle: re-encode and
			// forward exactly what the engine reconstructed.
			sendMu.RLock()
			fwd := send
			sendMu.RUnlock()
			if fwd == nil {
				return
			}
			wire, err := eng.SerializeMessage(&engine.OutgoingMessage{
				MessageName: pm.MessageName,
				Payload:     pm.Payload,
				SystemID:    engine.Byte(byte(cfg.systemID)),
				ComponentID: engine.Byte(byte(cfg.componentID)),
			})
			if err != nil {
				l.Warn("inbound_reencode_failed", "name", pm.MessageName, "error", err)
				return
			}
			if err := fwd(wire); err != nil {
				l.Warn("inbound_forward_failed", "name", pm.MessageName, "error", err)
			}
		}),
	)
	go func() {
		if err := relaySrv.Serve(ctx); err != nil {
			l.Error("relay_server_error", "error", err)
			cancel()
		}
	}()

	go func() {
		if !cfg.mdnsEnable {
			return
		}
		select {
		case <-relaySrv.Ready():
		case <-ctx.Done():
			return
		}
		addr := relaySrv.Addr()
		var portNum int
		if _, p, err := net.SplitHostPort(addr); err == nil {
			if pn, perr := strconv.Atoi(p); perr == nil {
				portNum = pn
			}
		}
		if portNum == 0 {
			lastColon := strings.LastIndex(addr, ":")
			if lastColon >= 0 {
				if pn, perr := strconv.Atoi(addr[lastColon+1:]); perr == nil {
					portNum = pn
				}
			}
		}
		cleanupMDNS, err := startMDNS(ctx, cfg, portNum)
		if err != nil {
			l.Warn("mdns_start_failed", "error", err)
			return
		}
		l.Info("mdns_started", "service", mdnsServiceType, "name", cfg.mdnsName, "port", portNum)
		go func() { <-ctx.Done(); cleanupMDNS() }()
	}()

	metrics.SetReadinessFunc(func() bool {
		select {
		case <-relaySrv.Ready():
		default:
			return false
		}
		return ctx.Err() == nil
	})
	if cfg.metricsAddr != "" {
		metrics.InitBuildInfo(version, commit, date)
		srvHTTP := metrics.StartHTTP(cfg.metricsAddr)
		defer func() { _ = srvHTTP.Shutdown(context.Background()) }()
	}

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	l.Info("shutdown_signal", "signal", sig.String())
	cancel()
	cleanup()
	_ = relaySrv.Shutdown(context.Background())
	wg.Wait()
}
