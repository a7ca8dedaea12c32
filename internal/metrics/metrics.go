package metrics

import (
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/kstaniek/mavlink-go/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus counters
var (
	FramesParsed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "frames_parsed_total",
		Help: "Total MAVLink frames successfully located and decoded from an input stream.",
	})
	FramesSerialized = promauto.NewCounter(prometheus.CounterOpts{
		Name: "frames_serialized_total",
		Help: "Total outgoing MAVLink frames assembled for transmission.",
	})
	CRCFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crc_failures_total",
		Help: "Total parsed frames whose checksum did not match the registered message's CRC_EXTRA.",
	})
	UnknownMessages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "unknown_messages_total",
		Help: "Total parsed frames whose message id is absent from the active dialect catalog.",
	})
	ResyncBytesDiscarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "resync_bytes_discarded_total",
		Help: "Total noise bytes skipped while scanning a stream for the next frame magic.",
	})
	RelayDroppedFrames = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_dropped_frames_total",
		Help: "Total frames dropped by the relay hub due to a slow subscriber.",
	})
	RelayKickedClients = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_kicked_clients_total",
		Help: "Total subscribers disconnected by the relay's backpressure kick policy.",
	})
	RelayActiveClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "relay_active_clients",
		Help: "Current number of connected relay subscribers.",
	})
	RelayBroadcastFanout = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "relay_broadcast_fanout",
		Help: "Number of subscribers targeted in the most recent broadcast.",
	})
	BuildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "build_info",
		Help: "Build metadata (value is always 1).",
	}, []string{"version", "commit", "date"})
	Errors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "errors_total",
		Help: "Error counters by subsystem.",
	}, []string{"where"})

	readinessMu sync.RWMutex
	readinessFn func() bool
)

// Error label constants (stable label values to bound cardinality)
const (
	ErrSerializeUnknown  = "serialize_unknown_message"
	ErrSerializeMalformed = "serialize_malformed_payload"
	ErrSerializeNoCRC    = "serialize_missing_crc_extra"
	ErrTransportRead     = "transport_read"
	ErrTransportWrite    = "transport_write"
)

// StartHTTP serves Prometheus metrics at /metrics and a liveness probe at
// /ready on a fresh mux bound to addr.
func StartHTTP(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if IsReady() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready\n"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready\n"))
	})

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	go func() {
		logging.L().Info("metrics_listen", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.L().Error("metrics_http_error", "error", err)
		}
	}()
	return srv
}

// Local mirrored counters, cheap to read without touching the Prometheus
// registry (used by periodic log-line summaries; see metrics_logger.go).
var (
	localParsed    uint64
	localSerialized uint64
	localCRCFail   uint64
	localUnknown   uint64
	localResync    uint64
	localErrors    uint64
)

// Snapshot is a cheap copy of the local counters.
type Snapshot struct {
	FramesParsed     uint64
	FramesSerialized uint64
	CRCFailures      uint64
	UnknownMessages  uint64
	ResyncBytes      uint64
	Errors           uint64
}

func Snap() Snapshot {
	return Snapshot{
		FramesParsed:     atomic.LoadUint64(&localParsed),
		FramesSerialized: atomic.LoadUint64(&localSerialized),
		CRCFailures:      atomic.LoadUint64(&localCRCFail),
		UnknownMessages:  atomic.LoadUint64(&localUnknown),
		ResyncBytes:      atomic.LoadUint64(&localResync),
		Errors:           atomic.LoadUint64(&localErrors),
	}
}

// IncFramesParsed records a successfully located and decoded frame.
func IncFramesParsed() {
	FramesParsed.Inc()
	atomic.AddUint64(&localParsed, 1)
}

// IncFramesSerialized records an outgoing frame assembled for transmission.
func IncFramesSerialized() {
	FramesSerialized.Inc()
	atomic.AddUint64(&localSerialized, 1)
}

// IncCRCFailure records a parsed frame whose checksum did not validate.
func IncCRCFailure() {
	CRCFailures.Inc()
	atomic.AddUint64(&localCRCFail, 1)
}

// IncUnknownMessage records a parsed frame for an id outside the catalog.
func IncUnknownMessage() {
	UnknownMessages.Inc()
	atomic.AddUint64(&localUnknown, 1)
}

// AddResyncBytes records n noise bytes discarded while scanning for magic.
func AddResyncBytes(n int) {
	if n <= 0 {
		return
	}
	ResyncBytesDiscarded.Add(float64(n))
	atomic.AddUint64(&localResync, uint64(n))
}

// IncRelayDrop records a frame dropped by the relay hub.
func IncRelayDrop() { RelayDroppedFrames.Inc() }

// IncRelayKick records a subscriber kicked for falling behind.
func IncRelayKick() { RelayKickedClients.Inc() }

// SetRelayClients records the current subscriber count.
func SetRelayClients(n int) { RelayActiveClients.Set(float64(n)) }

// SetRelayFanout records the subscriber count targeted by the last broadcast.
func SetRelayFanout(n int) { RelayBroadcastFanout.Set(float64(n)) }

// IncError records an error by subsystem label.
func IncError(label string) {
	Errors.WithLabelValues(label).Inc()
	atomic.AddUint64(&localErrors, 1)
}

// InitBuildInfo sets the build info gauge (called once at startup).
func InitBuildInfo(version, commit, date string) {
	BuildInfo.WithLabelValues(version, commit, date).Set(1)
	for _, lbl := range []string{
		ErrSerializeUnknown, ErrSerializeMalformed, ErrSerializeNoCRC,
		ErrTransportRead, ErrTransportWrite,
	} {
		Errors.WithLabelValues(lbl).Add(0)
	}
}

// SetReadinessFunc registers a function used by /ready and IsReady.
func SetReadinessFunc(fn func() bool) { readinessMu.Lock(); readinessFn = fn; readinessMu.Unlock() }

// IsReady invokes the registered readiness function if present.
func IsReady() bool {
	readinessMu.RLock()
	fn := readinessFn
	readinessMu.RUnlock()
	if fn == nil {
		return true
	}
	return fn()
}

// Ready is a concise alias used at call sites.
func Ready() bool { return IsReady() }
