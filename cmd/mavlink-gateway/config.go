package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type appConfig struct {
	serialDev       string
	baud            int
	listenAddr      string
	serialReadTO    time.Duration
	logFormat       string
	logLevel        string
	metricsAddr     string
	hubBuffer       int
	hubPolicy       string
	logMetricsEvery time.Duration
	transport       string
	canIf           string
	maxClients      int
	clientReadTO    time.Duration
	mdnsEnable      bool
	mdnsName        string
	systemID        int
	componentID     int
	dialectInfo     bool
}

func parseFlags() (*appConfig, bool) {
	cfg := &appConfig{}
	serialDev := flag.String("serial", "/dev/ttyUSB0", "Serial device path (when --transport=serial)")
	baud := flag.Int("baud", 57600, "Serial baud rate")
	listen := flag.String("listen", ":20000", "TCP listen address for relay subscribers")
	serialReadTO := flag.Duration("serial-read-timeout", 50*time.Millisecond, "Serial read timeout")
	logFormat := flag.String("log-format", "text", "Log format: text|json")
	logLevel := flag.String("log-level", "info", "Log level: debug|info|warn|error")
	metricsAddr := flag.String("metrics-addr", "", "Metrics HTTP listen address (e.g., :9100); empty disables")
	hubBuf := flag.Int("hub-buffer", 512, "Per-subscriber relay buffer (frames)")
	hubPolicy := flag.String("hub-policy", "drop", "Backpressure policy: drop|kick")
	logMetricsEvery := flag.Duration("log-metrics-interval", 0, "If >0, periodically log metrics counters")
	transportKind := flag.String("transport", "serial", "Link to the vehicle: serial|canbridge")
	canIf := flag.String("can-if", "can0", "SocketCAN interface (when --transport=canbridge)")
	maxClients := flag.Int("max-clients", 0, "Maximum simultaneous relay subscribers (0 = unlimited)")
	clientReadTO := flag.Duration("client-read-timeout", 60*time.Second, "Per-subscriber read deadline")
	mdnsEnable := flag.Bool("mdns-enable", false, "Enable mDNS advertisement of this gateway")
	mdnsName := flag.String("mdns-name", "", "mDNS instance name (default mavlink-gateway-<hostname>)")
	systemID := flag.Int("system-id", 255, "MAVLink system id used for frames this gateway originates")
	componentID := flag.Int("component-id", 0, "MAVLink component id used for frames this gateway originates")
	showVersion := flag.Bool("version", false, "Print version and exit")
	dialectInfo := flag.Bool("dialect-info", false, "Print the loaded dialect's message catalog and exit")
	flag.Parse()

	setFlags := map[string]struct{}{}
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = struct{}{} })
	cfg.serialDev = *serialDev
	cfg.baud = *baud
	cfg.listenAddr = *listen
	cfg.serialReadTO = *serialReadTO
	cfg.logFormat = *logFormat
	cfg.logLevel = *logLevel
	cfg.metricsAddr = *metricsAddr
	cfg.hubBuffer = *hubBuf
	cfg.hubPolicy = *hubPolicy
	cfg.logMetricsEvery = *logMetricsEvery
	cfg.transport = *transportKind
	cfg.canIf = *canIf
	cfg.maxClients = *maxClients
	cfg.clientReadTO = *clientReadTO
	cfg.mdnsEnable = *mdnsEnable
	cfg.mdnsName = *mdnsName
	cfg.systemID = *systemID
	cfg.componentID = *componentID
	cfg.dialectInfo = *dialectInfo

	if err := applyEnvOverrides(cfg, setFlags); err != nil {
		fmt.Printf("environment override error: %v\n", err)
		return nil, *showVersion
	}
	if err := cfg.validate(); err != nil {
		fmt.Printf("configuration error: %v\n", err)
		return nil, *showVersion
	}
	return cfg, *showVersion
}

// validate performs basic semantic validation of the parsed configuration.
// It does not attempt to open devices or listeners - only checks values/ranges.
func (c *appConfig) validate() error {
	if c == nil {
		return errors.New("nil config")
	}
	switch c.logFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log-format: %s", c.logFormat)
	}
	switch c.logLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log-level: %s", c.logLevel)
	}
	switch c.transport {
	case "serial", "canbridge":
	default:
		return fmt.Errorf("invalid transport: %s", c.transport)
	}
	switch c.hubPolicy {
	case "drop", "kick":
	default:
		return fmt.Errorf("invalid hub-policy: %s", c.hubPolicy)
	}
	if c.hubBuffer <= 0 {
		return fmt.Errorf("hub-buffer must be > 0 (got %d)", c.hubBuffer)
	}
	if c.baud <= 0 {
		return fmt.Errorf("baud must be > 0 (got %d)", c.baud)
	}
	if c.serialReadTO <= 0 {
		return fmt.Errorf("serial-read-timeout must be > 0")
	}
	if c.clientReadTO <= 0 {
		return fmt.Errorf("client-read-timeout must be > 0")
	}
	if c.maxClients < 0 {
		return fmt.Errorf("max-clients must be >= 0")
	}
	if c.systemID < 0 || c.systemID > 255 {
		return fmt.Errorf("system-id must be in [0,255] (got %d)", c.systemID)
	}
	if c.componentID < 0 || c.componentID > 255 {
		return fmt.Errorf("component-id must be in [0,255] (got %d)", c.componentID)
	}
	return nil
}

// applyEnvOverrides maps MAVLINK_GATEWAY_* environment variables to config
// fields unless a corresponding flag was explicitly set (flag wins over env).
func applyEnvOverrides(c *appConfig, set map[string]struct{}) error {
	var firstErr error
	get := func(k string) (string, bool) { v, ok := os.LookupEnv(k); return strings.TrimSpace(v), ok }

	str := func(flagName, env string, dst *string) {
		if _, ok := set[flagName]; ok {
			return
		}
		if v, ok := get(env); ok && v != "" {
			*dst = v
		}
	}
	intv := func(flagName, env string, dst *int, allowZero bool) {
		if _, ok := set[flagName]; ok {
			return
		}
		v, ok := get(env)
		if !ok || v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("invalid %s: %w", env, err)
			}
			return
		}
		if n > 0 || (allowZero && n >= 0) {
			*dst = n
		}
	}
	dur := func(flagName, env string, dst *time.Duration, allowZero bool) {
		if _, ok := set[flagName]; ok {
			return
		}
		v, ok := get(env)
		if !ok || v == "" {
			return
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("invalid %s: %w", env, err)
			}
			return
		}
		if d > 0 || (allowZero && d >= 0) {
			*dst = d
		}
	}

	str("serial", "MAVLINK_GATEWAY_SERIAL", &c.serialDev)
	intv("baud", "MAVLINK_GATEWAY_BAUD", &c.baud, false)
	str("listen", "MAVLINK_GATEWAY_LISTEN", &c.listenAddr)
	dur("serial-read-timeout", "MAVLINK_GATEWAY_SERIAL_READ_TIMEOUT", &c.serialReadTO, false)
	str("log-format", "MAVLINK_GATEWAY_LOG_FORMAT", &c.logFormat)
	str("log-level", "MAVLINK_GATEWAY_LOG_LEVEL", &c.logLevel)
	str("metrics-addr", "MAVLINK_GATEWAY_METRICS", &c.metricsAddr)
	intv("hub-buffer", "MAVLINK_GATEWAY_HUB_BUFFER", &c.hubBuffer, false)
	str("hub-policy", "MAVLINK_GATEWAY_HUB_POLICY", &c.hubPolicy)
	str("transport", "MAVLINK_GATEWAY_TRANSPORT", &c.transport)
	str("can-if", "MAVLINK_GATEWAY_CAN_IF", &c.canIf)
	intv("max-clients", "MAVLINK_GATEWAY_MAX_CLIENTS", &c.maxClients, true)
	dur("client-read-timeout", "MAVLINK_GATEWAY_CLIENT_READ_TIMEOUT", &c.clientReadTO, false)
	str("mdns-name", "MAVLINK_GATEWAY_MDNS_NAME", &c.mdnsName)
	intv("system-id", "MAVLINK_GATEWAY_SYSTEM_ID", &c.systemID, true)
	intv("component-id", "MAVLINK_GATEWAY_COMPONENT_ID", &c.componentID, true)
	dur("log-metrics-interval", "MAVLINK_GATEWAY_LOG_METRICS_INTERVAL", &c.logMetricsEvery, true)

	if _, ok := set["mdns-enable"]; !ok {
		if v, ok := get("MAVLINK_GATEWAY_MDNS_ENABLE"); ok && v != "" {
			switch strings.ToLower(v) {
			case "1", "true", "yes", "on":
				c.mdnsEnable = true
			case "0", "false", "no", "off":
				c.mdnsEnable = false
			}
		}
	}
	return firstErr
}
