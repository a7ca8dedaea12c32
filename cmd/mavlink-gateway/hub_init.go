package main

import (
	"log/slog"

	"github.com/kstaniek/mavlink-go/internal/relay"
)

func initHub(cfg *appConfig, l *slog.Logger) *relay.Hub {
	h := relay.New()
	h.OutBufSize = cfg.hubBuffer
	switch cfg.hubPolicy {
	case "drop":
		h.Policy = relay.PolicyDrop
	case "kick":
		h.Policy = relay.PolicyKick
	default:
		l.Warn("unknown_hub_policy", "policy", cfg.hubPolicy, "used", "drop")
		h.Policy = relay.PolicyDrop
	}
	policyStr := map[relay.BackpressurePolicy]string{relay.PolicyDrop: "drop", relay.PolicyKick: "kick"}[h.Policy]
	l.Info("build_info", "version", version, "commit", commit, "date", date)
	l.Info("hub_config", "policy", policyStr, "buffer", h.OutBufSize)
	return h
}
