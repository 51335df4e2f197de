package balancer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	dropReasonMalformed = "malformed"
	dropReasonSend      = "send"
)

var (
	packetsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "udpbalancer_packets_received_total",
		Help: "Datagrams received on the listen socket.",
	})

	packetsRelayed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "udpbalancer_packets_relayed_total",
		Help: "Datagrams relayed, per upstream endpoint.",
	}, []string{"upstream"})

	packetsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "udpbalancer_packets_dropped_total",
		Help: "Datagrams discarded, by reason.",
	}, []string{"reason"})

	gelfAffinityRouted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "udpbalancer_gelf_affinity_total",
		Help: "Datagrams routed by GELF chunk affinity instead of round-robin.",
	})
)
