package balancer

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
)

// maxDatagramLen is the receive buffer size, covering the largest possible
// UDP payload.
const maxDatagramLen = 65536

// udpWriter is the send side of the relay socket. Split out so the
// per-packet forwarding path can be tested without a live socket.
type udpWriter interface {
	WriteToUDP(b []byte, addr *net.UDPAddr) (int, error)
}

// Server owns the listening socket and runs the receive/dispatch/send loop.
type Server struct {
	// Config must have passed Validate before Run is called.
	Config *Config

	// Dispatcher overrides the one built from Config. Mainly for tests.
	Dispatcher *Dispatcher

	initOnce sync.Once

	statusHandler *statusHandler

	mu   sync.Mutex
	conn *net.UDPConn
}

func (s *Server) init() {
	s.initOnce.Do(func() {
		if s.Config == nil {
			panic("no config")
		}

		if s.Dispatcher == nil {
			s.Dispatcher = NewDispatcher(s.Config.UpstreamAddrs(), s.Config.HandleGELF)
		}

		s.statusHandler = newStatusHandler()
	})
}

// Status reports the current packet counters and uptime.
func (s *Server) Status() Status {
	s.init()

	return s.statusHandler.getStatus()
}

// HealthHandler returns the JSON /health endpoint for this server.
func (s *Server) HealthHandler() http.Handler {
	s.init()

	return s.statusHandler
}

// LocalAddr returns the bound listen address, or nil before Run has bound
// the socket.
func (s *Server) LocalAddr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}
	return s.conn.LocalAddr()
}

// Run binds the relay socket and blocks in the receive/dispatch/send loop.
// It returns nil once ctx is cancelled and the socket is closed, or a
// non-nil error when the listening socket fails. Per-packet failures are
// logged and never end the loop.
func (s *Server) Run(ctx context.Context) error {
	s.init()

	conn, err := net.ListenUDP("udp", s.Config.ListenAddr())
	if err != nil {
		return fmt.Errorf("bind %s: %w", s.Config.Listen, err)
	}
	defer conn.Close()

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	// Socket buffer overrides behave like the corresponding setsockopt
	// calls: failure is worth a warning but not fatal.
	if n := s.Config.SendBuffer; n > 0 {
		if err := conn.SetWriteBuffer(n); err != nil {
			slog.Warn("failed to set send buffer", "size", n, "err", err)
		}
	}
	if n := s.Config.RecvBuffer; n > 0 {
		if err := conn.SetReadBuffer(n); err != nil {
			slog.Warn("failed to set recv buffer", "size", n, "err", err)
		}
	}

	// Unblock the receive call when ctx is cancelled.
	stop := context.AfterFunc(ctx, func() {
		conn.Close()
	})
	defer stop()

	slog.Info("relay listening",
		"addr", conn.LocalAddr(),
		"upstreams", len(s.Dispatcher.Upstreams()),
		"handle_gelf", s.Config.HandleGELF,
	)

	buf := make([]byte, maxDatagramLen)

	for {
		n, sender, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Error("receive failed", "sender", sender, "err", err)
			return fmt.Errorf("receive: %w", err)
		}

		packetsReceived.Inc()
		s.statusHandler.packetReceived()

		if n < minDatagramLen {
			packetsDropped.WithLabelValues(dropReasonMalformed).Inc()
			s.statusHandler.packetDropped()
			slog.Warn("discarding short datagram", "sender", sender, "len", n)
			continue
		}

		s.forward(conn, buf[:n])
	}
}

// forward picks the upstream for payload and sends it. Send failures and
// partial sends are soft: counted, logged and dropped.
func (s *Server) forward(w udpWriter, payload []byte) {
	if s.Config.HandleGELF && isGELFChunk(payload) {
		gelfAffinityRouted.Inc()
	}

	dst := s.Dispatcher.Select(payload)

	sent, err := w.WriteToUDP(payload, dst)
	if err != nil {
		packetsDropped.WithLabelValues(dropReasonSend).Inc()
		s.statusHandler.packetDropped()
		slog.Warn("send failed", "upstream", dst, "err", err)
		return
	}
	if sent != len(payload) {
		packetsDropped.WithLabelValues(dropReasonSend).Inc()
		s.statusHandler.packetDropped()
		slog.Warn("partial send", "upstream", dst, "sent", sent, "len", len(payload))
		return
	}

	packetsRelayed.WithLabelValues(dst.String()).Inc()
	s.statusHandler.packetRelayed()
}
