package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the server. A nil *Metrics is
// valid and records nothing; tests run without metrics to avoid duplicate
// registration in the default registry.
type Metrics struct {
	activeConnections prometheus.Gauge
	connectionsTotal  *prometheus.CounterVec // by transport
	commandsReceived  *prometheus.CounterVec // by command keyword
	chatMessages      prometheus.Counter
	privateMessages   prometheus.Counter
	broadcastFanout   prometheus.Histogram
	rooms             prometheus.Gauge
}

// NewMetrics creates and registers the server metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		activeConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "chatradical_active_connections",
			Help: "Current number of connected clients",
		}),
		connectionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "chatradical_connections_total",
			Help: "Total number of accepted connections by transport",
		}, []string{"transport"}),
		commandsReceived: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "chatradical_commands_received_total",
			Help: "Total number of client commands received by keyword",
		}, []string{"command"}),
		chatMessages: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chatradical_chat_messages_total",
			Help: "Total number of chat lines broadcast to rooms",
		}),
		privateMessages: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chatradical_private_messages_total",
			Help: "Total number of private messages delivered",
		}),
		broadcastFanout: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "chatradical_broadcast_fanout",
			Help:    "Number of clients that received each broadcast line",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500},
		}),
		rooms: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "chatradical_rooms",
			Help: "Current number of rooms",
		}),
	}
}

// RecordConnection counts an accepted connection on a transport.
func (m *Metrics) RecordConnection(transport string) {
	if m == nil {
		return
	}
	m.connectionsTotal.WithLabelValues(transport).Inc()
	m.activeConnections.Inc()
}

// RecordDisconnect counts a closed connection.
func (m *Metrics) RecordDisconnect() {
	if m == nil {
		return
	}
	m.activeConnections.Dec()
}

// RecordCommand counts one received client command by keyword.
func (m *Metrics) RecordCommand(command string) {
	if m == nil {
		return
	}
	m.commandsReceived.WithLabelValues(command).Inc()
}

// RecordChatBroadcast counts a chat line and its fan-out size.
func (m *Metrics) RecordChatBroadcast(recipients int) {
	if m == nil {
		return
	}
	m.chatMessages.Inc()
	m.broadcastFanout.Observe(float64(recipients))
}

// RecordNoticeBroadcast counts the fan-out size of a system notice.
func (m *Metrics) RecordNoticeBroadcast(recipients int) {
	if m == nil {
		return
	}
	m.broadcastFanout.Observe(float64(recipients))
}

// RecordPrivateMessage counts a delivered private message.
func (m *Metrics) RecordPrivateMessage() {
	if m == nil {
		return
	}
	m.privateMessages.Inc()
}

// RecordRoomCount updates the room gauge.
func (m *Metrics) RecordRoomCount(count int) {
	if m == nil {
		return
	}
	m.rooms.Set(float64(count))
}
