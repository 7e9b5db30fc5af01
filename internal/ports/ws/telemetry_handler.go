package ws

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"wildfire-monitoring-system/internal/application"
	"wildfire-monitoring-system/internal/domain"
	"wildfire-monitoring-system/internal/ports"
)

// Binary telemetry frame layout:
//
//	0-1   magic 0xAA 0x55
//	2     version
//	3     packet type
//	4     status code
//	5     battery percent
//	6-7   reserved
//	8-11  latitude  * 1e6, big-endian int32
//	12-15 longitude * 1e6, big-endian int32
const (
	frameMagic0        = 0xAA
	frameMagic1        = 0x55
	frameLen           = 16
	packetTelemetry    = 0x01
	coordinateExponent = 1e6

	// largest accepted message, a JSON report with room to spare
	maxTelemetryMessage = 1024
)

var statusCodes = []domain.DroneStatus{
	domain.DroneStatusIdle,
	domain.DroneStatusLaunching,
	domain.DroneStatusOnMission,
	domain.DroneStatusReturning,
	domain.DroneStatusCharging,
	domain.DroneStatusMaintenance,
}

// TelemetryHandler accepts drone telemetry over WebSocket. Each drone
// connects with ?token=<drone id>.
type TelemetryHandler struct {
	scheduler *application.MissionScheduler
	fleet     *application.FleetRegistry
	clock     ports.Clock
	upgrader  *websocket.Upgrader
	logger    *zap.Logger

	connections   map[string]*websocket.Conn
	connectionsMu sync.Mutex
}

// NewTelemetryHandler creates a new TelemetryHandler
func NewTelemetryHandler(
	scheduler *application.MissionScheduler,
	fleet *application.FleetRegistry,
	clock ports.Clock,
	allowedOrigins []string,
	logger *zap.Logger,
) *TelemetryHandler {
	return &TelemetryHandler{
		scheduler:   scheduler,
		fleet:       fleet,
		clock:       clock,
		upgrader:    newUpgrader(allowedOrigins),
		logger:      logger,
		connections: make(map[string]*websocket.Conn),
	}
}

type telemetryMessage struct {
	Type string `json:"type"`
	domain.TelemetryReport
}

type reply struct {
	Type  string `json:"type"`
	Time  int64  `json:"time,omitempty"`
	Error string `json:"error,omitempty"`
}

// HandleConnection upgrades an authenticated drone connection
func (h *TelemetryHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	droneID, err := h.authenticateDrone(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("Error upgrading connection", zap.Error(err))
		return
	}

	h.connectionsMu.Lock()
	if previous, ok := h.connections[droneID]; ok {
		previous.Close()
	}
	h.connections[droneID] = conn
	h.connectionsMu.Unlock()

	h.logger.Info("Drone connected", zap.String("drone_id", droneID))

	go h.handleMessages(droneID, conn)
}

// Connected reports whether a drone has an open telemetry connection
func (h *TelemetryHandler) Connected(droneID string) bool {
	h.connectionsMu.Lock()
	defer h.connectionsMu.Unlock()
	_, ok := h.connections[droneID]
	return ok
}

func (h *TelemetryHandler) handleMessages(droneID string, conn *websocket.Conn) {
	defer func() {
		conn.Close()

		h.connectionsMu.Lock()
		if h.connections[droneID] == conn {
			delete(h.connections, droneID)
		}
		h.connectionsMu.Unlock()

		h.logger.Info("Drone disconnected", zap.String("drone_id", droneID))
	}()

	conn.SetReadLimit(maxTelemetryMessage)
	conn.SetPingHandler(func(string) error {
		return conn.WriteControl(websocket.PongMessage, []byte{}, time.Now().Add(time.Second))
	})

	for {
		messageType, p, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("WebSocket error", zap.String("drone_id", droneID), zap.Error(err))
			}
			return
		}

		var resp reply
		switch messageType {
		case websocket.BinaryMessage:
			resp = h.handleBinaryMessage(droneID, p)
		case websocket.TextMessage:
			resp = h.handleTextMessage(droneID, p)
		default:
			continue
		}

		if err := h.send(conn, resp); err != nil {
			h.logger.Warn("Error sending reply", zap.String("drone_id", droneID), zap.Error(err))
			return
		}
	}
}

func (h *TelemetryHandler) handleTextMessage(droneID string, data []byte) reply {
	var msg telemetryMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return errorReply(fmt.Errorf("malformed message: %w", err))
	}

	switch msg.Type {
	case "heartbeat":
		return reply{Type: "heartbeat_ack", Time: h.clock.Now().Unix()}

	case "telemetry":
		status, coords, err := msg.Parse()
		if err != nil {
			return errorReply(err)
		}
		return h.apply(droneID, status, msg.BatteryLevel, coords)

	default:
		return errorReply(fmt.Errorf("unknown message type %q", msg.Type))
	}
}

func (h *TelemetryHandler) handleBinaryMessage(droneID string, data []byte) reply {
	status, battery, coords, err := decodeFrame(data)
	if err != nil {
		return errorReply(err)
	}
	return h.apply(droneID, status, battery, coords)
}

func (h *TelemetryHandler) apply(droneID string, status domain.DroneStatus, battery int, coords domain.Coordinates) reply {
	if err := h.scheduler.UpdateDroneStatus(droneID, status, battery, coords); err != nil {
		h.logger.Warn("Rejected telemetry", zap.String("drone_id", droneID), zap.Error(err))
		return errorReply(err)
	}
	return reply{Type: "telemetry_ack", Time: h.clock.Now().Unix()}
}

func (h *TelemetryHandler) send(conn *websocket.Conn, resp reply) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}

// authenticateDrone treats the token as a drone id known to the fleet
func (h *TelemetryHandler) authenticateDrone(r *http.Request) (string, error) {
	token := r.URL.Query().Get("token")
	if token == "" {
		return "", errors.New("missing authentication token")
	}
	if _, err := h.fleet.Drone(token); err != nil {
		return "", err
	}
	return token, nil
}

func errorReply(err error) reply {
	return reply{Type: "error", Error: err.Error()}
}

func decodeFrame(data []byte) (domain.DroneStatus, int, domain.Coordinates, error) {
	if len(data) < frameLen {
		return "", 0, domain.Coordinates{}, errors.New("invalid binary frame length")
	}
	if data[0] != frameMagic0 || data[1] != frameMagic1 {
		return "", 0, domain.Coordinates{}, errors.New("invalid magic number in binary frame")
	}
	if data[3] != packetTelemetry {
		return "", 0, domain.Coordinates{}, fmt.Errorf("unknown packet type %d", data[3])
	}
	if int(data[4]) >= len(statusCodes) {
		return "", 0, domain.Coordinates{}, fmt.Errorf("%w: status code %d", domain.ErrInvalidStatus, data[4])
	}

	coords := domain.Coordinates{
		Lat: float64(int32(binary.BigEndian.Uint32(data[8:12]))) / coordinateExponent,
		Lon: float64(int32(binary.BigEndian.Uint32(data[12:16]))) / coordinateExponent,
	}
	return statusCodes[data[4]], int(data[5]), coords, nil
}

// EncodeFrame builds a binary telemetry frame, the inverse of decodeFrame
func EncodeFrame(status domain.DroneStatus, battery int, coords domain.Coordinates) ([]byte, error) {
	code := -1
	for i, s := range statusCodes {
		if s == status {
			code = i
		}
	}
	if code < 0 {
		return nil, fmt.Errorf("%w: drone status %q", domain.ErrInvalidStatus, status)
	}

	frame := make([]byte, frameLen)
	frame[0], frame[1], frame[2], frame[3] = frameMagic0, frameMagic1, 1, packetTelemetry
	frame[4] = byte(code)
	frame[5] = byte(domain.ClampBattery(battery))
	binary.BigEndian.PutUint32(frame[8:12], uint32(int32(math.Round(coords.Lat*coordinateExponent))))
	binary.BigEndian.PutUint32(frame[12:16], uint32(int32(math.Round(coords.Lon*coordinateExponent))))
	return frame, nil
}
