package logger

import (
	"encoding/json"
	"net"
	"os"
	"strings"
	"time"
)

// GELFWriter sends GELF messages over UDP and implements io.Writer
// so it can be fanned out next to stdout.
type GELFWriter struct {
	conn     net.Conn
	hostname string
	service  string
}

// NewGELFWriter creates a GELF UDP writer connected to addr (e.g. "172.17.0.1:12201").
func NewGELFWriter(addr, service string) (*GELFWriter, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, err
	}

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = service
	}

	return &GELFWriter{conn: conn, hostname: hostname, service: service}, nil
}

// Write implements io.Writer. Each call carries one slog JSON line and sends one GELF message.
func (w *GELFWriter) Write(p []byte) (int, error) {
	line := strings.TrimRight(string(p), "\n")

	gelf := map[string]interface{}{
		"version":   "1.1",
		"host":      w.hostname,
		"timestamp": float64(time.Now().UnixNano()) / 1e9,
		"level":     6, // Informational
		"_service":  w.service,
	}

	var record map[string]interface{}
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		gelf["short_message"] = line
	} else {
		msg, _ := record["msg"].(string)
		gelf["short_message"] = msg
		if lvl, ok := record["level"].(string); ok {
			gelf["level"] = syslogLevel(lvl)
		}
		for k, v := range record {
			switch k {
			case "msg", "level", "time":
				continue
			}
			gelf["_"+k] = v
		}
	}

	payload, err := json.Marshal(gelf)
	if err != nil {
		return len(p), nil // don't fail the log call
	}

	// Fire-and-forget
	_, _ = w.conn.Write(payload)
	return len(p), nil
}

// Close releases the UDP socket
func (w *GELFWriter) Close() error {
	return w.conn.Close()
}

func syslogLevel(level string) int {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return 7
	case "WARN":
		return 4
	case "ERROR":
		return 3
	default:
		return 6
	}
}
