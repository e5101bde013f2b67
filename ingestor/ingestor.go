package ingestor

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"strconv"
	"sync/atomic"
	"time"

	lj "github.com/elastic/go-lumber/lj"
	srv2 "github.com/elastic/go-lumber/server/v2"
)

// Record is one keyed input item. The payload is carried along untouched.
type Record struct {
	Time    time.Time // arrival time for live input, zero for files
	Payload string
	Key     uint32
	Line    int // 1-based source line, 0 for live input
}

// RecordKey extracts the sort key of a record
func RecordKey(r Record) uint32 {
	return r.Key
}

// --- TCP Ingestor using go-lumber v2 ---

type TCPIngestor struct {
	listener    net.Listener
	readTimeout time.Duration // for server
	events      chan *lj.Batch
	server      *srv2.Server
	now         func() time.Time
	closed      atomic.Bool
}

func NewTCPIngestor(addr string, readTimeout time.Duration) (*TCPIngestor, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return &TCPIngestor{
		listener:    ln,
		readTimeout: readTimeout,
		events:      make(chan *lj.Batch, 1000),
		now:         time.Now,
	}, nil
}

// Addr returns the address the ingestor listens on
func (ing *TCPIngestor) Addr() net.Addr {
	return ing.listener.Addr()
}

// Accept starts the lumberjack v2 Server.
func (ing *TCPIngestor) Accept() error {
	srv, err := srv2.NewWithListener(
		ing.listener,
		srv2.Timeout(ing.readTimeout),
	)
	if err != nil {
		return fmt.Errorf("failed to create lumberjack server: %w", err)
	}
	ing.server = srv

	// Pull batches off ReceiveChan and ack them.
	go func() {
		for batch := range ing.server.ReceiveChan() {
			ing.events <- batch
			batch.ACK()
		}
		close(ing.events)
	}()

	return nil
}

// parseEvent reads a record from a lumberjack event. A numeric "key" field
// (with optional "payload") wins over a "message" line.
func parseEvent(evt map[string]interface{}, out *Record) error {
	if raw, ok := evt["key"]; ok {
		key, err := eventKey(raw)
		if err != nil {
			return err
		}
		out.Key = key
		if payload, ok := evt["payload"].(string); ok {
			out.Payload = payload
		}
		return nil
	}

	msg, ok := evt["message"].(string)
	if !ok {
		return errors.New("missing key or message field")
	}
	return parseLine(msg, out)
}

func eventKey(raw interface{}) (uint32, error) {
	switch v := raw.(type) {
	case float64:
		if v < 0 || v > math.MaxUint32 || v != math.Trunc(v) {
			return 0, fmt.Errorf("invalid key %v", v)
		}
		return uint32(v), nil
	case int:
		if v < 0 || uint64(v) > math.MaxUint32 {
			return 0, fmt.Errorf("invalid key %d", v)
		}
		return uint32(v), nil
	case int64:
		if v < 0 || v > math.MaxUint32 {
			return 0, fmt.Errorf("invalid key %d", v)
		}
		return uint32(v), nil
	case uint32:
		return v, nil
	case json.Number:
		return parseKey(v.String())
	case string:
		return parseKey(v)
	default:
		return 0, fmt.Errorf("unsupported key type %T", raw)
	}
}

func parseKey(s string) (uint32, error) {
	key, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid key %q: %w", s, err)
	}
	return uint32(key), nil
}

// ReadBatch drains every batch currently queued, stamping records with the
// read time. Events that do not parse are skipped.
func (ing *TCPIngestor) ReadBatch() ([]Record, error) {
	var out []Record
	now := time.Now
	if ing.now != nil {
		now = ing.now
	}

	for {
		select {
		case batch, ok := <-ing.events:
			if !ok {
				ing.closed.Store(true)
				return out, nil
			}
			received := now()
			for _, evt := range batch.Events {
				if m, ok := evt.(map[string]interface{}); ok {
					entry := Record{Time: received}
					if err := parseEvent(m, &entry); err == nil {
						out = append(out, entry)
					}
				}
			}
		default:
			// Channel is empty, return what we have
			return out, nil
		}
	}
}

// IsClosed reports whether the ingestor was closed or its server stopped
func (ing *TCPIngestor) IsClosed() bool {
	return ing.closed.Load()
}

// Close shuts down the server and listener.
func (ing *TCPIngestor) Close() error {
	ing.closed.Store(true)
	if ing.server != nil {
		ing.server.Close()
	}
	return ing.listener.Close()
}
