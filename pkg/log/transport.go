package log

import (
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ringCapacity is the fixed ring buffer size §6 requires for buffered log
// records: oldest-overwriting once full.
const ringCapacity = 1024

type logRecord struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}

// ringSink is a zerolog.Hook that serializes every emitted record into the
// §6 wire shape and appends it to a fixed-capacity ring buffer. A drain
// goroutine owns the outbound connection to the log socket, flushing
// buffered records and reconnecting with backoff on failure; records are
// only evicted from the ring once a write to the peer has actually
// succeeded.
type ringSink struct {
	socketPath string

	mu    sync.Mutex
	buf   [ringCapacity][]byte
	head  int
	count int

	notify chan struct{}
	stopCh chan struct{}
	doneCh chan struct{}
}

func newRingSink(socketPath string) *ringSink {
	r := &ringSink{
		socketPath: socketPath,
		notify:     make(chan struct{}, 1),
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
	go r.drain()
	return r
}

// Run implements zerolog.Hook.
func (r *ringSink) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	if level == zerolog.NoLevel {
		return
	}
	record, err := json.Marshal(logRecord{
		Timestamp: fmt.Sprintf("%d", time.Now().Unix()),
		Level:     level.String(),
		Message:   msg,
	})
	if err != nil {
		return
	}
	r.push(append(record, '\n'))
}

func (r *ringSink) push(line []byte) {
	r.mu.Lock()
	idx := (r.head + r.count) % ringCapacity
	if r.count == ringCapacity {
		r.head = (r.head + 1) % ringCapacity
	} else {
		r.count++
	}
	r.buf[idx] = line
	r.mu.Unlock()

	select {
	case r.notify <- struct{}{}:
	default:
	}
}

func (r *ringSink) peekAll() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]byte, r.count)
	for i := 0; i < r.count; i++ {
		out[i] = r.buf[(r.head+i)%ringCapacity]
	}
	return out
}

func (r *ringSink) popFront(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n > r.count {
		n = r.count
	}
	r.head = (r.head + n) % ringCapacity
	r.count -= n
}

func (r *ringSink) stop() {
	select {
	case <-r.stopCh:
	default:
		close(r.stopCh)
	}
	<-r.doneCh
}

func (r *ringSink) drain() {
	defer close(r.doneCh)

	var conn net.Conn
	const backoff = time.Second

	for {
		select {
		case <-r.stopCh:
			if conn != nil {
				conn.Close()
			}
			return
		case <-r.notify:
		case <-time.After(backoff):
		}

		if conn == nil {
			c, err := net.DialTimeout("unix", r.socketPath, time.Second)
			if err != nil {
				continue
			}
			conn = c
		}

		lines := r.peekAll()
		sent := 0
		for _, line := range lines {
			if _, err := conn.Write(line); err != nil {
				conn.Close()
				conn = nil
				break
			}
			sent++
		}
		r.popFront(sent)
	}
}
