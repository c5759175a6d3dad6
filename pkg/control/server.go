package control

import (
	"bufio"
	"errors"
	"net"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sitaram-kernallogicautomation/openplc-runtime-v4/pkg/lifecycle"
)

// MaxCommandSize and MaxResponseSize bound one control-socket line, per §6.
const (
	MaxCommandSize  = 8 * 1024
	MaxResponseSize = 16 * 1024
)

// LogFunc matches the logging callback shape used throughout the runtime.
type LogFunc func(format string, args ...any)

// Server hosts the control & debug endpoint: a UNIX stream socket accepting
// commands that mutate a lifecycle.Manager and, for DEBUG frames, inspect
// its currently loaded program handle.
type Server struct {
	SocketPath string
	Manager    *lifecycle.Manager

	LogInfo  LogFunc
	LogDebug LogFunc
	LogError LogFunc

	listener net.Listener
}

func (s *Server) logf(fn LogFunc, format string, args ...any) {
	if fn != nil {
		fn(format, args...)
	}
}

// Serve binds the socket, removing any stale file at SocketPath first, and
// accepts connections until stop is closed. It mirrors
// setup_unix_socket/unix_socket_thread: one client is served fully before
// the next is accepted, and accept failures are retried after one second.
func (s *Server) Serve(stop <-chan struct{}) error {
	_ = os.Remove(s.SocketPath)

	listener, err := net.Listen("unix", s.SocketPath)
	if err != nil {
		return err
	}
	s.listener = listener
	s.logf(s.LogInfo, "control socket listening at %s", s.SocketPath)

	go func() {
		<-stop
		s.listener.Close()
		os.Remove(s.SocketPath)
	}()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-stop:
				s.logf(s.LogInfo, "control socket closed")
				return nil
			default:
			}
			s.logf(s.LogError, "control socket accept failed: %v", err)
			time.Sleep(time.Second)
			continue
		}

		s.serveClient(conn)
	}
}

func (s *Server) serveClient(conn net.Conn) {
	defer conn.Close()

	connID := uuid.NewString()
	s.logf(s.LogInfo, "control socket client connected [%s]", connID)

	reader := bufio.NewReaderSize(conn, MaxCommandSize)
	for {
		line, err := readLine(reader)
		if err != nil {
			if errors.Is(err, errLineTooLong) {
				s.logf(s.LogError, "control socket [%s]: command exceeds %d bytes", connID, MaxCommandSize)
				return
			}
			s.logf(s.LogInfo, "control socket client disconnected [%s]", connID)
			return
		}

		s.logf(s.LogDebug, "control socket [%s]: received command: %s", connID, line)

		response := s.handleCommand(line)
		if len(response) > MaxResponseSize {
			response = response[:MaxResponseSize]
		}
		if response == "" {
			continue
		}
		if _, err := conn.Write([]byte(response)); err != nil {
			s.logf(s.LogError, "control socket [%s]: write failed: %v", connID, err)
			return
		}
	}
}

var errLineTooLong = errors.New("command line too long")

// readLine reads one newline-terminated line, per unix_socket.c's
// read_line, trimming the trailing newline and any carriage return.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	if len(line) > MaxCommandSize {
		return "", errLineTooLong
	}
	return strings.TrimRight(line, "\r\n"), nil
}
