package acquire

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"
)

// ErrNoDevice means no serial port could be opened at all. The caller is
// expected to fall back to simulation rather than fail the run.
var ErrNoDevice = errors.New("acquire: no serial device available")

// AutoPort asks OpenSerial to enumerate ports and take the first one that
// opens.
const AutoPort = "auto"

const serialReadTimeout = 200 * time.Millisecond

// SerialSource reads the board's line protocol: one ASCII float per line,
// controlled by "start\n" and "stop\n".
type SerialSource struct {
	port     serial.Port
	reader   *bufio.Reader
	partial  []byte
	portName string
	logger   *zap.Logger
}

// OpenSerial opens portName at the given baud rate. With AutoPort it walks
// every enumerated port until one opens; if none does it returns
// ErrNoDevice. The port is configured with a short read timeout so the
// acquisition loop can notice cancellation between lines.
func OpenSerial(portName string, baudRate int, logger *zap.Logger) (*SerialSource, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
	}

	candidates := []string{portName}
	if strings.EqualFold(portName, AutoPort) {
		ports, err := serial.GetPortsList()
		if err != nil {
			return nil, fmt.Errorf("%w: enumerating ports: %v", ErrNoDevice, err)
		}
		candidates = ports
	}

	for _, name := range candidates {
		port, err := serial.Open(name, mode)
		if err != nil {
			logger.Warn("[serial] could not open port", zap.Error(err), zap.String("portName", name))
			continue
		}
		port.SetReadTimeout(serialReadTimeout)
		port.ResetInputBuffer()
		logger.Info("[serial] connected", zap.String("portName", name), zap.Int("baudRate", baudRate))
		return &SerialSource{
			port:     port,
			reader:   bufio.NewReader(port),
			portName: name,
			logger:   logger,
		}, nil
	}

	return nil, ErrNoDevice
}

func (s *SerialSource) Start() error {
	_, err := s.port.Write([]byte("start\n"))
	return err
}

func (s *SerialSource) Stop() error {
	_, err := s.port.Write([]byte("stop\n"))
	return err
}

// Next reads one line and parses it as a pressure value. An empty or
// unparseable line returns ErrMalformedLine. Read timeouts surface as an
// error from the buffered reader; callers treat any error as "no sample
// this iteration". A line split across timeouts is kept in the partial
// buffer, never dropped.
func (s *SerialSource) Next() (float64, error) {
	data, err := s.reader.ReadBytes('\n')
	s.partial = append(s.partial, data...)
	if err != nil {
		if errors.Is(err, io.ErrNoProgress) {
			return 0, ErrNoData
		}
		return 0, err
	}

	trimmed := strings.TrimSpace(string(s.partial))
	s.partial = s.partial[:0]
	if trimmed == "" {
		return 0, ErrMalformedLine
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedLine, trimmed)
	}
	return value, nil
}

// Close releases the port. Not called between runs: the device connection
// is kept open for reuse.
func (s *SerialSource) Close() error {
	return s.port.Close()
}

func (s *SerialSource) PortName() string {
	return s.portName
}
