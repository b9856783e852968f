package detector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

const serviceScript = "mediapipe_service.py"

// ErrNoService is returned when the landmark service script cannot be found.
var ErrNoService = errors.New(serviceScript + " not found")

// MediaPipeDetector implements Detector with a Python MediaPipe subprocess.
// The process is started on the first frame and stopped after Config.IdleTimeout
// without one.
type MediaPipeDetector struct {
	config Config
	script string

	mu        sync.Mutex
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	conn      *serviceConn
	idleTimer *time.Timer
}

// NewMediaPipeDetector locates the landmark service and returns a detector for it.
// Zero fields of config take their DefaultConfig values.
func NewMediaPipeDetector(config Config) (*MediaPipeDetector, error) {
	script := findFile(serviceCandidates())
	if script == "" {
		return nil, ErrNoService
	}
	return &MediaPipeDetector{config: withDefaults(config), script: script}, nil
}

func withDefaults(c Config) Config {
	d := DefaultConfig()
	if c.MaxHands <= 0 {
		c.MaxHands = d.MaxHands
	}
	if c.MinConfidence <= 0 {
		c.MinConfidence = d.MinConfidence
	}
	if c.MinTrackingConf <= 0 {
		c.MinTrackingConf = d.MinTrackingConf
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = d.IdleTimeout
	}
	return c
}

// Detect sends frame to the service and returns the hands it found.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.start(); err != nil {
		return nil, err
	}
	hands, err := d.conn.exchange(buf.GetBytes())
	if err != nil {
		// A broken pipe leaves the stream out of sync; restart on the next frame.
		d.stop()
		return nil, err
	}

	if d.idleTimer != nil {
		d.idleTimer.Stop()
	}
	d.idleTimer = time.AfterFunc(d.config.IdleTimeout, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.stop()
	})
	return hands, nil
}

// Close stops the service process.
func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stop()
}

func (d *MediaPipeDetector) start() error {
	if d.cmd != nil {
		return nil
	}

	python := d.config.Python
	if python == "" {
		python = findFile(venvCandidates())
	}
	if python == "" {
		python = "python3"
	}

	cmd := exec.Command(python, serviceArgs(d.script, d.config)...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start landmark service: %w", err)
	}

	d.cmd = cmd
	d.stdin = stdin
	d.conn = newServiceConn(stdin, stdout, d.config)
	return nil
}

func (d *MediaPipeDetector) stop() error {
	if d.cmd == nil {
		return nil
	}
	if d.idleTimer != nil {
		d.idleTimer.Stop()
		d.idleTimer = nil
	}

	d.stdin.Close()
	err := d.cmd.Wait()
	d.cmd, d.stdin, d.conn = nil, nil, nil
	return err
}

// serviceArgs builds the service command line from config.
func serviceArgs(script string, c Config) []string {
	return []string{
		script,
		"--max-hands", strconv.Itoa(c.MaxHands),
		"--min-detection-confidence", strconv.FormatFloat(c.MinConfidence, 'f', -1, 64),
		"--min-tracking-confidence", strconv.FormatFloat(c.MinTrackingConf, 'f', -1, 64),
	}
}

// serviceConn speaks the service protocol: a 4-byte big-endian length and the
// JPEG bytes out, one JSON line with the detected hands back.
type serviceConn struct {
	w        io.Writer
	r        *bufio.Reader
	maxHands int
	minScore float64
}

func newServiceConn(w io.Writer, r io.Reader, c Config) *serviceConn {
	return &serviceConn{w: w, r: bufio.NewReader(r), maxHands: c.MaxHands, minScore: c.MinConfidence}
}

func (c *serviceConn) exchange(jpeg []byte) ([]HandLandmarks, error) {
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(jpeg)))
	if _, err := c.w.Write(length[:]); err != nil {
		return nil, fmt.Errorf("write length: %w", err)
	}
	if _, err := c.w.Write(jpeg); err != nil {
		return nil, fmt.Errorf("write frame: %w", err)
	}

	line, err := c.r.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return c.parse(line)
}

// parse decodes one response line, drops hands scored below minScore and keeps
// at most maxHands.
func (c *serviceConn) parse(line []byte) ([]HandLandmarks, error) {
	var response struct {
		Hands []jsonHand `json:"hands"`
	}
	if err := json.Unmarshal(line, &response); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	hands, err := decodeHands(response.Hands)
	if err != nil {
		return nil, fmt.Errorf("service response: %w", err)
	}

	kept := hands[:0]
	for _, h := range hands {
		if h.Score < c.minScore {
			continue
		}
		kept = append(kept, h)
		if c.maxHands > 0 && len(kept) == c.maxHands {
			break
		}
	}
	return kept, nil
}

func serviceCandidates() []string {
	paths := []string{
		filepath.Join("scripts", serviceScript),
		filepath.Join("..", "scripts", serviceScript),
	}
	if exe, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(exe), "scripts", serviceScript))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".airframe", "scripts", serviceScript))
	}
	return paths
}

func venvCandidates() []string {
	paths := []string{"venv/bin/python", "../venv/bin/python"}
	if exe, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(exe), "venv", "bin", "python"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".airframe", "venv", "bin", "python"))
	}
	return paths
}

// findFile returns the absolute path of the first existing candidate, or "".
func findFile(candidates []string) string {
	for _, p := range candidates {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			return abs
		}
		return p
	}
	return ""
}
