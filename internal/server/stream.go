package server

import (
	"fmt"
	"net/http"

	"github.com/ayusman/airframe/internal/app"
	"github.com/ayusman/airframe/internal/capture"
)

// StreamHandler serves rendered frames as MJPEG.
type StreamHandler struct {
	frames  *app.FrameBuffer
	quality int
}

// NewStreamHandler creates a StreamHandler reading from frames. A non-positive
// quality selects capture.DefaultJPEGQuality.
func NewStreamHandler(frames *app.FrameBuffer, quality int) *StreamHandler {
	if quality <= 0 {
		quality = capture.DefaultJPEGQuality
	}
	return &StreamHandler{frames: frames, quality: quality}
}

// ServeHTTP streams one part per rendered frame until the client disconnects.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	var seq uint64
	for {
		buf, next, err := h.frames.Wait(r.Context(), seq)
		if err != nil {
			return
		}
		seq = next

		jpeg, err := capture.EncodeJPEG(buf, h.quality)
		if err != nil {
			continue
		}

		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(jpeg))
		if _, err := w.Write(jpeg); err != nil {
			return
		}
		fmt.Fprintf(w, "\r\n")

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}
