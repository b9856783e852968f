package detector

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"
)

func TestFrame_Validate(t *testing.T) {
	t.Run("preset hands are in range", func(t *testing.T) {
		presets := map[string]HandLandmarks{
			"open palm":   OpenPalmLandmarks(),
			"thumbs up":   ThumbsUpLandmarks(),
			"thumbs down": ThumbsDownLandmarks(),
			"peace":       PeaceLandmarks(),
			"fist":        FistLandmarks(),
			"rock":        RockLandmarks(),
			"point up":    PointUpLandmarks(),
			"point down":  PointDownLandmarks(),
		}
		for name, hand := range presets {
			f := Frame{Hands: []HandLandmarks{hand}}
			if err := f.Validate(); err != nil {
				t.Errorf("%s: unexpected error: %v", name, err)
			}
		}
	})

	t.Run("empty frame is valid", func(t *testing.T) {
		f := Frame{}
		if err := f.Validate(); err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
	})

	t.Run("out of range coordinate is rejected", func(t *testing.T) {
		hand := OpenPalmLandmarks()
		hand.Points[IndexTip].Y = -0.01
		f := Frame{Hands: []HandLandmarks{hand}}

		err := f.Validate()
		if !errors.Is(err, ErrInvalidLandmarks) {
			t.Errorf("expected ErrInvalidLandmarks, got %v", err)
		}
	})

	t.Run("NaN coordinate is rejected", func(t *testing.T) {
		for _, axis := range []string{"x", "y"} {
			hand := OpenPalmLandmarks()
			if axis == "x" {
				hand.Points[MiddleMCP].X = math.NaN()
			} else {
				hand.Points[MiddleMCP].Y = math.NaN()
			}
			f := Frame{Hands: []HandLandmarks{hand}}
			if err := f.Validate(); !errors.Is(err, ErrInvalidLandmarks) {
				t.Errorf("NaN %s: expected ErrInvalidLandmarks, got %v", axis, err)
			}
		}
	})

	t.Run("only the first hand is checked", func(t *testing.T) {
		bad := OpenPalmLandmarks().Shift(2, 0)
		f := Frame{Hands: []HandLandmarks{FistLandmarks(), bad}}
		if err := f.Validate(); err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
	})
}

func TestDecodeFrame(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)

	t.Run("round trip with timestamp", func(t *testing.T) {
		in := Frame{
			Hands:     []HandLandmarks{PeaceLandmarks()},
			Timestamp: time.UnixMilli(1_700_000_000_500),
		}
		data, err := EncodeFrame(in)
		if err != nil {
			t.Fatalf("EncodeFrame() error = %v", err)
		}

		out, err := DecodeFrame(data, now)
		if err != nil {
			t.Fatalf("DecodeFrame() error = %v", err)
		}
		if !out.Timestamp.Equal(in.Timestamp) {
			t.Errorf("timestamp = %v, want %v", out.Timestamp, in.Timestamp)
		}
		if len(out.Hands) != 1 || out.Hands[0].Points != in.Hands[0].Points {
			t.Errorf("hands differ after round trip")
		}
	})

	t.Run("missing timestamp uses now", func(t *testing.T) {
		out, err := DecodeFrame([]byte(`{"hands": []}`), now)
		if err != nil {
			t.Fatalf("DecodeFrame() error = %v", err)
		}
		if !out.Timestamp.Equal(now) {
			t.Errorf("timestamp = %v, want %v", out.Timestamp, now)
		}
		if out.Primary() != nil {
			t.Error("expected no primary hand")
		}
	})

	t.Run("short hand is rejected", func(t *testing.T) {
		points := strings.Repeat(`{"x":0.5,"y":0.5,"z":0},`, 20)
		payload := `{"hands":[{"points":[` + strings.TrimSuffix(points, ",") + `]}]}`

		_, err := DecodeFrame([]byte(payload), now)
		if !errors.Is(err, ErrInvalidLandmarks) {
			t.Errorf("expected ErrInvalidLandmarks, got %v", err)
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := DecodeFrame([]byte(`{"hands":`), now)
		if err == nil {
			t.Error("expected error for malformed payload")
		}
	})
}

func TestMockDetector(t *testing.T) {
	t.Run("returns empty hands by default", func(t *testing.T) {
		mock := NewMockDetector()

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if hands != nil {
			t.Errorf("expected nil hands, got %v", hands)
		}
	})

	t.Run("returns configured hands", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]HandLandmarks{ThumbsUpLandmarks(), OpenPalmLandmarks()})

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(hands) != 2 {
			t.Errorf("expected 2 hands, got %d", len(hands))
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()

		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		hands, err := mock.Detect(nil)

		if err != expectedErr {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if hands != nil {
			t.Errorf("expected nil hands when error is set, got %v", hands)
		}
	})

	t.Run("DetectFrame stamps the frame", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]HandLandmarks{FistLandmarks()})
		at := time.UnixMilli(42)

		f, err := DetectFrame(mock, nil, at)
		if err != nil {
			t.Fatalf("DetectFrame() error = %v", err)
		}
		if !f.Timestamp.Equal(at) || len(f.Hands) != 1 {
			t.Errorf("unexpected frame %+v", f)
		}
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
	})
}

func TestShift(t *testing.T) {
	hand := OpenPalmLandmarks()
	moved := hand.Shift(0.1, -0.05)

	if moved.Points[Wrist].X != hand.Points[Wrist].X+0.1 {
		t.Errorf("wrist X = %f, want %f", moved.Points[Wrist].X, hand.Points[Wrist].X+0.1)
	}
	if moved.Points[IndexTip].Y != hand.Points[IndexTip].Y-0.05 {
		t.Errorf("index tip Y = %f, want %f", moved.Points[IndexTip].Y, hand.Points[IndexTip].Y-0.05)
	}
	if hand.Points[Wrist].X != 0.5 {
		t.Error("Shift must not modify the receiver's copy")
	}
}

// handJSON renders one service hand with every point at (x, y).
func handJSON(x, y, score float64) string {
	pts := make([]string, NumLandmarks)
	for i := range pts {
		pts[i] = fmt.Sprintf(`{"x":%g,"y":%g,"z":0}`, x, y)
	}
	return fmt.Sprintf(`{"points":[%s],"handedness":"Right","score":%g}`, strings.Join(pts, ","), score)
}

func TestServiceConn(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name      string
		response  string
		wantHands int
		wantScore float64
		wantErr   error
	}{
		{"no hands", `{"hands":[]}`, 0, 0, nil},
		{"confident hand", `{"hands":[` + handJSON(0.5, 0.5, 0.9) + `]}`, 1, 0.9, nil},
		{"low score dropped", `{"hands":[` + handJSON(0.5, 0.5, 0.3) + `]}`, 0, 0, nil},
		{
			"low score first hand skipped",
			`{"hands":[` + handJSON(0.2, 0.2, 0.1) + `,` + handJSON(0.6, 0.6, 0.8) + `]}`,
			1, 0.8, nil,
		},
		{
			"capped at max hands",
			`{"hands":[` + handJSON(0.2, 0.2, 0.9) + `,` + handJSON(0.6, 0.6, 0.95) + `]}`,
			1, 0.9, nil,
		},
		{"short hand", `{"hands":[{"points":[{"x":0,"y":0,"z":0}],"score":0.9}]}`, 0, 0, ErrInvalidLandmarks},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sent bytes.Buffer
			conn := newServiceConn(&sent, strings.NewReader(tt.response+"\n"), cfg)

			hands, err := conn.exchange([]byte{0xff, 0xd8, 0xff, 0xd9})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("exchange() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("exchange() error = %v", err)
			}
			if len(hands) != tt.wantHands {
				t.Fatalf("got %d hands, want %d", len(hands), tt.wantHands)
			}
			if tt.wantHands > 0 && hands[0].Score != tt.wantScore {
				t.Errorf("first hand score = %v, want %v", hands[0].Score, tt.wantScore)
			}

			if n := binary.BigEndian.Uint32(sent.Bytes()[:4]); n != 4 || sent.Len() != 8 {
				t.Errorf("request framing: length %d, %d bytes written", n, sent.Len())
			}
		})
	}
}

func TestServiceArgs(t *testing.T) {
	got := serviceArgs("/opt/service.py", Config{MaxHands: 1, MinConfidence: 0.6, MinTrackingConf: 0.45})
	want := []string{
		"/opt/service.py",
		"--max-hands", "1",
		"--min-detection-confidence", "0.6",
		"--min-tracking-confidence", "0.45",
	}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("serviceArgs() = %v, want %v", got, want)
	}
}

func TestWithDefaults(t *testing.T) {
	c := withDefaults(Config{MinConfidence: 0.7})
	if c.MaxHands != 1 || c.MinConfidence != 0.7 || c.MinTrackingConf != 0.5 || c.IdleTimeout != 30*time.Second {
		t.Errorf("withDefaults() = %+v", c)
	}
}
