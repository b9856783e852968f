package detector

import (
	"encoding/json"
	"fmt"
	"time"
)

// jsonHand represents the JSON structure shared by the MediaPipe service and the
// frame ingestion API.
type jsonHand struct {
	Points     []jsonPoint `json:"points"`
	Handedness string      `json:"handedness"`
	Score      float64     `json:"score"`
}

type jsonPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type jsonFrame struct {
	Timestamp int64      `json:"timestamp"`
	Hands     []jsonHand `json:"hands"`
}

func (h jsonHand) toHandLandmarks() (HandLandmarks, error) {
	if len(h.Points) != NumLandmarks {
		return HandLandmarks{}, fmt.Errorf("%w: got %d points, want %d", ErrInvalidLandmarks, len(h.Points), NumLandmarks)
	}

	lm := HandLandmarks{
		Handedness: h.Handedness,
		Score:      h.Score,
	}
	for i, p := range h.Points {
		lm.Points[i] = Point3D{X: p.X, Y: p.Y, Z: p.Z}
	}
	return lm, nil
}

func decodeHands(hands []jsonHand) ([]HandLandmarks, error) {
	result := make([]HandLandmarks, len(hands))
	for i, h := range hands {
		lm, err := h.toHandLandmarks()
		if err != nil {
			return nil, fmt.Errorf("hand %d: %w", i, err)
		}
		result[i] = lm
	}
	return result, nil
}

// DecodeFrame parses a landmark frame payload:
//
//	{"timestamp": 1700000000000, "hands": [{"points": [{"x":..,"y":..,"z":..}, ...], "handedness": "Right", "score": 0.9}]}
//
// The timestamp is in unix milliseconds; when absent, now is used. Hands must carry
// exactly NumLandmarks points and in-range coordinates.
func DecodeFrame(data []byte, now time.Time) (Frame, error) {
	var raw jsonFrame
	if err := json.Unmarshal(data, &raw); err != nil {
		return Frame{}, fmt.Errorf("parse frame: %w", err)
	}

	hands, err := decodeHands(raw.Hands)
	if err != nil {
		return Frame{}, err
	}

	frame := Frame{Hands: hands, Timestamp: now}
	if raw.Timestamp > 0 {
		frame.Timestamp = time.UnixMilli(raw.Timestamp)
	}

	if err := frame.Validate(); err != nil {
		return Frame{}, err
	}
	return frame, nil
}

// EncodeFrame is the inverse of DecodeFrame.
func EncodeFrame(f Frame) ([]byte, error) {
	raw := jsonFrame{
		Timestamp: f.Timestamp.UnixMilli(),
		Hands:     make([]jsonHand, len(f.Hands)),
	}
	for i, h := range f.Hands {
		jh := jsonHand{
			Points:     make([]jsonPoint, NumLandmarks),
			Handedness: h.Handedness,
			Score:      h.Score,
		}
		for j, p := range h.Points {
			jh.Points[j] = jsonPoint{X: p.X, Y: p.Y, Z: p.Z}
		}
		raw.Hands[i] = jh
	}
	return json.Marshal(raw)
}
