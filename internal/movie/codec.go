package movie

import (
	"encoding/json"
	"fmt"
	"io"
)

// wireMovie is the JSON document produced by the simulation service.
type wireMovie struct {
	Name string      `json:"name,omitempty"`
	Evts []wireEvent `json:"evts"`
}

type wireEvent struct {
	Time       float64 `json:"time"`
	Type       Kind    `json:"type"`
	ID         *int    `json:"id,omitempty"`
	LoX        float64 `json:"loX,omitempty"`
	LoY        float64 `json:"loY,omitempty"`
	HiX        float64 `json:"hiX,omitempty"`
	HiY        float64 `json:"hiY,omitempty"`
	BallNumber *int    `json:"ballNumber,omitempty"`
	X          float64 `json:"x,omitempty"`
	Y          float64 `json:"y,omitempty"`
	TargetID   *int    `json:"targetId,omitempty"`
	BarrierID  *int    `json:"barrierId,omitempty"`
	FadeLevel  float64 `json:"fadeLevel,omitempty"`
}

// Decode reads a movie document from r.
func Decode(r io.Reader) (*Movie, error) {
	var in wireMovie
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return nil, fmt.Errorf("decode movie: %w", err)
	}
	return fromWire(in)
}

// Unmarshal parses a movie document.
func Unmarshal(data []byte) (*Movie, error) {
	var in wireMovie
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("decode movie: %w", err)
	}
	return fromWire(in)
}

// Encode writes m as a movie document.
func Encode(w io.Writer, m *Movie) error {
	return json.NewEncoder(w).Encode(toWire(m))
}

// Marshal returns m as a movie document.
func Marshal(m *Movie) ([]byte, error) {
	return json.Marshal(toWire(m))
}

func fromWire(in wireMovie) (*Movie, error) {
	evts := make([]Event, 0, len(in.Evts))
	for i, w := range in.Evts {
		e, err := w.event()
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		evts = append(evts, e)
	}
	return New(in.Name, evts)
}

func need(p *int, field string, k Kind) (int, error) {
	if p == nil {
		return 0, fmt.Errorf("%s event missing %q", k, field)
	}
	return *p, nil
}

func (w wireEvent) event() (Event, error) {
	st := Stamp{Time: w.Time}
	rect := Rect{LoX: w.LoX, LoY: w.LoY, HiX: w.HiX, HiY: w.HiY}

	switch w.Type {
	case KindMakeBarrier, KindMakeTarget:
		id, err := need(w.ID, "id", w.Type)
		if err != nil {
			return nil, err
		}
		if w.Type == KindMakeTarget {
			return MakeTarget{Stamp: st, ID: id, Rect: rect}, nil
		}
		return MakeBarrier{Stamp: st, ID: id, Rect: rect}, nil

	case KindBallLaunch, KindBallPosition, KindBallExit, KindHitEdge:
		ball, err := need(w.BallNumber, "ballNumber", w.Type)
		if err != nil {
			return nil, err
		}
		switch w.Type {
		case KindBallLaunch:
			return BallLaunch{Stamp: st, Ball: ball, X: w.X, Y: w.Y}, nil
		case KindBallPosition:
			return BallPosition{Stamp: st, Ball: ball, X: w.X, Y: w.Y}, nil
		case KindBallExit:
			return BallExit{Stamp: st, Ball: ball}, nil
		default:
			return HitEdge{Stamp: st, Ball: ball}, nil
		}

	case KindHitBarrier:
		ball, err := need(w.BallNumber, "ballNumber", w.Type)
		if err != nil {
			return nil, err
		}
		// Older movies report the struck barrier under targetId.
		ref := w.BarrierID
		if ref == nil {
			ref = w.TargetID
		}
		id, err := need(ref, "barrierId", w.Type)
		if err != nil {
			return nil, err
		}
		return HitBarrier{Stamp: st, BarrierID: id, Ball: ball, X: w.X, Y: w.Y}, nil

	case KindHitTarget:
		ball, err := need(w.BallNumber, "ballNumber", w.Type)
		if err != nil {
			return nil, err
		}
		id, err := need(w.TargetID, "targetId", w.Type)
		if err != nil {
			return nil, err
		}
		return HitTarget{Stamp: st, TargetID: id, Ball: ball, X: w.X, Y: w.Y}, nil

	case KindObstacleFade:
		id, err := need(w.TargetID, "targetId", w.Type)
		if err != nil {
			return nil, err
		}
		if w.FadeLevel < 0 || w.FadeLevel > 1 {
			return nil, fmt.Errorf("fadeLevel %v outside [0,1]", w.FadeLevel)
		}
		return ObstacleFade{Stamp: st, TargetID: id, FadeLevel: w.FadeLevel}, nil
	}
	return nil, fmt.Errorf("unknown event type %q", w.Type)
}

func ptr(v int) *int { return &v }

func toWire(m *Movie) wireMovie {
	out := wireMovie{Name: m.Name, Evts: make([]wireEvent, 0, m.Len())}
	for _, e := range m.events {
		w := wireEvent{Time: e.At(), Type: e.Kind()}
		switch ev := e.(type) {
		case MakeBarrier:
			w.ID = ptr(ev.ID)
			w.LoX, w.LoY, w.HiX, w.HiY = ev.Rect.LoX, ev.Rect.LoY, ev.Rect.HiX, ev.Rect.HiY
		case MakeTarget:
			w.ID = ptr(ev.ID)
			w.LoX, w.LoY, w.HiX, w.HiY = ev.Rect.LoX, ev.Rect.LoY, ev.Rect.HiX, ev.Rect.HiY
		case BallLaunch:
			w.BallNumber, w.X, w.Y = ptr(ev.Ball), ev.X, ev.Y
		case BallPosition:
			w.BallNumber, w.X, w.Y = ptr(ev.Ball), ev.X, ev.Y
		case HitBarrier:
			w.BarrierID, w.BallNumber, w.X, w.Y = ptr(ev.BarrierID), ptr(ev.Ball), ev.X, ev.Y
		case HitTarget:
			w.TargetID, w.BallNumber, w.X, w.Y = ptr(ev.TargetID), ptr(ev.Ball), ev.X, ev.Y
		case ObstacleFade:
			w.TargetID, w.FadeLevel = ptr(ev.TargetID), ev.FadeLevel
		case BallExit:
			w.BallNumber = ptr(ev.Ball)
		case HitEdge:
			w.BallNumber = ptr(ev.Ball)
		}
		out.Evts = append(out.Evts, w)
	}
	return out
}
