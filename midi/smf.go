// Package midi reads and writes note data in Standard MIDI Files so that
// drum or melody tracks can be brought in as transient haptic events.
package midi

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"hapticedit/debug"
	"hapticedit/haptic"
)

const (
	ticksPerQuarter = 960
	writeBPM        = 120.0
)

var ErrNoNotes = errors.New("midi file contains no notes")

// Note is a note start in absolute seconds
type Note struct {
	Time     float64
	Channel  uint8
	Key      uint8
	Velocity uint8
}

// ReadNotes returns every note start of every track, ordered by time
func ReadNotes(r io.Reader) ([]Note, error) {
	var notes []Note
	err := smf.ReadTracksFrom(r).Do(func(ev smf.TrackEvent) {
		var ch, key, vel uint8
		if gomidi.Message(ev.Message).GetNoteStart(&ch, &key, &vel) {
			notes = append(notes, Note{
				Time:     float64(ev.AbsMicroSeconds) / 1e6,
				Channel:  ch,
				Key:      key,
				Velocity: vel,
			})
		}
	}).Error()
	if err != nil {
		return nil, fmt.Errorf("read smf: %w", err)
	}

	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].Time < notes[j].Time
	})
	return notes, nil
}

// NotesToEvents maps each note start to a transient: velocity drives
// intensity and pitch drives sharpness. Notes starting together collapse
// into one transient carrying the loudest velocity and highest key.
func NotesToEvents(notes []Note) []haptic.Event {
	var events []haptic.Event
	var last *haptic.Transient
	for _, n := range notes {
		intensity := float64(n.Velocity) / 127
		sharpness := float64(n.Key) / 127
		if last != nil && last.Time() == n.Time {
			last.Intensity.Value = math.Max(last.Intensity.Value, intensity)
			last.Sharpness.Value = math.Max(last.Sharpness.Value, sharpness)
			continue
		}
		last = haptic.NewTransient(n.Time, intensity, sharpness)
		events = append(events, last)
	}
	return events
}

// TransientsToNotes is the inverse of NotesToEvents on channel 10 (drums)
func TransientsToNotes(transients []*haptic.Transient) []Note {
	notes := make([]Note, 0, len(transients))
	for _, t := range transients {
		notes = append(notes, Note{
			Time:     t.Time(),
			Channel:  9,
			Key:      toMIDI(t.Sharpness.Value, 0),
			Velocity: toMIDI(t.Intensity.Value, 1),
		})
	}
	return notes
}

// toMIDI maps a parameter value onto a 7-bit MIDI value no lower than
// floor. Values outside [0, 1] are clamped.
func toMIDI(v float64, floor uint8) uint8 {
	v = math.Max(0, math.Min(1, v))
	return max(floor, uint8(math.Round(v*127)))
}

// WriteNotes stores notes as a single-track SMF at a fixed tempo. Every
// note is closed one sixteenth after it starts.
func WriteNotes(w io.Writer, notes []Note) error {
	if len(notes) == 0 {
		return ErrNoNotes
	}
	sorted := append([]Note(nil), notes...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time < sorted[j].Time
	})

	type timed struct {
		tick uint32
		msg  gomidi.Message
	}
	gate := uint32(ticksPerQuarter / 4)
	var msgs []timed
	for _, n := range sorted {
		start := secondsToTicks(n.Time)
		msgs = append(msgs,
			timed{start, gomidi.NoteOn(n.Channel, n.Key, n.Velocity)},
			timed{start + gate, gomidi.NoteOff(n.Channel, n.Key)},
		)
	}
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].tick < msgs[j].tick
	})

	var tr smf.Track
	tr.Add(0, smf.MetaTempo(writeBPM))
	var prev uint32
	for _, m := range msgs {
		tr.Add(m.tick-prev, m.msg)
		prev = m.tick
	}
	tr.Close(0)

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(ticksPerQuarter)
	if err := s.Add(tr); err != nil {
		return err
	}
	_, err := s.WriteTo(w)
	return err
}

func secondsToTicks(seconds float64) uint32 {
	ticksPerSecond := writeBPM / 60 * ticksPerQuarter
	return uint32(math.Round(math.Max(0, seconds) * ticksPerSecond))
}

// Decoder lets haptic.Decode fall back to reading a Standard MIDI File
type Decoder struct{}

func (Decoder) Name() string { return "midi" }

func (Decoder) DecodeContainer(data []byte) ([]haptic.Event, error) {
	notes, err := ReadNotes(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if len(notes) == 0 {
		return nil, ErrNoNotes
	}
	events := NotesToEvents(notes)
	debug.Log("import", "midi: %d notes -> %d transients", len(notes), len(events))
	return events, nil
}
