package haptic

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"hapticedit/debug"
)

const (
	// LeadInOffset is how far before the first real sample the silent
	// lead-in sample is placed.
	LeadInOffset = 0.001

	// SilenceGap separates the end of the envelopes from a trailing transient
	SilenceGap = 0.01

	denseEditor = "hapticedit"
)

// DenseFile is the flat amplitude/frequency envelope document
type DenseFile struct {
	Version  DenseVersion  `json:"version"`
	Metadata DenseMetadata `json:"metadata"`
	Signals  *DenseSignals `json:"signals"`
}

type DenseVersion struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
	Patch int `json:"patch"`
}

type DenseMetadata struct {
	Editor      string   `json:"editor,omitempty"`
	Source      string   `json:"source,omitempty"`
	Project     string   `json:"project,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Description string   `json:"description,omitempty"`
}

type DenseSignals struct {
	Continuous DenseContinuous `json:"continuous"`
}

type DenseContinuous struct {
	Envelopes DenseEnvelopes `json:"envelopes"`
}

type DenseEnvelopes struct {
	Amplitude []AmplitudeSample `json:"amplitude"`
	Frequency []FrequencySample `json:"frequency"`
}

type AmplitudeSample struct {
	Time      float64   `json:"time"`
	Amplitude float64   `json:"amplitude"`
	Emphasis  *Emphasis `json:"emphasis,omitempty"`
}

// Emphasis marks a transient on an amplitude sample
type Emphasis struct {
	Amplitude float64 `json:"amplitude"`
	Frequency float64 `json:"frequency"`
}

type FrequencySample struct {
	Time      float64 `json:"time"`
	Frequency float64 `json:"frequency"`
}

// ParseVersion reads a dotted version. Missing or unparseable components
// fall back to 1.0.0.
func ParseVersion(s string) DenseVersion {
	v := DenseVersion{Major: 1}
	parts := strings.Split(strings.TrimSpace(s), ".")
	fields := []*int{&v.Major, &v.Minor, &v.Patch}
	for i, part := range parts {
		if i >= len(fields) {
			break
		}
		if n, err := strconv.Atoi(part); err == nil && n >= 0 {
			*fields[i] = n
		}
	}
	return v
}

func (v DenseVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

func encodeDense(events []Event, meta Metadata) ([]byte, error) {
	f := DenseFile{
		Version: ParseVersion(meta.ProjectVersion),
		Metadata: DenseMetadata{
			Editor:      denseEditor,
			Project:     meta.ProjectName,
			Description: meta.Description,
		},
		Signals: &DenseSignals{
			Continuous: DenseContinuous{Envelopes: BuildEnvelopes(events)},
		},
	}
	return json.MarshalIndent(f, "", "  ")
}

// BuildEnvelopes flattens events into one amplitude and one frequency
// timeline. Continuous curves are concatenated in list order, so their spans
// must not overlap. Transients become emphasis on amplitude samples.
func BuildEnvelopes(events []Event) DenseEnvelopes {
	var amp, freq []Vec2
	var transients []*Transient
	for _, e := range events {
		switch ev := e.(type) {
		case *Continuous:
			for _, p := range ev.IntensityCurve {
				amp = append(amp, p.Vec())
			}
			for _, p := range ev.SharpnessCurve {
				freq = append(freq, p.Vec())
			}
		case *Transient:
			transients = append(transients, ev)
		}
	}
	sort.SliceStable(transients, func(i, j int) bool {
		return transients[i].Time() < transients[j].Time()
	})

	if len(amp) == 0 && len(transients) > 0 {
		amp = []Vec2{{}}
		freq = []Vec2{{}}
	}
	amp, freq = leadIn(amp), leadIn(freq)
	amp, freq = coTerminate(amp, freq)

	if n := len(transients); n > 0 && len(amp) > 0 {
		end := amp[len(amp)-1].X
		last := transients[n-1].Time()
		if last > end {
			if gap := end + SilenceGap; gap < last {
				amp = append(amp, Vec2{X: gap})
				freq = append(freq, Vec2{X: gap})
			}
			amp = append(amp, Vec2{X: last})
			freq = append(freq, Vec2{X: last})
		}
	}

	env := DenseEnvelopes{
		Amplitude: make([]AmplitudeSample, len(amp)),
		Frequency: make([]FrequencySample, len(freq)),
	}
	for i, p := range amp {
		env.Amplitude[i] = AmplitudeSample{Time: p.X, Amplitude: p.Y}
	}
	for i, p := range freq {
		env.Frequency[i] = FrequencySample{Time: p.X, Frequency: p.Y}
	}
	for _, t := range transients {
		env.Amplitude = addEmphasis(env.Amplitude, t)
	}
	return env
}

// leadIn prepends silence at time 0 and just before the first sample when
// the timeline starts later than 0.
func leadIn(points []Vec2) []Vec2 {
	if len(points) == 0 || points[0].X <= 0 {
		return points
	}
	first := points[0].X
	lead := []Vec2{{X: 0}}
	if first-LeadInOffset > 0 {
		lead = append(lead, Vec2{X: first - LeadInOffset})
	}
	return append(lead, points...)
}

// coTerminate extends the timeline that ends first with its own last value
func coTerminate(amp, freq []Vec2) ([]Vec2, []Vec2) {
	if len(amp) == 0 || len(freq) == 0 {
		return amp, freq
	}
	lastA, lastF := amp[len(amp)-1], freq[len(freq)-1]
	switch {
	case lastA.X < lastF.X:
		amp = append(amp, Vec2{X: lastF.X, Y: lastA.Y})
	case lastF.X < lastA.X:
		freq = append(freq, Vec2{X: lastA.X, Y: lastF.Y})
	}
	return amp, freq
}

// addEmphasis attaches t to the sample at its time, inserting an
// interpolated sample when none exists.
func addEmphasis(samples []AmplitudeSample, t *Transient) []AmplitudeSample {
	at := t.Time()
	emphasis := &Emphasis{Amplitude: t.Intensity.Value, Frequency: t.Sharpness.Value}

	idx := sort.Search(len(samples), func(i int) bool { return samples[i].Time >= at })
	if idx < len(samples) && samples[idx].Time == at {
		if samples[idx].Emphasis != nil {
			debug.Log("export", "two transients at %.6f, keeping the later one", at)
		}
		samples[idx].Emphasis = emphasis
		return samples
	}

	amplitude := 0.0
	if idx > 0 && idx < len(samples) {
		a, b := samples[idx-1], samples[idx]
		amplitude = lerp(Vec2{X: a.Time, Y: a.Amplitude}, Vec2{X: b.Time, Y: b.Amplitude}, at)
	}
	sample := AmplitudeSample{Time: at, Amplitude: amplitude, Emphasis: emphasis}
	samples = append(samples, AmplitudeSample{})
	copy(samples[idx+1:], samples[idx:])
	samples[idx] = sample
	return samples
}

func decodeDense(data []byte) ([]Event, Metadata, error) {
	var f DenseFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, Metadata{}, err
	}
	if f.Signals == nil {
		return nil, Metadata{}, errors.New("missing signals")
	}

	events, err := f.Events()
	if err != nil {
		return nil, Metadata{}, err
	}
	meta := Metadata{
		ProjectName:    f.Metadata.Project,
		ProjectVersion: f.Version.String(),
		Description:    f.Metadata.Description,
	}
	return events, meta, nil
}

// Events splits the envelopes back into one continuous event plus one
// transient per emphasis.
func (f *DenseFile) Events() ([]Event, error) {
	env := f.Signals.Continuous.Envelopes

	var events []Event
	var amp, freq []Vec2
	silent := true
	for _, s := range env.Amplitude {
		amp = append(amp, Vec2{X: s.Time, Y: s.Amplitude})
		if s.Amplitude != 0 {
			silent = false
		}
		if s.Emphasis != nil {
			events = append(events, NewTransient(s.Time, s.Emphasis.Amplitude, s.Emphasis.Frequency))
		}
	}
	for _, s := range env.Frequency {
		freq = append(freq, Vec2{X: s.Time, Y: s.Frequency})
	}
	if silent {
		return events, nil
	}

	sortVecs(amp)
	sortVecs(freq)
	amp, freq = dedupe(leadIn(amp)), dedupe(leadIn(freq))
	amp, freq = reconcileBounds(amp, freq)
	if len(amp) < 2 || len(freq) < 2 {
		debug.Log("import", "envelope too short for a continuous event (%d/%d samples)", len(amp), len(freq))
		return events, nil
	}

	c, err := NewContinuousFromCurves(amp, freq)
	if err != nil {
		return nil, err
	}
	return append(events, c), nil
}
