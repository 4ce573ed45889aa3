package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/matzehuels/flamechart/pkg/errors"
	"github.com/matzehuels/flamechart/pkg/profile"
)

// Loaded is a decoded profile together with the cache identity of its source.
type Loaded struct {
	Profile profile.Profile
	Input   string
	Key     string // profile cache key: content hash plus decode options
}

// Decode parses data in the given input format.
func Decode(data []byte, input string, opts Options) (profile.Profile, error) {
	popts := []profile.Option{profile.WithAttributes(profile.LongTaskAttributes)}
	if opts.Path != "" {
		popts = append(popts, profile.WithName(filepath.Base(opts.Path)))
	}

	switch input {
	case InputCollapsed:
		if opts.Unit != "" {
			popts = append(popts, profile.WithFormatter(profile.FormatterForUnit(opts.Unit)))
		}
		p, err := profile.DecodeCollapsed(bytes.NewReader(data), popts...)
		if err != nil {
			return nil, err
		}
		return p, nil
	case InputPprof:
		p, err := profile.ImportPprof(bytes.NewReader(data), opts.SampleType, popts...)
		if err != nil {
			return nil, err
		}
		return p, nil
	case InputInterval:
		p, err := decodeIntervals(data, popts)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, ValidateInput(input)
	}
}

// intervalFile is the JSON layout of interval input:
//
//	{"name": "page load", "unit": "milliseconds",
//	 "intervals": [{"name": "GET /", "start": 0, "end": 120, "group": "network"}]}
type intervalFile struct {
	Name      string          `json:"name"`
	Unit      string          `json:"unit"`
	Intervals []intervalEntry `json:"intervals"`
}

type intervalEntry struct {
	Key   string  `json:"key,omitempty"`
	Name  string  `json:"name"`
	File  string  `json:"file,omitempty"`
	Line  int     `json:"line,omitempty"`
	Kind  string  `json:"kind,omitempty"`
	Group string  `json:"group,omitempty"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

var intervalKinds = map[string]profile.FrameKind{
	"":        profile.KindRequest,
	"call":    profile.KindCall,
	"task":    profile.KindTask,
	"timing":  profile.KindTiming,
	"request": profile.KindRequest,
}

func decodeIntervals(data []byte, popts []profile.Option) (*profile.IntervalProfile, error) {
	var f intervalFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "interval: decode")
	}
	if f.Name != "" {
		popts = append(popts, profile.WithName(f.Name))
	}
	if f.Unit != "" {
		popts = append(popts, profile.WithFormatter(profile.FormatterForUnit(f.Unit)))
	}

	p := profile.NewIntervalProfile(popts...)
	for i, e := range f.Intervals {
		kind, ok := intervalKinds[e.Kind]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "interval %d: unknown kind %q", i, e.Kind)
		}
		key := e.Key
		if key == "" {
			key = fmt.Sprintf("%s:%s:%d", e.Name, e.File, e.Line)
		}
		info := profile.FrameInfo{Key: key, Name: e.Name, File: e.File, Line: e.Line, Kind: kind, Group: e.Group}
		if _, err := p.Append(info, e.Start, e.End); err != nil {
			return nil, fmt.Errorf("interval %d: %w", i, err)
		}
	}
	return p, nil
}
