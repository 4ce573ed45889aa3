package profile

import (
	"fmt"
	"io"

	pprof "github.com/google/pprof/profile"

	"github.com/matzehuels/flamechart/pkg/errors"
)

// ImportPprof parses a pprof profile (gzipped or not) into a sample profile.
// sampleType selects the value column by name; empty picks the profile's
// default sample type, or the last column when none is declared.
func ImportPprof(r io.Reader, sampleType string, opts ...Option) (*SampleProfile, error) {
	prof, err := pprof.Parse(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "pprof: parse")
	}
	if len(prof.SampleType) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "pprof: profile has no sample types")
	}

	idx := len(prof.SampleType) - 1
	want := sampleType
	if want == "" {
		want = prof.DefaultSampleType
	}
	if want != "" {
		found := false
		for i, st := range prof.SampleType {
			if st.Type == want {
				idx, found = i, true
				break
			}
		}
		if !found && sampleType != "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "pprof: no sample type %q", sampleType)
		}
	}

	st := prof.SampleType[idx]
	base := []Option{WithFormatter(FormatterForUnit(st.Unit)), WithName(st.Type)}
	b := NewSampleProfileBuilder(append(base, opts...)...)

	for _, s := range prof.Sample {
		if idx >= len(s.Value) {
			continue
		}
		stack := sampleStack(s)
		if err := b.AppendSample(stack, float64(s.Value[idx])); err != nil {
			return nil, fmt.Errorf("pprof: %w", err)
		}
	}
	return b.Build(), nil
}

// sampleStack converts a pprof sample (leaf first, inlined frames innermost
// first) into an outermost-first stack.
func sampleStack(s *pprof.Sample) []FrameInfo {
	var stack []FrameInfo
	for i := len(s.Location) - 1; i >= 0; i-- {
		loc := s.Location[i]
		if len(loc.Line) == 0 {
			name := fmt.Sprintf("0x%x", loc.Address)
			if loc.Mapping != nil {
				name = fmt.Sprintf("0x%x @%s", loc.Address, loc.Mapping.File)
			}
			stack = append(stack, FrameInfo{Key: name, Name: name})
			continue
		}
		for j := len(loc.Line) - 1; j >= 0; j-- {
			line := loc.Line[j]
			name, file := "", ""
			if fn := line.Function; fn != nil {
				name, file = fn.Name, fn.Filename
				if name == "" {
					name = fn.SystemName
				}
			}
			if name == "" {
				name = fmt.Sprintf("0x%x", loc.Address)
			}
			stack = append(stack, FrameInfo{
				Key:  name + "\x00" + file,
				Name: name,
				File: file,
				Line: int(line.Line),
			})
		}
	}
	return stack
}
