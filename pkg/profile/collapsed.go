package profile

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/matzehuels/flamechart/pkg/errors"
)

// DecodeCollapsed reads folded stacks ("a;b;c 42" per line) into a sample
// profile. Lines are replayed in file order, so consecutive lines that share
// a prefix form one continuous call in the chronological view.
func DecodeCollapsed(r io.Reader, opts ...Option) (*SampleProfile, error) {
	b := NewSampleProfileBuilder(opts...)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		idx := strings.LastIndexByte(line, ' ')
		if idx == -1 {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "collapsed: line %d: missing sample count", lineNo)
		}
		count, err := strconv.ParseFloat(line[idx+1:], 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "collapsed: line %d: bad sample count", lineNo)
		}

		names := strings.Split(strings.TrimSpace(line[:idx]), ";")
		stack := make([]FrameInfo, 0, len(names))
		for _, name := range names {
			if name == "" {
				continue
			}
			stack = append(stack, FrameInfo{Key: name, Name: name})
		}
		if err := b.AppendSample(stack, count); err != nil {
			return nil, fmt.Errorf("collapsed: line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("collapsed: read: %w", err)
	}
	return b.Build(), nil
}
