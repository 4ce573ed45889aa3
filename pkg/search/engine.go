package search

import (
	"github.com/gogpu/gg/text"

	"github.com/matzehuels/flamechart/pkg/flamechart"
	"github.com/matzehuels/flamechart/pkg/profile"
)

// cacheLimit bounds the number of memoized results per engine.
const cacheLimit = 16384

// Engine scores frames and call-tree nodes. A nil *Match means no match.
type Engine interface {
	flamechart.Matcher
	MatchForNode(*profile.CallTreeNode) *Match
	Query() string
}

type fuzzyEngine struct {
	query  string
	text   func(*profile.Frame) string
	ranges bool
	cache  *text.Cache[*profile.Frame, *Match]
}

// NewNameEngine matches the query against frame display names.
func NewNameEngine(query string) Engine {
	return &fuzzyEngine{
		query:  query,
		text:   func(f *profile.Frame) string { return DisplayName(f.Name) },
		ranges: true,
		cache:  text.NewCache[*profile.Frame, *Match](cacheLimit),
	}
}

// NewFileEngine matches the query against frame source files.
func NewFileEngine(query string) Engine {
	return &fuzzyEngine{
		query: query,
		text:  func(f *profile.Frame) string { return f.File },
		cache: text.NewCache[*profile.Frame, *Match](cacheLimit),
	}
}

func (e *fuzzyEngine) Query() string { return e.query }

func (e *fuzzyEngine) MatchForFrame(f *flamechart.FlamechartFrame) *Match {
	return e.MatchForNode(f.Node)
}

func (e *fuzzyEngine) MatchForNode(n *profile.CallTreeNode) *Match {
	return e.cache.GetOrCreate(n.Frame, func() *Match {
		m := FuzzyMatch(e.text(n.Frame), e.query)
		if m != nil && !e.ranges {
			m.Ranges = nil
		}
		return m
	})
}

type keyEngine struct {
	key       string
	ancestors []string
	cache     *text.Cache[*profile.CallTreeNode, *Match]
}

// NewKeyEngine matches nodes whose frame key equals key. When ancestors are
// given, the nearest ancestors must carry those keys in order, parent first.
func NewKeyEngine(key string, ancestors ...string) Engine {
	return &keyEngine{
		key:       key,
		ancestors: ancestors,
		cache:     text.NewCache[*profile.CallTreeNode, *Match](cacheLimit),
	}
}

func (e *keyEngine) Query() string { return e.key }

func (e *keyEngine) MatchForFrame(f *flamechart.FlamechartFrame) *Match {
	return e.MatchForNode(f.Node)
}

func (e *keyEngine) MatchForNode(n *profile.CallTreeNode) *Match {
	return e.cache.GetOrCreate(n, func() *Match {
		if n.Frame.Key != e.key {
			return nil
		}
		p := n.Parent
		for _, want := range e.ancestors {
			if p == nil || p.IsRoot() || p.Frame.Key != want {
				return nil
			}
			p = p.Parent
		}
		return &Match{Score: 1}
	})
}

// Mode selects an engine constructor by name.
type Mode string

const (
	ModeName Mode = "name"
	ModeFile Mode = "file"
	ModeKey  Mode = "key"
)

// New builds the engine for mode. Key mode treats query as the key.
func New(mode Mode, query string) Engine {
	switch mode {
	case ModeFile:
		return NewFileEngine(query)
	case ModeKey:
		return NewKeyEngine(query)
	default:
		return NewNameEngine(query)
	}
}
