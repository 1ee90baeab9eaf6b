package wordlist

import (
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"hackmaster/internal/domain"
)

const (
	// DefaultMinLength is the shortest candidate that reaches a sink
	DefaultMinLength = 8

	// minguoOffset converts a Gregorian year to the Minguo calendar
	minguoOffset = 1911
)

// DefaultSeparators are placed between name and date/filler pairs, in order
var DefaultSeparators = []string{"!", "#", "$", "@", ""}

// DefaultFillers are the numeric constants paired with every name, in order
var DefaultFillers = []string{"123", "1234", "8888", "8787", "6666", "666", "168", "1111"}

// Options controls the grammar and acceptance filter of a Generator
type Options struct {
	MinLength int
	// FilterNetworkName applies MinLength to the network name candidate.
	// When false the network name is always emitted, even when empty.
	FilterNetworkName bool
	Separators        []string
	Fillers           []string
}

// DefaultOptions returns the stock grammar with the network name filtered
func DefaultOptions() Options {
	return Options{
		MinLength:         DefaultMinLength,
		FilterNetworkName: true,
		Separators:        append([]string(nil), DefaultSeparators...),
		Fillers:           append([]string(nil), DefaultFillers...),
	}
}

// Stats counts the outcome of a run
type Stats struct {
	Emitted  int `json:"emitted"`
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}

// Generator produces candidate passwords. It holds no per-run state and is
// safe for concurrent use.
type Generator struct {
	opts Options
}

// New creates a generator. Zero MinLength and nil separator or filler
// lists fall back to the defaults; an empty non-nil list is kept as is.
func New(opts Options) *Generator {
	if opts.MinLength <= 0 {
		opts.MinLength = DefaultMinLength
	}
	if opts.Separators == nil {
		opts.Separators = DefaultSeparators
	}
	if opts.Fillers == nil {
		opts.Fillers = DefaultFillers
	}
	return &Generator{opts: opts.clone()}
}

// Options returns a copy of the effective options
func (g *Generator) Options() Options {
	return g.opts.clone()
}

func (o Options) clone() Options {
	o.Separators = slices.Clone(o.Separators)
	o.Fillers = slices.Clone(o.Fillers)
	return o
}

// Derive builds the per-category variants for facts. It fails on the first
// malformed date and derives nothing in that case.
func (g *Generator) Derive(facts domain.Facts) (domain.CandidateSet, error) {
	set := domain.CandidateSet{
		Dates:  make([]string, 0, 5*len(facts.Dates)),
		Phones: make([]string, 0, 2*len(facts.Phones)),
		IDs:    make([]string, 0, len(facts.IDs)),
		Names:  make([]string, 0, 4*len(facts.Names)),
	}

	for _, date := range facts.Dates {
		variants, err := dateVariants(date)
		if err != nil {
			return domain.CandidateSet{}, err
		}
		set.Dates = append(set.Dates, variants...)
	}
	for _, phone := range facts.Phones {
		set.Phones = append(set.Phones, phone, dropRunes(phone, 2))
	}
	set.IDs = append(set.IDs, facts.IDs...)
	for _, name := range facts.Names {
		set.Names = append(set.Names, nameVariants(name)...)
	}

	return set, nil
}

// EmissionCount returns how many strings a run over set emits before filtering
func (g *Generator) EmissionCount(set domain.CandidateSet) int {
	seps := len(g.opts.Separators)
	names := len(set.Names)
	return set.Len() +
		2*seps*names*len(set.Dates) +
		2*seps*names*len(g.opts.Fillers) +
		1
}

// Accepts reports whether candidate passes the length filter
func (g *Generator) Accepts(candidate string) bool {
	return utf8.RuneCountInString(candidate) >= g.opts.MinLength
}

// Generate writes every accepted candidate for facts to sink, in order.
// A run that accepts nothing returns zero Stats.Accepted and a nil error.
// Sink failures are returned as *SinkWriteError.
func (g *Generator) Generate(facts domain.Facts, sink Sink) (Stats, error) {
	var stats Stats

	err := g.walk(facts, func(candidate string, networkName bool) error {
		stats.Emitted++
		if !g.accepts(candidate, networkName) {
			stats.Rejected++
			return nil
		}
		if err := sink.Append(candidate); err != nil {
			return sinkError("append", err)
		}
		stats.Accepted++
		return nil
	})
	if err != nil {
		return stats, err
	}

	if f, ok := sink.(flusher); ok {
		if err := f.Flush(); err != nil {
			return stats, sinkError("flush", err)
		}
	}

	return stats, nil
}

// Each calls fn for every emitted string, before filtering. Iteration stops
// at the first error fn returns.
func (g *Generator) Each(facts domain.Facts, fn func(candidate string) error) error {
	return g.walk(facts, func(candidate string, _ bool) error {
		return fn(candidate)
	})
}

func (g *Generator) accepts(candidate string, networkName bool) bool {
	if networkName && !g.opts.FilterNetworkName {
		return true
	}
	return g.Accepts(candidate)
}

func (g *Generator) walk(facts domain.Facts, emit func(candidate string, networkName bool) error) error {
	set, err := g.Derive(facts)
	if err != nil {
		return err
	}

	for _, group := range [][]string{set.Dates, set.Phones, set.IDs, set.Names} {
		for _, c := range group {
			if err := emit(c, false); err != nil {
				return err
			}
		}
	}

	if err := g.pairs(set.Names, set.Dates, emit); err != nil {
		return err
	}
	if err := g.pairs(set.Names, g.opts.Fillers, emit); err != nil {
		return err
	}

	return emit(facts.NetworkName, true)
}

// pairs emits name+sep+other and other+sep+name for every separator, name
// and other, in that nesting order
func (g *Generator) pairs(names, others []string, emit func(string, bool) error) error {
	for _, sep := range g.opts.Separators {
		for _, name := range names {
			for _, other := range others {
				if err := emit(name+sep+other, false); err != nil {
					return err
				}
				if err := emit(other+sep+name, false); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// dateVariants expands YYYY-MM-DD. Month and day are used verbatim.
func dateVariants(date string) ([]string, error) {
	parts := strings.Split(date, "-")
	if len(parts) != 3 {
		return nil, &MalformedDateError{Date: date, Reason: "expected YYYY-MM-DD"}
	}
	year, month, day := parts[0], parts[1], parts[2]

	y, err := strconv.Atoi(year)
	if err != nil {
		return nil, &MalformedDateError{Date: date, Reason: "year is not a number"}
	}

	return []string{
		year + month + day,
		month + day + year,
		strconv.Itoa(y-minguoOffset) + month + day,
		year,
		month + day,
	}, nil
}

func nameVariants(name string) []string {
	tokens := strings.Split(name, " ")

	var plain, title, lower, upper strings.Builder
	for _, tok := range tokens {
		plain.WriteString(tok)
		title.WriteString(titleWord(tok))
		lower.WriteString(strings.ToLower(tok))
		upper.WriteString(strings.ToUpper(tok))
	}

	return []string{plain.String(), title.String(), lower.String(), upper.String()}
}

// titleWord upper-cases the first rune and lower-cases the rest
func titleWord(word string) string {
	if word == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(word)
	return string(unicode.ToUpper(r)) + strings.ToLower(word[size:])
}

func dropRunes(s string, n int) string {
	for i := 0; i < n && s != ""; i++ {
		_, size := utf8.DecodeRuneInString(s)
		s = s[size:]
	}
	return s
}
