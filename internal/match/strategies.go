package match

import (
	"regexp"
	"strings"
	"sync"

	"bidslite/internal/identifier"
)

// Strategy tags a matching rule.
type Strategy int

const (
	StrategyNone Strategy = iota
	StrategyNumeric
	StrategyDirect
	StrategyCompact
	StrategyFlexible
	StrategyAuthor
)

// MinAuthorLength is the shortest leading name run the author fallback accepts.
const MinAuthorLength = 3

func (s Strategy) String() string {
	switch s {
	case StrategyNumeric:
		return "numeric"
	case StrategyDirect:
		return "direct"
	case StrategyCompact:
		return "compact"
	case StrategyFlexible:
		return "flexible"
	case StrategyAuthor:
		return "author"
	default:
		return "none"
	}
}

type rule struct {
	strategy Strategy
	applies  func(target string) bool
	match    func(text, target string) bool
}

var rules = []rule{
	{StrategyNumeric, identifier.IsNumeric, MatchNumeric},
	{StrategyDirect, isAlphanumericTarget, MatchDirect},
	{StrategyCompact, isAlphanumericTarget, MatchCompact},
	{StrategyFlexible, isAlphanumericTarget, MatchFlexible},
	{StrategyAuthor, isAlphanumericTarget, MatchAuthor},
}

// Strategies returns the rules in the order they are tried.
func Strategies() []Strategy {
	out := make([]Strategy, 0, len(rules))
	for _, r := range rules {
		out = append(out, r.strategy)
	}
	return out
}

func isAlphanumericTarget(target string) bool {
	return target != "" && !identifier.IsNumeric(target)
}

// MatchNumeric finds any zero-padding variant of a numeric target. A
// single-digit variant never matches next to another digit.
func MatchNumeric(text, target string) bool {
	for _, variant := range identifier.PaddingVariants(target) {
		single := len(variant) == 1
		found := searchBounded(text, substringFinder(variant), func(start, end int) bool {
			return !single || !digitAdjacent(text, start, end)
		})
		if found {
			return true
		}
	}
	return false
}

// MatchDirect finds the full target.
func MatchDirect(text, target string) bool {
	if target == "" {
		return false
	}
	return searchBounded(text, substringFinder(target), nil)
}

// MatchCompact finds the target with every boundary marker removed.
func MatchCompact(text, target string) bool {
	compact := identifier.StripMarkers(target)
	if compact == "" {
		return false
	}
	return searchBounded(text, substringFinder(compact), nil)
}

// MatchFlexible finds the compacted target allowing a boundary marker before
// each letter/digit transition.
func MatchFlexible(text, target string) bool {
	re := flexiblePattern(target)
	if re == nil {
		return false
	}
	return searchBounded(text, regexpFinder(re), nil)
}

// MatchAuthor finds the leading name run of a target that carries no digits
// at all. Targets encoding a case or record number never use this rule.
func MatchAuthor(text, target string) bool {
	if identifier.HasDigit(target) {
		return false
	}
	run := AuthorToken(target)
	if len(run) < MinAuthorLength {
		return false
	}
	return searchBounded(text, substringFinder(run), nil)
}

// AuthorToken returns the leading alphabetic run of a normalized target,
// stopping at the first boundary marker or digit.
func AuthorToken(target string) string {
	for i := 0; i < len(target); i++ {
		c := target[i]
		if c == identifier.BoundaryMarker || c < 'a' || c > 'z' {
			return target[:i]
		}
	}
	return target
}

var flexibleCache sync.Map

func flexiblePattern(target string) *regexp.Regexp {
	compact := identifier.StripMarkers(target)
	if compact == "" {
		return nil
	}
	if cached, ok := flexibleCache.Load(compact); ok {
		return cached.(*regexp.Regexp)
	}
	var b strings.Builder
	for i := 0; i < len(compact); i++ {
		if i > 0 && isDigit(compact[i-1]) != isDigit(compact[i]) {
			b.WriteString(string(identifier.BoundaryMarker) + "?")
		}
		b.WriteString(regexp.QuoteMeta(compact[i : i+1]))
	}
	re := regexp.MustCompile(b.String())
	flexibleCache.Store(compact, re)
	return re
}

type finder func(text string, from int) (start, end int, ok bool)

func substringFinder(needle string) finder {
	return func(text string, from int) (int, int, bool) {
		idx := strings.Index(text[from:], needle)
		if idx < 0 {
			return 0, 0, false
		}
		start := from + idx
		return start, start + len(needle), true
	}
}

func regexpFinder(re *regexp.Regexp) finder {
	return func(text string, from int) (int, int, bool) {
		loc := re.FindStringIndex(text[from:])
		if loc == nil {
			return 0, 0, false
		}
		return from + loc[0], from + loc[1], true
	}
}

// searchBounded scans every occurrence reported by find, including
// overlapping ones, and accepts the first with boundary edges that also
// passes extra.
func searchBounded(text string, find finder, extra func(start, end int) bool) bool {
	for from := 0; from < len(text); {
		start, end, ok := find(text, from)
		if !ok {
			return false
		}
		if end > start && bounded(text, start, end) && (extra == nil || extra(start, end)) {
			return true
		}
		from = start + 1
	}
	return false
}

func bounded(text string, start, end int) bool {
	left := start == 0 || isBoundary(text[start-1])
	right := end == len(text) || isBoundary(text[end])
	return left && right
}

func isBoundary(b byte) bool {
	return b == identifier.BoundaryMarker || !identifier.IsAlnum(b)
}

func digitAdjacent(text string, start, end int) bool {
	return (start > 0 && isDigit(text[start-1])) || (end < len(text) && isDigit(text[end]))
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
