package match

import (
	"regexp"

	"bidslite/internal/identifier"
	"bidslite/internal/source"
)

// Role selects which identifier a match is looking for.
type Role int

const (
	RoleParticipant Role = iota
	RoleSession
)

func (r Role) String() string {
	if r == RoleSession {
		return "session"
	}
	return "participant"
}

var (
	participantMarker  = regexp.MustCompile(`(?:^|u)(subject|sub|participant|patient)(?:u[a-z0-9]|[0-9])`)
	sessionMarker      = regexp.MustCompile(`(?:^|u)(session|ses)u?[0-9]`)
	// shortSessionMarker ("s01") only counts after a participant marker;
	// on its own "S12" names subject 12.
	shortSessionMarker = regexp.MustCompile(`u(s)[0-9]`)
)

// marker locates a role keyword and the start of the value that follows it.
type marker struct {
	start, valueStart int
}

func findMarker(re *regexp.Regexp, text string) (marker, bool) {
	loc := re.FindStringSubmatchIndex(text)
	if loc == nil {
		return marker{}, false
	}
	// The pattern ends with the first value character.
	valueStart := loc[1] - 1
	return marker{start: loc[2], valueStart: valueStart}, true
}

func findSessionMarker(text string, pm marker, hasP bool) (marker, bool) {
	if sm, ok := findMarker(sessionMarker, text); ok {
		return sm, true
	}
	if !hasP {
		return marker{}, false
	}
	sm, ok := findMarker(shortSessionMarker, text[pm.valueStart:])
	if !ok {
		return marker{}, false
	}
	return marker{start: sm.start + pm.valueStart, valueStart: sm.valueStart + pm.valueStart}, true
}

// Regions returns the parts of a normalized name searched for role. With both
// markers present each role is confined to its own region. A lone session
// marker confines the participant to the text before it and the session to
// the value after it.
func Regions(text string, role Role) []string {
	pm, hasP := findMarker(participantMarker, text)
	sm, hasS := findSessionMarker(text, pm, hasP)
	switch {
	case hasP && hasS:
		if role == RoleSession {
			end := len(text)
			if pm.start > sm.start {
				end = pm.start
			}
			return []string{text[sm.valueStart:end]}
		}
		end := len(text)
		if sm.start > pm.start {
			end = sm.start
		}
		start := pm.valueStart
		if start > end {
			start = end
		}
		return []string{text[start:end]}
	case hasS && role == RoleParticipant:
		return []string{text[:sm.start]}
	case hasS && role == RoleSession:
		return []string{text[sm.valueStart:]}
	default:
		return []string{text}
	}
}

// Matches reports whether target occurs in text for role.
func Matches(text, target string, role Role) bool {
	_, ok := Explain(text, target, role)
	return ok
}

// Explain reports the first strategy that matches target in text.
func Explain(text, target string, role Role) (Strategy, bool) {
	normText := identifier.Normalize(text)
	normTarget := identifier.Normalize(target)
	if normText == "" || normTarget == "" {
		return StrategyNone, false
	}
	regions := Regions(normText, role)
	for _, r := range rules {
		if !r.applies(normTarget) {
			continue
		}
		for _, region := range regions {
			if region != "" && r.match(region, normTarget) {
				return r.strategy, true
			}
		}
	}
	return StrategyNone, false
}

// MatchesPath applies Matches to the file name and every ancestor directory.
func MatchesPath(file source.File, target string, role Role) bool {
	_, _, ok := ExplainPath(file, target, role)
	return ok
}

// ExplainPath reports the first path component, innermost first, that
// matches and the strategy that fired.
func ExplainPath(file source.File, target string, role Role) (string, Strategy, bool) {
	for _, component := range file.Components() {
		if s, ok := Explain(component, target, role); ok {
			return component, s, true
		}
	}
	return "", StrategyNone, false
}

// HasSessionPattern reports whether text carries a recognizable session token.
func HasSessionPattern(text string) bool {
	norm := identifier.Normalize(text)
	pm, hasP := findMarker(participantMarker, norm)
	_, ok := findSessionMarker(norm, pm, hasP)
	return ok
}

// SessionCompatible reports whether file may belong to sessionID. A path with
// no session token is compatible with every session. Otherwise at least one
// component carrying a session token must match sessionID.
func SessionCompatible(file source.File, sessionID string) bool {
	tokens := 0
	for _, component := range file.Components() {
		if !HasSessionPattern(component) {
			continue
		}
		tokens++
		if Matches(component, sessionID, RoleSession) {
			return true
		}
	}
	return tokens == 0
}
