// Package match decides whether a normalized identifier occurs inside a file
// name or one of its ancestor directory names.
//
// Matching is an ordered list of strategies tried in priority order. Numeric
// identifiers compare against their zero-padding variants. Alphanumeric
// identifiers try a direct match, a match with boundary markers removed, a
// flexible match that tolerates markers at letter/digit transitions, and
// finally an author-name fallback for identifiers that carry no digits. Every
// strategy requires boundary-respecting edges.
//
// When a name carries both a participant marker (sub, subject, participant,
// patient) and a session marker (ses, session, s followed by digits), each role
// is confined to its own region of the name.
package match
