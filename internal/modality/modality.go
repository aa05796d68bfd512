package modality

import "strings"

// Tag is a data category.
type Tag string

const (
	T1w          Tag = "T1w"
	T2w          Tag = "T2w"
	FLAIR        Tag = "FLAIR"
	Bold         Tag = "bold"
	Lesion       Tag = "lesion"
	Connectivity Tag = "connectivity"
	Other        Tag = "other"
)

// Suffix returns the lowercase file name suffix for the tag.
func (t Tag) Suffix() string {
	if t == "" {
		return string(Other)
	}
	return strings.ToLower(string(t))
}

// Anatomical reports whether the tag is a structural scan.
func (t Tag) Anatomical() bool {
	return t == T1w || t == T2w || t == FLAIR
}

type rule struct {
	tag     Tag
	markers []string
}

// Priority order matters: a name carrying several markers takes the first.
var rules = []rule{
	{T1w, []string{"t1w", "mprage"}},
	{T2w, []string{"t2w"}},
	{FLAIR, []string{"flair"}},
	{Bold, []string{"bold"}},
	{Lesion, []string{"lesion"}},
	{Connectivity, []string{"connectivity", "connectome", "connmat"}},
}

// Classify returns the tag implied by filename. Without a recognizable
// marker it returns hint when set, else fallback.
func Classify(filename string, hint, fallback Tag) Tag {
	lower := strings.ToLower(filename)
	for _, r := range rules {
		for _, m := range r.markers {
			if strings.Contains(lower, m) {
				return r.tag
			}
		}
	}
	if hint != "" {
		return hint
	}
	return fallback
}

var aliases = map[string]Tag{
	"t1w":          T1w,
	"t1":           T1w,
	"mprage":       T1w,
	"t2w":          T2w,
	"t2":           T2w,
	"flair":        FLAIR,
	"bold":         Bold,
	"func":         Bold,
	"fmri":         Bold,
	"lesion":       Lesion,
	"mask":         Lesion,
	"connectivity": Connectivity,
	"connectome":   Connectivity,
	"other":        Other,
}

// Parse maps a metadata hint to a tag. Empty input yields the empty tag and
// unknown values yield Other.
func Parse(raw string) Tag {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return ""
	}
	if tag, ok := aliases[key]; ok {
		return tag
	}
	return Other
}
