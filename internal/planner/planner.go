package planner

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"bidslite/internal/faults"
	"bidslite/internal/layout"
	"bidslite/internal/logging"
	"bidslite/internal/match"
	"bidslite/internal/metadata"
	"bidslite/internal/modality"
	"bidslite/internal/source"
)

// ActionCopy is the only action the planner emits.
const ActionCopy = "copy"

// Operation maps one source file to its destination.
type Operation struct {
	Source      string `json:"src" yaml:"src"`
	Destination string `json:"dst" yaml:"dst"`
	Action      string `json:"action" yaml:"action"`
}

// Snapshot yields the candidate files of one planning run.
type Snapshot interface {
	Files() ([]source.File, error)
}

// Defaults are the values the planner substitutes when a record or file
// leaves something unspecified.
type Defaults struct {
	Session    string
	Modality   modality.Tag
	Dirs       layout.Dirs
	Extensions []string
}

// StandardDefaults returns session 01, T1w, BIDS folder names, and NIfTI
// extensions.
func StandardDefaults() Defaults {
	return Defaults{
		Session:    "01",
		Modality:   modality.T1w,
		Dirs:       layout.DefaultDirs(),
		Extensions: []string{".nii.gz", ".nii"},
	}
}

// Options configures a Planner.
type Options struct {
	DatasetType        layout.DatasetType
	PipelineName       string
	MatchAllModalities bool
	OutputRoot         string
	Defaults           Defaults
	Logger             *slog.Logger
}

// Planner builds operation lists.
type Planner struct {
	opts    Options
	builder layout.Builder
	logger  *slog.Logger
}

// New constructs a Planner. Zero-valued defaults fall back to
// StandardDefaults.
func New(opts Options) *Planner {
	std := StandardDefaults()
	if opts.Defaults.Session == "" {
		opts.Defaults.Session = std.Session
	}
	if opts.Defaults.Modality == "" {
		opts.Defaults.Modality = std.Modality
	}
	if opts.Defaults.Dirs == (layout.Dirs{}) {
		opts.Defaults.Dirs = std.Dirs
	}
	if len(opts.Defaults.Extensions) == 0 {
		opts.Defaults.Extensions = std.Extensions
	}
	if opts.DatasetType == "" {
		opts.DatasetType = layout.Raw
	}
	opts.PipelineName = strings.TrimSpace(opts.PipelineName)
	return &Planner{
		opts:    opts,
		builder: layout.Builder{Root: opts.OutputRoot, Dirs: opts.Defaults.Dirs},
		logger:  logging.NewComponentLogger(opts.Logger, "planner"),
	}
}

// Check reports configuration errors that would abort a run.
func (p *Planner) Check() error {
	if p.opts.DatasetType == layout.Derivatives && p.opts.PipelineName == "" {
		return faults.Wrap(faults.ErrConfiguration, "planner", "plan", "pipeline name is required for derivatives dataset type", nil)
	}
	if p.opts.DatasetType != layout.Raw && p.opts.DatasetType != layout.Derivatives {
		return faults.Wrap(faults.ErrConfiguration, "planner", "plan", "unsupported dataset type "+string(p.opts.DatasetType), nil)
	}
	return nil
}

// Plan validates the configuration, reads snapshot once, and plans records.
func (p *Planner) Plan(ctx context.Context, snapshot Snapshot, records []metadata.Record) ([]Operation, error) {
	if err := p.Check(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	files, err := snapshot.Files()
	if err != nil {
		return nil, err
	}
	return p.PlanFiles(files, records)
}

// PlanFiles plans records against an already enumerated file listing.
func (p *Planner) PlanFiles(files []source.File, records []metadata.Record) ([]Operation, error) {
	if err := p.Check(); err != nil {
		return nil, err
	}
	eligible := p.Eligible(files)

	st := newState()
	for _, rec := range records {
		next, err := p.planRecord(st, rec, eligible)
		if err != nil {
			return nil, err
		}
		st = next
	}
	p.logger.Debug("plan complete",
		logging.Int("records", len(records)),
		logging.Int("eligible_files", len(eligible)),
		logging.Int("operations", len(st.ops)),
	)
	return st.ops, nil
}

// state is the accumulator threaded through the record fold.
type state struct {
	claimed map[string]struct{}
	ops     []Operation
}

func newState() state {
	return state{claimed: make(map[string]struct{})}
}

func (s state) isClaimed(path string) bool {
	_, ok := s.claimed[path]
	return ok
}

func (s state) claim(path string, op Operation) state {
	s.claimed[path] = struct{}{}
	s.ops = append(s.ops, op)
	return s
}

// Eligible returns the files carrying one of the planned extensions.
func (p *Planner) Eligible(files []source.File) []source.File {
	out := make([]source.File, 0, len(files))
	for _, f := range files {
		if f.HasExtension(p.opts.Defaults.Extensions) {
			out = append(out, f)
		}
	}
	return out
}

// SessionFor returns the session used for rec: the explicit one, the default
// for raw datasets, or none for derivatives.
func (p *Planner) SessionFor(rec metadata.Record) string {
	if rec.HasSession() {
		return rec.SessionID
	}
	if p.opts.DatasetType == layout.Raw {
		return p.opts.Defaults.Session
	}
	return ""
}

func (p *Planner) planRecord(st state, rec metadata.Record, files []source.File) (state, error) {
	session := p.SessionFor(rec)
	candidates := p.candidates(st, rec, session, files)
	logger := p.logger.With(
		logging.String("participant_id", rec.ParticipantID),
		logging.String("session_id", session),
	)
	if len(candidates) == 0 {
		logger.Debug("no candidate files for record", logging.Int("row", rec.Row))
		return st, nil
	}

	for _, f := range candidates {
		if st.isClaimed(f.Path) {
			continue
		}
		tag := modality.Classify(f.Name, rec.Modality, p.opts.Defaults.Modality)
		dst, err := p.builder.Build(layout.Target{
			Participant:  rec.ParticipantID,
			Session:      session,
			Modality:     tag,
			DatasetType:  p.opts.DatasetType,
			PipelineName: p.opts.PipelineName,
			Extension:    layout.Extension(f.Name),
		})
		if err != nil {
			return st, err
		}
		st = st.claim(f.Path, Operation{Source: f.Path, Destination: dst, Action: ActionCopy})
		if logger.Enabled(context.Background(), slog.LevelDebug) {
			component, strategy, _ := match.ExplainPath(f, rec.ParticipantID, match.RoleParticipant)
			logger.Debug("claimed file",
				logging.String("source", f.Path),
				logging.String("destination", dst),
				logging.String("modality", string(tag)),
				logging.String("matched_component", component),
				logging.String("strategy", strategy.String()),
			)
		}
	}
	return st, nil
}

func (p *Planner) candidates(st state, rec metadata.Record, session string, files []source.File) []source.File {
	var out []source.File
	for _, f := range files {
		if st.isClaimed(f.Path) || !p.accepts(rec, session, f) {
			continue
		}
		out = append(out, f)
	}
	SortCandidates(out)
	return out
}

// Accepts reports whether f is eligible and would be a candidate for rec,
// ignoring files already claimed by earlier records.
func (p *Planner) Accepts(rec metadata.Record, f source.File) bool {
	return f.HasExtension(p.opts.Defaults.Extensions) && p.accepts(rec, p.SessionFor(rec), f)
}

func (p *Planner) accepts(rec metadata.Record, session string, f source.File) bool {
	if !match.MatchesPath(f, rec.ParticipantID, match.RoleParticipant) {
		return false
	}
	if session != "" && !match.SessionCompatible(f, session) {
		return false
	}
	if !p.opts.MatchAllModalities && rec.Modality != "" &&
		modality.Classify(f.Name, rec.Modality, p.opts.Defaults.Modality) != rec.Modality {
		return false
	}
	return true
}

// SortCandidates orders files compressed first, then by name, then by path.
func SortCandidates(files []source.File) {
	sort.SliceStable(files, func(i, j int) bool {
		ci, cj := compressed(files[i].Name), compressed(files[j].Name)
		if ci != cj {
			return ci
		}
		if files[i].Name != files[j].Name {
			return files[i].Name < files[j].Name
		}
		return files[i].Path < files[j].Path
	})
}

func compressed(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".gz")
}
