package preflight

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Request describes the directories an apply run touches.
type Request struct {
	InputDir      string
	OutputDir     string
	RequiredBytes uint64
}

// RunAll executes the input and output checks for req.
func RunAll(req Request) []Result {
	results := []Result{CheckInputDir(req.InputDir)}
	if req.OutputDir != "" {
		results = append(results, CheckOutputDir(req.OutputDir, req.RequiredBytes))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
