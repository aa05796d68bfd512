package planner

// Conflict lists sources that were planned onto the same destination.
type Conflict struct {
	Destination string
	Sources     []string
}

// DestinationConflicts reports destinations shared by more than one
// operation, in first-seen order. Later operations overwrite earlier ones
// when such a plan is applied.
func DestinationConflicts(ops []Operation) []Conflict {
	index := make(map[string]int, len(ops))
	var all []Conflict
	for _, op := range ops {
		if i, ok := index[op.Destination]; ok {
			all[i].Sources = append(all[i].Sources, op.Source)
			continue
		}
		index[op.Destination] = len(all)
		all = append(all, Conflict{Destination: op.Destination, Sources: []string{op.Source}})
	}
	var out []Conflict
	for _, c := range all {
		if len(c.Sources) > 1 {
			out = append(out, c)
		}
	}
	return out
}
