package dbmove

import (
	"fmt"
	"sort"
	"strings"
)

// createJobs merges native and SQL units into a single ascending-version
// sequence. A version declared by more than one unit — whether native vs.
// SQL, or two units of the same kind (e.g. two SQL files sharing a 12-digit
// prefix, such as names that differ only in the case of their extension) —
// is rejected with ErrDuplicateVersion before any job runs, per spec §4.4.
func createJobs(nativeUnits []NativeMigration, sqlUnits []Job) ([]Job, error) {
	bySource := make(map[uint64][]string)

	jobs := make([]Job, 0, len(nativeUnits)+len(sqlUnits))
	for _, n := range nativeUnits {
		bySource[n.Version] = append(bySource[n.Version], "native:"+n.Description)
		jobs = append(jobs, Job{
			Version:     n.Version,
			Description: n.Description,
			Kind:        JobNative,
			Apply:       n.Apply,
		})
	}
	for _, j := range sqlUnits {
		bySource[j.Version] = append(bySource[j.Version], "sql:"+j.SourceName)
		jobs = append(jobs, j)
	}

	var dupes []string
	for version, sources := range bySource {
		if len(sources) > 1 {
			dupes = append(dupes, fmt.Sprintf("%d (%s)", version, strings.Join(sources, ", ")))
		}
	}
	if len(dupes) > 0 {
		sort.Strings(dupes)
		return nil, newError(KindDuplicateVersion, strings.Join(dupes, "; "), nil)
	}

	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].Version < jobs[j].Version
	})
	return jobs, nil
}
