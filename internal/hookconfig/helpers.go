package hookconfig

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

func sortStrings(s []string) { sort.Strings(s) }

// stableSortByPriority orders ascending by Priority (missing = 0),
// ties broken by original definition order.
func stableSortByPriority(jobs []JobDef) {
	sort.SliceStable(jobs, func(i, j int) bool {
		if jobs[i].Priority != jobs[j].Priority {
			return jobs[i].Priority < jobs[j].Priority
		}
		return jobs[i].priorityIndex < jobs[j].priorityIndex
	})
}

// versionAtMost reports whether min <= current, comparing dotted
// numeric semver components (pre-release suffixes are ignored).
func versionAtMost(min, current string) (bool, error) {
	minParts, err := parseSemver(min)
	if err != nil {
		return false, fmt.Errorf("invalid min_version %q: %w", min, err)
	}
	curParts, err := parseSemver(current)
	if err != nil {
		return false, fmt.Errorf("invalid current version %q: %w", current, err)
	}
	for i := 0; i < 3; i++ {
		if minParts[i] != curParts[i] {
			return minParts[i] < curParts[i], nil
		}
	}
	return true, nil
}

func parseSemver(v string) ([3]int, error) {
	var out [3]int
	v = strings.TrimPrefix(v, "v")
	if idx := strings.IndexAny(v, "-+"); idx >= 0 {
		v = v[:idx]
	}
	parts := strings.Split(v, ".")
	for i := 0; i < 3; i++ {
		if i >= len(parts) {
			break
		}
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return out, err
		}
		out[i] = n
	}
	return out, nil
}
