package severity

import "fmt"

const (
	Low      = "low"
	Medium   = "medium"
	High     = "high"
	Critical = "critical"
)

var order = map[string]int{
	Low:      1,
	Medium:   2,
	High:     3,
	Critical: 4,
}

func Normalize(level string) (string, error) {
	if _, ok := order[level]; !ok {
		return "", fmt.Errorf("invalid severity level: %s", level)
	}
	return level, nil
}

func Rank(level string) int {
	return order[level]
}

func MeetsOrAbove(level string, threshold string) bool {
	l, okL := order[level]
	t, okT := order[threshold]
	if !okL || !okT {
		return false
	}
	return l >= t
}

func Above(level string, threshold string) bool {
	l, okL := order[level]
	t, okT := order[threshold]
	if !okL || !okT {
		return false
	}
	return l > t
}

func Max(levels ...string) string {
	maxRank := 0
	maxLevel := ""
	for _, l := range levels {
		r := order[l]
		if r > maxRank {
			maxRank = r
			maxLevel = l
		}
	}
	return maxLevel
}
