// Package interpreter turns free-form search text such as
// "Brooklyn 2021 pedestrian injury crashes involving a suv" into structured
// criteria. Extraction is ordered keyword matching over the lower-cased
// text: each rule fills at most one key, and the first match within a rule
// wins.
package interpreter

import (
	"strconv"
	"strings"

	"github.com/asaidimu/go-collisions/core/criteria"
)

// Parse extracts criteria from text. Empty input and non-string values yield
// empty criteria; Parse never fails.
func Parse(text any) criteria.Criteria {
	s, ok := text.(string)
	if !ok || s == "" {
		return criteria.Criteria{}
	}
	s = strings.ToLower(s)

	c := criteria.Criteria{}
	if v, ok := firstKeyword(s, boroughs); ok {
		c[criteria.KeyBorough] = v
	}
	if y, ok := parseYear(s); ok {
		c[criteria.KeyYear] = y
	}
	if v, ok := parseInjury(s); ok {
		c[criteria.KeyInjuryType] = v
	}
	if v, ok := firstKeyword(s, vehicleTypes); ok {
		c[criteria.KeyVehicleType] = v
	}
	if v, ok := firstKeyword(s, contributingFactors); ok {
		c[criteria.KeyContributingFactor] = v
	}
	return c
}

func firstKeyword(text string, table []keyword) (string, bool) {
	for _, k := range table {
		if strings.Contains(text, k.phrase) {
			return k.value, true
		}
	}
	return "", false
}

func parseYear(text string) (int, bool) {
	m := yearPattern.FindString(text)
	if m == "" {
		return 0, false
	}
	y, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return y, true
}

func parseInjury(text string) (string, bool) {
	for _, rule := range injuryRules {
		for _, p := range rule.phrases {
			if strings.Contains(text, p) {
				return string(rule.value), true
			}
		}
	}
	return "", false
}
