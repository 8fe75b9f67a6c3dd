package query

import (
	"sort"
	"strings"

	"github.com/kerfoot/uframe-m2m/pkg/uframe"
)

// FindOptions narrow a parameter search.
type FindOptions struct {
	// Array restricts matches to reference designators with the given
	// prefix, e.g. "CE".
	Array string
	// RefDes restricts matches to reference designators containing the
	// given substring.
	RefDes string
	// Telemetry restricts matches to streams of the exact telemetry
	// method.
	Telemetry string
}

// ParameterMatch is one instrument whose streams carry a matching
// parameter.
type ParameterMatch struct {
	ReferenceDesignator string   `json:"reference_designator"`
	Streams             []string `json:"streams"`
	Parameters          []string `json:"parameters"`
}

// FindStreamsByParameter searches the table of contents for particle keys
// containing any of the terms and maps them back to the instruments whose
// streams carry them. Stream and parameter lists come back sorted;
// instruments keep table-of-contents order.
func FindStreamsByParameter(toc *uframe.TOC, terms []string, opts FindOptions) []ParameterMatch {
	if toc == nil || len(terms) == 0 {
		return nil
	}

	// particle keys matching any term, keyed by parameter id
	matchedKeys := make(map[string]string)
	for _, def := range toc.ParameterDefinitions {
		for _, term := range terms {
			if strings.Contains(def.ParticleKey, term) {
				matchedKeys[def.PdID] = def.ParticleKey
				break
			}
		}
	}
	if len(matchedKeys) == 0 {
		return nil
	}

	// streams carrying those parameters
	streamKeys := make(map[string][]string)
	for stream, ids := range toc.ParametersByStream {
		for _, id := range ids {
			if key, ok := matchedKeys[id]; ok {
				streamKeys[stream] = append(streamKeys[stream], key)
			}
		}
	}

	var results []ParameterMatch
	for _, inst := range toc.Instruments {
		if opts.Array != "" && !strings.HasPrefix(inst.ReferenceDesignator, opts.Array) {
			continue
		}
		if opts.RefDes != "" && !strings.Contains(inst.ReferenceDesignator, opts.RefDes) {
			continue
		}

		match := ParameterMatch{ReferenceDesignator: inst.ReferenceDesignator}
		seenStream := make(map[string]bool)
		seenKey := make(map[string]bool)
		for _, s := range inst.Streams {
			if opts.Telemetry != "" && s.Method != opts.Telemetry {
				continue
			}
			keys, ok := streamKeys[s.Name]
			if !ok || seenStream[s.Name] {
				continue
			}
			seenStream[s.Name] = true
			match.Streams = append(match.Streams, s.Name)
			for _, key := range keys {
				if !seenKey[key] {
					seenKey[key] = true
					match.Parameters = append(match.Parameters, key)
				}
			}
		}
		if len(match.Streams) > 0 {
			sort.Strings(match.Streams)
			sort.Strings(match.Parameters)
			results = append(results, match)
		}
	}
	return results
}
