package uframe

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RefDes identifies an instrument by its position in the observatory
// hierarchy: subsite, node and sensor. The canonical form joins the three
// with dashes, e.g. CE01ISSM-MFD35-00-DOSTAD000 (the sensor component
// itself contains a dash).
type RefDes struct {
	Subsite string `json:"subsite"`
	Node    string `json:"node"`
	Sensor  string `json:"sensor"`
}

// ParseRefDes parses a fully-qualified reference designator.
func ParseRefDes(s string) (RefDes, error) {
	parts := strings.Split(s, "-")
	if len(parts) < 3 {
		return RefDes{}, fmt.Errorf("invalid reference designator %q", s)
	}
	return RefDes{
		Subsite: parts[0],
		Node:    parts[1],
		Sensor:  strings.Join(parts[2:], "-"),
	}, nil
}

// String returns the canonical dash-joined form.
func (rd RefDes) String() string {
	return rd.Subsite + "-" + rd.Node + "-" + rd.Sensor
}

// Path returns the subsite/node/sensor path used by the sensor inventory
// endpoints.
func (rd RefDes) Path() string {
	return rd.Subsite + "/" + rd.Node + "/" + rd.Sensor
}

// UnmarshalJSON accepts both representations found in UFrame responses: the
// flat canonical string and the structured object the deployment event
// schema emits.
func (rd *RefDes) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := ParseRefDes(s)
		if err != nil {
			return err
		}
		*rd = parsed
		return nil
	}

	type refDesAlias RefDes
	var aux refDesAlias
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*rd = RefDes(aux)
	return nil
}

// MarshalJSON always emits the canonical string form.
func (rd RefDes) MarshalJSON() ([]byte, error) {
	return json.Marshal(rd.String())
}

// Catalog is the sorted snapshot of every instrument registered in the
// sensor inventory, in canonical string form.
type Catalog []string

// Match returns the entries containing pattern as a substring, in catalog
// order. An empty pattern matches the whole catalog.
func (c Catalog) Match(pattern string) []string {
	var matched []string
	for _, rd := range c {
		if strings.Contains(rd, pattern) {
			matched = append(matched, rd)
		}
	}
	return matched
}
