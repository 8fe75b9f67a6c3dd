package uframe

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRefDes(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectError bool
		expected    RefDes
	}{
		{
			name:     "sensor with embedded dash",
			input:    "CE01ISSM-MFD35-00-DOSTAD000",
			expected: RefDes{Subsite: "CE01ISSM", Node: "MFD35", Sensor: "00-DOSTAD000"},
		},
		{
			name:     "three tokens",
			input:    "GI01SUMO-SBD11-NUTNRB000",
			expected: RefDes{Subsite: "GI01SUMO", Node: "SBD11", Sensor: "NUTNRB000"},
		},
		{
			name:        "partial designator",
			input:       "CE01ISSM-MFD35",
			expectError: true,
		},
		{
			name:        "empty",
			input:       "",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rd, err := ParseRefDes(tt.input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, rd)
			assert.Equal(t, tt.input, rd.String())
		})
	}
}

func TestRefDesPath(t *testing.T) {
	rd := RefDes{Subsite: "CE01ISSM", Node: "MFD35", Sensor: "00-DOSTAD000"}
	assert.Equal(t, "CE01ISSM/MFD35/00-DOSTAD000", rd.Path())
}

func TestRefDesUnmarshalString(t *testing.T) {
	var rd RefDes
	require.NoError(t, json.Unmarshal([]byte(`"CE01ISSM-MFD35-00-DOSTAD000"`), &rd))
	assert.Equal(t, "CE01ISSM", rd.Subsite)
	assert.Equal(t, "MFD35", rd.Node)
	assert.Equal(t, "00-DOSTAD000", rd.Sensor)
}

func TestRefDesUnmarshalObject(t *testing.T) {
	payload := `{"subsite": "CE01ISSM", "node": "MFD35", "sensor": "00-DOSTAD000", "full": true}`

	var rd RefDes
	require.NoError(t, json.Unmarshal([]byte(payload), &rd))
	assert.Equal(t, "CE01ISSM-MFD35-00-DOSTAD000", rd.String())
}

func TestRefDesMarshal(t *testing.T) {
	rd := RefDes{Subsite: "CE01ISSM", Node: "MFD35", Sensor: "00-DOSTAD000"}

	data, err := json.Marshal(rd)
	require.NoError(t, err)
	assert.Equal(t, `"CE01ISSM-MFD35-00-DOSTAD000"`, string(data))
}

func TestCatalogMatch(t *testing.T) {
	catalog := Catalog{
		"CE01ISSM-MFD35-00-DOSTAD000",
		"CE01ISSM-MFD35-01-VEL3DD000",
		"CE02SHSM-RID27-03-CTDBPC000",
	}

	matched := catalog.Match("CE01ISSM")
	require.Len(t, matched, 2)
	assert.Equal(t, "CE01ISSM-MFD35-00-DOSTAD000", matched[0])
	assert.Equal(t, "CE01ISSM-MFD35-01-VEL3DD000", matched[1])

	// stable across calls
	assert.Equal(t, matched, catalog.Match("CE01ISSM"))

	assert.Len(t, catalog.Match(""), 3)
	assert.Empty(t, catalog.Match("GI01SUMO"))

	exact := catalog.Match("CE02SHSM-RID27-03-CTDBPC000")
	require.Len(t, exact, 1)
	assert.Equal(t, "CE02SHSM-RID27-03-CTDBPC000", exact[0])
}
