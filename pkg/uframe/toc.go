package uframe

// TOC is the sensor inventory table of contents: every instrument with its
// streams, the parameter definitions, and the parameter ids carried by each
// stream.
type TOC struct {
	Instruments          []TOCInstrument       `json:"instruments"`
	ParameterDefinitions []ParameterDefinition `json:"parameter_definitions"`
	ParametersByStream   map[string][]string   `json:"parameters_by_stream"`
}

// TOCInstrument summarizes one instrument entry of the table of contents.
type TOCInstrument struct {
	ReferenceDesignator string   `json:"reference_designator"`
	Streams             []Stream `json:"streams"`
}

// ParameterDefinition maps a parameter id to the particle key it is
// published under.
type ParameterDefinition struct {
	PdID        string `json:"pdId"`
	ParticleKey string `json:"particle_key"`
	Type        string `json:"type,omitempty"`
	Units       string `json:"units,omitempty"`
}
