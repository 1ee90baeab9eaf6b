package domain

// Facts is the input to a single wordlist generation run
type Facts struct {
	Dates       []string `json:"date,omitempty" yaml:"date,omitempty"`
	Phones      []string `json:"tel,omitempty" yaml:"tel,omitempty"`
	Names       []string `json:"name,omitempty" yaml:"name,omitempty"`
	IDs         []string `json:"ID,omitempty" yaml:"ID,omitempty"`
	NetworkName string   `json:"SSID,omitempty" yaml:"SSID,omitempty"`
}

// IsEmpty returns true if no category carries any value
func (f Facts) IsEmpty() bool {
	return len(f.Dates) == 0 &&
		len(f.Phones) == 0 &&
		len(f.Names) == 0 &&
		len(f.IDs) == 0 &&
		f.NetworkName == ""
}

// Clone returns a deep copy so callers can hold on to the input of a run
func (f Facts) Clone() Facts {
	return Facts{
		Dates:       cloneStrings(f.Dates),
		Phones:      cloneStrings(f.Phones),
		Names:       cloneStrings(f.Names),
		IDs:         cloneStrings(f.IDs),
		NetworkName: f.NetworkName,
	}
}

// CandidateSet holds the derived variants for each category of a run
type CandidateSet struct {
	Dates  []string `json:"dates"`
	Phones []string `json:"phones"`
	IDs    []string `json:"ids"`
	Names  []string `json:"names"`
}

// Len returns the number of single-category candidates
func (c CandidateSet) Len() int {
	return len(c.Dates) + len(c.Phones) + len(c.IDs) + len(c.Names)
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
