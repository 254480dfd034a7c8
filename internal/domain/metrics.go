package domain

// Rate is a percentage under the zero-denominator policy:
// a zero denominator yields Value 0 with HasData false.
type Rate struct {
	Value   float64 `json:"value"`
	HasData bool    `json:"has_data"`
}

// Figure is a derived metric that may be undefined.
// Undefined figures carry a nil Value and serialize as null.
type Figure struct {
	Value   *float64 `json:"value"`
	HasData bool     `json:"has_data"`
}

// Defined reports whether the figure has a value
func (f Figure) Defined() bool { return f.Value != nil }
