package collect

// FieldMask selects which fields a collection pass gathers. Serial, CalDate,
// CalCoeffs and Interval are slow-changing board attributes; Temperature, ADC
// and CJC are per-tick readings.
type FieldMask struct {
	Serial      bool
	CalDate     bool
	CalCoeffs   bool
	Interval    bool
	Temperature bool
	ADC         bool
	CJC         bool
}

// DefaultFields is the selection used when no field flags are given.
func DefaultFields() FieldMask {
	return FieldMask{Temperature: true}
}

// AnyStatic reports whether any slow-changing field is requested.
func (m FieldMask) AnyStatic() bool {
	return m.Serial || m.CalDate || m.CalCoeffs || m.Interval
}

// AnyDynamic reports whether any per-tick field is requested.
func (m FieldMask) AnyDynamic() bool {
	return m.Temperature || m.ADC || m.CJC
}

// Any reports whether any field at all is requested.
func (m FieldMask) Any() bool {
	return m.AnyStatic() || m.AnyDynamic()
}

// Static returns the mask restricted to slow-changing fields.
func (m FieldMask) Static() FieldMask {
	return FieldMask{
		Serial:    m.Serial,
		CalDate:   m.CalDate,
		CalCoeffs: m.CalCoeffs,
		Interval:  m.Interval,
	}
}

// Dynamic returns the mask restricted to per-tick fields.
func (m FieldMask) Dynamic() FieldMask {
	return FieldMask{
		Temperature: m.Temperature,
		ADC:         m.ADC,
		CJC:         m.CJC,
	}
}
