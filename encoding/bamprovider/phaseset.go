package bamprovider

import (
	"fmt"

	"github.com/grailbio/hts/sam"
)

var phaseSetTag = sam.NewTag("PS")

// PhaseSet returns the value of the read's PS aux tag.  ok is false if the
// read has no PS tag.  Any integer encoding is accepted; signed values are
// reinterpreted as uint32.  A non-integer PS tag is an error.
func PhaseSet(r *sam.Record) (ps uint32, ok bool, err error) {
	aux := r.AuxFields.Get(phaseSetTag)
	if aux == nil {
		return 0, false, nil
	}
	switch v := aux.Value().(type) {
	case uint8:
		return uint32(v), true, nil
	case int8:
		return uint32(v), true, nil
	case uint16:
		return uint32(v), true, nil
	case int16:
		return uint32(v), true, nil
	case uint32:
		return v, true, nil
	case int32:
		return uint32(v), true, nil
	}
	return 0, false, fmt.Errorf("bamprovider.PhaseSet: read %s: unexpected PS aux type %c", r.Name, aux.Type())
}
