package store

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("store: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// MarshalFaults serializes a fault list to canonical CBOR.
func MarshalFaults(faults []FaultEntry) ([]byte, error) {
	if faults == nil {
		faults = []FaultEntry{}
	}
	return cborEncMode.Marshal(faults)
}

// UnmarshalFaults deserializes a fault list written by MarshalFaults.
func UnmarshalFaults(data []byte) ([]FaultEntry, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var faults []FaultEntry
	if err := cbor.Unmarshal(data, &faults); err != nil {
		return nil, fmt.Errorf("store: unmarshal faults: %w", err)
	}
	if len(faults) == 0 {
		return nil, nil
	}
	return faults, nil
}
