package pulse

import (
	"encoding/json"
	"strconv"
)

// Undetected is the wire form of an absent BPM
const Undetected = "undetected"

// NullBPM is a BPM value that may be absent
type NullBPM struct {
	Value int
	Valid bool
}

// Some returns a present BPM
func Some(v int) NullBPM {
	return NullBPM{Value: v, Valid: true}
}

func (b NullBPM) String() string {
	if !b.Valid {
		return Undetected
	}

	return strconv.Itoa(b.Value)
}

// MarshalJSON encodes a present BPM as a number and an absent one as
// the string "undetected".
func (b NullBPM) MarshalJSON() ([]byte, error) {
	if !b.Valid {
		return json.Marshal(Undetected)
	}

	return json.Marshal(b.Value)
}

func (b *NullBPM) UnmarshalJSON(data []byte) error {
	var v int
	if err := json.Unmarshal(data, &v); err == nil {
		*b = Some(v)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*b = NullBPM{}

	return nil
}
