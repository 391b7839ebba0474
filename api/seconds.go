package api

import (
	"encoding/json"
	"fmt"
	"math"
)

// Inf is the worst-case stand-in for a missing timing.
var Inf = math.Inf(1)

// Seconds is a duration in seconds that survives JSON round-trips even when
// infinite. encoding/json refuses to emit bare Infinity tokens, so infinite
// values are written as the string "Infinity" (resp. "-Infinity") and parsed
// back from either the quoted or the Python-style spelling.
type Seconds float64

func (s Seconds) MarshalJSON() ([]byte, error) {
	f := float64(s)
	switch {
	case math.IsInf(f, 1):
		return []byte(`"Infinity"`), nil
	case math.IsInf(f, -1):
		return []byte(`"-Infinity"`), nil
	case math.IsNaN(f):
		return []byte(`"NaN"`), nil
	}
	return json.Marshal(f)
}

func (s *Seconds) UnmarshalJSON(b []byte) error {
	switch string(b) {
	case `"Infinity"`, `"inf"`:
		*s = Seconds(math.Inf(1))
		return nil
	case `"-Infinity"`, `"-inf"`:
		*s = Seconds(math.Inf(-1))
		return nil
	case `"NaN"`, `"nan"`:
		*s = Seconds(math.NaN())
		return nil
	case "null":
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("invalid seconds value %s: %w", string(b), err)
	}
	*s = Seconds(f)
	return nil
}

// Sec is a convenience for taking the address of a literal.
func Sec(f float64) *Seconds {
	s := Seconds(f)
	return &s
}
