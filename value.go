package brapi2isa

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cast"
)

// Stringify renders a decoded JSON value as a table cell. Numbers decoded as
// json.Number keep their server spelling, nil becomes the empty string, and
// arrays and objects are re-encoded as JSON.
func Stringify(v interface{}) string {
	switch tv := v.(type) {
	case json.Number:
		return tv.String()
	case []interface{}, map[string]interface{}:
		b, err := json.Marshal(tv)
		if err != nil {
			return fmt.Sprintf("%v", tv)
		}
		return string(b)
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return s
}

// truthy reports whether v is set to something other than a zero value.
// Empty strings, zero numbers, false and empty collections are not truthy.
func truthy(v interface{}) bool {
	switch tv := v.(type) {
	case nil:
		return false
	case string:
		return tv != ""
	case bool:
		return tv
	case json.Number:
		f, err := tv.Float64()
		return err != nil || f != 0
	case []interface{}:
		return len(tv) > 0
	case map[string]interface{}:
		return len(tv) > 0
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return true
	}
	return f != 0
}

// OrNA returns "NA" for values which are not truthy and the stringified value
// otherwise.
func OrNA(v interface{}) string {
	if !truthy(v) {
		return "NA"
	}
	return Stringify(v)
}
