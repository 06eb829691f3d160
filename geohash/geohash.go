// Package geohash computes the geohash of a study location.
package geohash

import (
	"encoding/json"

	"github.com/mmcloughlin/geohash"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

// Transformer hashes the latitude and longitude found under LatKey and LonKey
// of a location record.
type Transformer struct {
	Precision uint
	LatKey    string
	LonKey    string
}

// NewTransformer gets a Transformer reading BrAPI location keys.
func NewTransformer(precision uint) *Transformer {
	return &Transformer{
		Precision: precision,
		LatKey:    "latitude",
		LonKey:    "longitude",
	}
}

// Transform returns the geohash of location. It fails if either coordinate
// is missing, not numeric, or out of range.
func (t *Transformer) Transform(location map[string]interface{}) (string, error) {
	lat, err := coordinate(location, t.LatKey, 90)
	if err != nil {
		return "", errors.Wrap(err, "getting latitude")
	}
	lon, err := coordinate(location, t.LonKey, 180)
	if err != nil {
		return "", errors.Wrap(err, "getting longitude")
	}
	return geohash.EncodeWithPrecision(lat, lon, t.Precision), nil
}

func coordinate(location map[string]interface{}, key string, limit float64) (float64, error) {
	v, ok := location[key]
	if !ok || v == nil || v == "" {
		return 0, errors.Errorf("no value at '%s'", key)
	}
	if n, ok := v.(json.Number); ok {
		v = n.String()
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, errors.Wrapf(err, "converting '%v'", v)
	}
	if f < -limit || f > limit {
		return 0, errors.Errorf("%v out of range", f)
	}
	return f, nil
}
