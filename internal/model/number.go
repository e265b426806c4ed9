package model

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Number is a float64 request field that also accepts a numeric JSON string
// ("1500"), as sent by HTML form inputs. An empty string decodes to zero.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	f, ok, err := decodeNumeric(b)
	if err != nil || !ok {
		return err
	}
	*n = Number(f)
	return nil
}

// Int is the integer counterpart of Number. Fractional values are rejected.
type Int int

func (n *Int) UnmarshalJSON(b []byte) error {
	f, ok, err := decodeNumeric(b)
	if err != nil || !ok {
		return err
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return errors.Errorf("not an integer: %s", b)
	}
	*n = Int(f)
	return nil
}

// decodeNumeric reports ok=false for null, leaving the target untouched.
func decodeNumeric(b []byte) (float64, bool, error) {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return 0, false, nil
	}
	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		unq, err := strconv.Unquote(s)
		if err != nil {
			return 0, false, errors.Wrap(err, "numeric string")
		}
		s = strings.TrimSpace(unq)
		if s == "" {
			return 0, true, nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false, errors.Errorf("not a number: %s", b)
	}
	return f, true, nil
}
