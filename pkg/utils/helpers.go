package utils

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// IntValue converts a decoded JSON value to int64. It accepts integral
// numbers and strings made only of digits, optionally padded with ASCII
// whitespace, the same inputs an SQL integer cast accepts; anything else is
// an error.
func IntValue(v interface{}) (int64, error) {
	switch val := v.(type) {
	case json.Number:
		i, err := strconv.ParseInt(val.String(), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("not an integer: %q", val.String())
		}
		return i, nil
	case string:
		s := strings.Trim(val, asciiSpace)
		if s == "" || strings.IndexFunc(s, notDigit) >= 0 {
			return 0, fmt.Errorf("not an integer: %q", val)
		}
		return strconv.ParseInt(s, 10, 64)
	case int:
		return int64(val), nil
	case int64:
		return val, nil
	case float64:
		if val != math.Trunc(val) || math.IsInf(val, 0) {
			return 0, fmt.Errorf("not an integer: %v", val)
		}
		return int64(val), nil
	case nil:
		return 0, fmt.Errorf("value is null")
	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() >= reflect.Int && rv.Kind() <= reflect.Int64 {
			return rv.Int(), nil
		}
		if rv.Kind() >= reflect.Uint && rv.Kind() <= reflect.Uint32 {
			return int64(rv.Uint()), nil
		}
		return 0, fmt.Errorf("not an integer: %T", v)
	}
}

// asciiSpace is what integer casts skip around the digits.
const asciiSpace = " \t\n\v\f\r"

func notDigit(r rune) bool {
	return r < '0' || r > '9'
}
