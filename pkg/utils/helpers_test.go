package utils

import (
	"encoding/json"
	"testing"
)

func TestIntValueAcceptsIntegers(t *testing.T) {
	cases := []struct {
		in   interface{}
		want int64
	}{
		{json.Number("2018"), 2018},
		{"2019", 2019},
		{" 2020 ", 2020},
		{"2018\n", 2018},
		{"\t100\r", 100},
		{"\v\f42", 42},
		{float64(300), 300},
		{int(7), 7},
		{int32(9), 9},
	}
	for _, tc := range cases {
		got, err := IntValue(tc.in)
		if err != nil {
			t.Fatalf("IntValue(%#v): unexpected error %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("IntValue(%#v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestIntValueRejectsNonIntegers(t *testing.T) {
	for _, in := range []interface{}{
		json.Number("2018.5"),
		"not-a-number",
		"",
		"-",
		" \t\n",
		"\u00a02018",
		float64(1.5),
		nil,
		true,
		map[string]interface{}{},
	} {
		if _, err := IntValue(in); err == nil {
			t.Fatalf("IntValue(%#v): expected error", in)
		}
	}
}
