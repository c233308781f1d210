package pricing

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func TestRoundMoney_HalfUp(t *testing.T) {
	cases := map[string]string{
		"80.005":  "80.01",
		"80.004":  "80",
		"0.125":   "0.13",
		"-0.005":  "0",
		"-1.006":  "-1.01",
		"200.015": "200.02",
		"12":      "12",
	}
	for in, want := range cases {
		got := RoundMoney(dec(t, in))
		if !got.Equal(dec(t, want)) {
			t.Fatalf("RoundMoney(%s) = %s, want %s", in, got, want)
		}
	}
}

func TestRoundMoney_Idempotent(t *testing.T) {
	inputs := []string{"0", "1.005", "-2.345", "99999.9999", "0.0049", "-0.0051", "123.456789"}
	for _, in := range inputs {
		once := RoundMoney(dec(t, in))
		twice := RoundMoney(once)
		if !once.Equal(twice) {
			t.Fatalf("RoundMoney not idempotent for %s: %s vs %s", in, once, twice)
		}
	}
}

func TestParseAmount_Lenient(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "0"},
		{"empty", "", "0"},
		{"nan string", "NaN", "0"},
		{"garbage", "twelve", "0"},
		{"nan float", math.NaN(), "0"},
		{"inf float", math.Inf(1), "0"},
		{"pound string", "£1,250.50", "1250.5"},
		{"json number", json.Number("42.10"), "42.1"},
		{"int", 7, "7"},
		{"float", 2.5, "2.5"},
		{"bool", true, "0"},
	}
	for _, tc := range cases {
		got := ParseAmount(tc.in)
		if !got.Equal(dec(t, tc.want)) {
			t.Fatalf("%s: ParseAmount(%v) = %s, want %s", tc.name, tc.in, got, tc.want)
		}
	}
}

func TestFormatGBP(t *testing.T) {
	cases := map[string]string{
		"0":        "£0.00",
		"12.5":     "£12.50",
		"1234.5":   "£1,234.50",
		"1000000":  "£1,000,000.00",
		"-12":      "-£12.00",
		"999.999":  "£1,000.00",
	}
	for in, want := range cases {
		if got := FormatGBP(dec(t, in)); got != want {
			t.Fatalf("FormatGBP(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestParseStrictAmount(t *testing.T) {
	valid := map[any]string{
		"120.50":           "120.5",
		json.Number("-40"): "-40",
		"£1,000":           "1000",
		12.25:              "12.25",
	}
	for in, want := range valid {
		got, err := ParseStrictAmount(in)
		if err != nil {
			t.Fatalf("ParseStrictAmount(%v) returned error: %v", in, err)
		}
		if !got.Equal(dec(t, want)) {
			t.Fatalf("ParseStrictAmount(%v) = %s, want %s", in, got, want)
		}
	}

	for _, in := range []any{nil, "", "NaN", "abc", math.Inf(-1), true} {
		if _, err := ParseStrictAmount(in); err == nil {
			t.Fatalf("ParseStrictAmount(%v) should fail", in)
		}
	}
}

func TestParseStrictAmount_RejectsAmountsBeyondColumn(t *testing.T) {
	if _, err := ParseStrictAmount("9999999999.99"); err != nil {
		t.Fatalf("largest storable amount rejected: %v", err)
	}
	for _, in := range []any{"10000000000", "-10000000000", 1e12, json.Number("123456789012345")} {
		if _, err := ParseStrictAmount(in); !errors.Is(err, ErrAmountTooLarge) {
			t.Fatalf("ParseStrictAmount(%v) err = %v, want ErrAmountTooLarge", in, err)
		}
	}
}
