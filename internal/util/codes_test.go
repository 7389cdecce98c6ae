// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import "testing"

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Sony", "SONY"},
		{"  shure ", "SHURE"},
		{"Blackmagic Design", "BLACKMAGICDESIGN"},
		{"Müller & Söhne", "MULLERSOHNE"},
		{"Røde", "RODE"},
		{"DJI-4", "DJI4"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeCode(tt.in); got != tt.want {
			t.Errorf("NormalizeCode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBrandCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Sony", "SNY"},
		{"Shure", "SHR"},
		{"Sennheiser", "SNN"},
		{"Canon", "CNN"},
		{"Bose", "BOS"},
		{"Aputure", "APT"},
		{"Røde", "ROD"},
		{"LG", "LG"},
		{"JBL", "JBL"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := BrandCode(tt.in); got != tt.want {
			t.Errorf("BrandCode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParsePositiveID(t *testing.T) {
	if id, ok := ParsePositiveID("42"); !ok || id != 42 {
		t.Errorf("ParsePositiveID(42) = %d, %v", id, ok)
	}
	for _, bad := range []string{"", "0", "-1", "x"} {
		if _, ok := ParsePositiveID(bad); ok {
			t.Errorf("ParsePositiveID(%q) accepted", bad)
		}
	}
}

func TestNullInt64Ptr(t *testing.T) {
	v := int64(5)
	n := NullInt64FromPtr(&v)
	if !n.Valid || n.Int64 != 5 {
		t.Errorf("NullInt64FromPtr = %+v", n)
	}
	if NullInt64FromPtr(nil).Valid {
		t.Error("nil pointer produced a valid value")
	}
	if p := PtrFromNullInt64(n); p == nil || *p != 5 {
		t.Errorf("PtrFromNullInt64 = %v", p)
	}
	if PtrFromNullInt64(NullInt64FromPtr(nil)) != nil {
		t.Error("invalid value produced a pointer")
	}
}
