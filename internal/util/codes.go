// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"strings"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// BrandCodeLength is the length of codes derived by BrandCode.
const BrandCodeLength = 3

var upper = cases.Upper(language.Und)

// NormalizeCode transliterates s to ASCII, uppercases it and drops every
// character that is not a letter or digit.
func NormalizeCode(s string) string {
	s = upper.String(unidecode.Unidecode(s))

	var b strings.Builder
	for _, r := range s {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// BrandCode derives a short uppercase code from a brand name: the first
// letter followed by the next consonants ("Sony" -> "SNY", "Shure" -> "SHR").
// Names without enough consonants fall back to their leading characters
// ("Bose" -> "BOS"). Names shorter than BrandCodeLength are returned whole.
func BrandCode(brand string) string {
	norm := NormalizeCode(brand)
	if len(norm) <= BrandCodeLength {
		return norm
	}

	code := []byte{norm[0]}
	for i := 1; i < len(norm) && len(code) < BrandCodeLength; i++ {
		if !isVowel(norm[i]) {
			code = append(code, norm[i])
		}
	}
	if len(code) < BrandCodeLength {
		return norm[:BrandCodeLength]
	}
	return string(code)
}

func isVowel(c byte) bool {
	switch c {
	case 'A', 'E', 'I', 'O', 'U':
		return true
	}
	return false
}
