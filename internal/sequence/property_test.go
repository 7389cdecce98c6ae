// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package sequence

import (
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestProperty_JobIDSequence checks that consecutive job IDs of one day
// count up by one and always carry the day's date.
func TestProperty_JobIDSequence(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("next sequence is last plus one", prop.ForAll(
		func(dayOffset int, seq int, typeCode string) bool {
			day := time.Date(2020, 1, 1, 12, 0, 0, 0, time.UTC).AddDate(0, 0, dayOffset)
			last := JobID{Date: day.Format(jobDateLayout), Type: "XX", Seq: seq}.String()

			next, err := ParseJobID(NextJobID(day, last, typeCode))
			if err != nil {
				return false
			}
			return next.Seq == seq+1 && next.Date == day.Format(jobDateLayout) && next.Type == typeCode
		},
		gen.IntRange(0, 3650),
		gen.IntRange(1, 500),
		gen.RegexMatch(`[A-Z]{2,6}`),
	))

	properties.Property("a different day starts at 01", prop.ForAll(
		func(dayOffset int, seq int) bool {
			day := time.Date(2020, 1, 1, 12, 0, 0, 0, time.UTC).AddDate(0, 0, dayOffset)
			yesterday := day.AddDate(0, 0, -1)
			last := JobID{Date: yesterday.Format(jobDateLayout), Type: "SI", Seq: seq}.String()
			return strings.HasSuffix(NextJobID(day, last, "SI"), "-SI-01")
		},
		gen.IntRange(1, 3650),
		gen.IntRange(1, 500),
	))

	properties.Property("deriving replaces only the type segment", prop.ForAll(
		func(dayOffset int, seq int, typeCode string) bool {
			day := time.Date(2020, 1, 1, 12, 0, 0, 0, time.UTC).AddDate(0, 0, dayOffset)
			template := NextJobID(day, JobID{Date: day.Format(jobDateLayout), Type: "XX", Seq: seq}.String(), "")
			derived := DeriveJobID(template, typeCode)

			a := strings.Split(template, "-")
			b := strings.Split(derived, "-")
			return len(b) == 3 && a[0] == b[0] && a[2] == b[2] && b[1] == typeCode
		},
		gen.IntRange(0, 3650),
		gen.IntRange(0, 500),
		gen.RegexMatch(`[A-Z]{2,6}`),
	))

	properties.TestingRun(t)
}

// TestProperty_AssetCodeMonotonic checks that issuing codes in a scope yields
// strictly increasing numeric suffixes.
func TestProperty_AssetCodeMonotonic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("suffix strictly increases with the count", prop.ForAll(
		func(count int, cat, brand string) bool {
			a, okA := ParseAssetSeq(NextAssetCode(cat, brand, count))
			b, okB := ParseAssetSeq(NextAssetCode(cat, brand, count+1))
			return okA && okB && b == a+1 && a == count+1
		},
		gen.IntRange(0, 10000),
		gen.RegexMatch(`[A-Z]{3}`),
		gen.RegexMatch(`[A-Z]{2,4}`),
	))

	properties.Property("code keeps its scope prefix", prop.ForAll(
		func(count int, cat, brand string) bool {
			return strings.HasPrefix(NextAssetCode(cat, brand, count), AssetScopePrefix(cat, brand))
		},
		gen.IntRange(0, 10000),
		gen.RegexMatch(`[A-Z]{3}`),
		gen.RegexMatch(`[A-Z]{2,4}`),
	))

	properties.TestingRun(t)
}
