// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package sequence

import (
	"fmt"
	"strconv"
	"strings"
)

const assetSeqWidth = 2

// NextAssetCode returns CATEGORY-BRAND-SEQ with SEQ = existingCountInScope + 1.
// brandCode is expected to be uppercase already.
func NextAssetCode(categoryCode, brandCode string, existingCountInScope int) string {
	if existingCountInScope < 0 {
		existingCountInScope = 0
	}
	return fmt.Sprintf("%s%0*d", AssetScopePrefix(categoryCode, brandCode), assetSeqWidth, existingCountInScope+1)
}

// AssetScopePrefix returns the prefix shared by every asset code in a scope.
func AssetScopePrefix(categoryCode, brandCode string) string {
	return categoryCode + "-" + brandCode + "-"
}

// ParseAssetSeq extracts the numeric sequence suffix of an asset code.
func ParseAssetSeq(code string) (int, bool) {
	i := strings.LastIndexByte(code, '-')
	if i < 0 || i == len(code)-1 {
		return 0, false
	}
	n, err := strconv.Atoi(code[i+1:])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// ValidScopeCode reports whether code can be used as a category or brand
// segment: non-empty uppercase letters or digits.
func ValidScopeCode(code string) bool {
	return code != "" && isUpperAlnum(code)
}
