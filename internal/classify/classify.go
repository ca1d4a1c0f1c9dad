// Package classify decides whether a company reports under the banking or
// non-banking statement schema.
package classify

import (
	"strings"

	"github.com/seenimoa/fundlens/pkg/models"
)

// Sector names that identify a bank, matched case-insensitively as
// substrings of the vendor's sector string.
var bankingSectors = []string{
	"private sector bank",
	"public sector bank",
	"small finance bank",
	"foreign bank",
	"banks",
	"banking",
}

// Fields that only appear in bank reports. The presence of any one of
// these is a secondary classification signal.
var bankingIndicatorFields = []string{
	"net_interest_margin_h",
	"gross_npa_h",
	"net_npa_h",
	"casa_ratio_h",
	"deposits_h",
	"advances_h",
}

// Classify resolves the company type, in priority order: the explicit
// report-type flag, a sector-name match, then banking-only field presence.
// Classification always succeeds; the default is non-banking.
func Classify(fm *models.FieldMap) models.CompanyType {
	if fm == nil {
		return models.NonBanking
	}

	if strings.EqualFold(strings.TrimSpace(fm.ReportType), string(models.Banking)) {
		return models.Banking
	}

	sector := strings.ToLower(fm.Sector)
	for _, name := range bankingSectors {
		if strings.Contains(sector, name) {
			return models.Banking
		}
	}

	for _, key := range bankingIndicatorFields {
		if fm.Has(key) {
			return models.Banking
		}
	}

	return models.NonBanking
}
