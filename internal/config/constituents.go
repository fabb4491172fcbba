// Package config holds runtime configuration that is data, not wiring:
// index constituent lists and their file loader.
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"dsex-insights/internal/domain"
)

// DefaultDS30 is the bundled DS30 constituent list. The exchange revises
// the index twice a year, so deployments should prefer a constituent file
// over this snapshot.
var DefaultDS30 = []string{
	"BATBC",
	"BEACONPHAR",
	"BRACBANK",
	"BSC",
	"BSCPLC",
	"BXPHARMA",
	"CITYBANK",
	"DELTALIFE",
	"EBL",
	"GP",
	"GPHISPAT",
	"HEIDELBCEM",
	"IDLC",
	"JAMUNAOIL",
	"KBPPWBIL",
	"KOHINOOR",
	"LANKABAFIN",
	"LHB",
	"LINDEBD",
	"LOVELLO",
	"MJLBD",
	"OLYMPIC",
	"PADMAOIL",
	"PRIMEBANK",
	"PUBALIBANK",
	"RENATA",
	"ROBI",
	"SQURPHARMA",
	"UNIQUEHRL",
	"WALTONHIL",
}

// DefaultConstituents returns the bundled DS30 list as a set.
func DefaultConstituents() domain.ConstituentSet {
	return domain.NewConstituentSet(DefaultDS30)
}

// LoadConstituentFile reads a constituent list from path: one trading
// code per line, blank lines and #-comments ignored. Codes are upcased
// and deduplicated.
func LoadConstituentFile(path string) (domain.ConstituentSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read constituent file: %w", err)
	}

	var codes []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		codes = append(codes, strings.ToUpper(line))
	}
	if len(codes) == 0 {
		return nil, fmt.Errorf("constituent file %s has no entries", path)
	}

	return domain.NewConstituentSet(codes), nil
}

// ConstituentList renders a set back to a sorted slice, for logging and
// config dumps.
func ConstituentList(set domain.ConstituentSet) []string {
	list := make([]string, 0, len(set))
	for code := range set {
		list = append(list, code)
	}
	sort.Strings(list)
	return list
}
