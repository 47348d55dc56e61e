package ofac

import (
	"bufio"
	"bytes"
	"regexp"
)

// Address shapes the fallback pass recognizes.
var (
	evmAddressRe    = regexp.MustCompile(`0x[0-9a-fA-F]{40}`)
	tronAddressRe   = regexp.MustCompile(`T[1-9A-HJ-NP-Za-km-z]{33}`)
	legacyBTCRe     = regexp.MustCompile(`\b[13][1-9A-HJ-NP-Za-km-z]{25,34}\b`)
	bech32AddressRe = regexp.MustCompile(`\bbc1[02-9ac-hj-np-z]{25,90}\b`)
)

// RegexExtractor is the line-oriented fallback used when the structured
// walk finds nothing. Each address is paired with the most recent
// "Digital Currency Address - TICKER" marker above it.
type RegexExtractor struct{}

func (RegexExtractor) Extract(data []byte) ([]ExtractedAddress, error) {
	var out []ExtractedAddress
	seen := make(map[string]bool)
	currentType := ""

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		if m := digitalCurrencyMarker.FindStringSubmatch(line); m != nil {
			currentType = normalizeTicker(m[1])
		}
		if currentType == "" {
			continue
		}

		for _, re := range []*regexp.Regexp{evmAddressRe, tronAddressRe, legacyBTCRe, bech32AddressRe} {
			for _, addr := range re.FindAllString(line, -1) {
				key := currentType + ":" + addr
				if seen[key] {
					continue
				}
				seen[key] = true
				out = append(out, ExtractedAddress{
					Address:     addr,
					AddressType: currentType,
					SDNName:     "UNKNOWN",
				})
			}
		}
	}
	return out, scanner.Err()
}
