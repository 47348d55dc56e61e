package ofac

import (
	"encoding/xml"
	"regexp"
	"strings"
)

// ExtractedAddress is one digital-currency address pulled out of the feed,
// with the SDN entity it belongs to.
type ExtractedAddress struct {
	Address     string
	AddressType string
	SDNName     string
	SDNID       string
}

// Extractor turns the raw feed into candidate addresses. The structured
// and regex implementations are alternatives over the same input.
type Extractor interface {
	Extract(data []byte) ([]ExtractedAddress, error)
}

// tickerTable normalizes feed tickers to chain names. Unknown tickers are
// lower-cased and kept as-is.
var tickerTable = map[string]string{
	"XBT":   "bitcoin",
	"ETH":   "ethereum",
	"XRP":   "ripple",
	"LTC":   "litecoin",
	"BCH":   "bitcoin-cash",
	"DASH":  "dash",
	"XMR":   "monero",
	"XVG":   "verge",
	"USDT":  "tether",
	"USDC":  "usd-coin",
	"TRX":   "tron",
	"ARB":   "arbitrum",
	"BSC":   "bsc",
	"ERC20": "ethereum",
	"TRC20": "tron",
}

func normalizeTicker(t string) string {
	if mapped, ok := tickerTable[strings.ToUpper(t)]; ok {
		return mapped
	}
	return strings.ToLower(t)
}

// digitalCurrencyMarker matches "Digital Currency Address - TICKER" with a
// dash or an en-dash separator.
var digitalCurrencyMarker = regexp.MustCompile(`(?i)digital\s+currency\s+address\s*[-\x{2013}]\s*([A-Za-z0-9]+)`)

// xmlNode is a schema-free XML tree. The SDN layout has shifted across
// revisions, so extraction walks the tree rather than binding to a schema.
type xmlNode struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []xmlNode  `xml:",any"`
	Text     string     `xml:",chardata"`
}

func (n *xmlNode) name() string { return strings.ToLower(n.XMLName.Local) }

func (n *xmlNode) attr(key string) string {
	for _, a := range n.Attrs {
		if strings.EqualFold(a.Name.Local, key) {
			return a.Value
		}
	}
	return ""
}

func (n *xmlNode) child(name string) *xmlNode {
	for i := range n.Children {
		if strings.EqualFold(n.Children[i].XMLName.Local, name) {
			return &n.Children[i]
		}
	}
	return nil
}

func (n *xmlNode) childText(name string) string {
	if c := n.child(name); c != nil {
		return strings.TrimSpace(c.Text)
	}
	return ""
}

// StructuredExtractor walks the XML tree for sdnEntry nodes.
type StructuredExtractor struct{}

func (StructuredExtractor) Extract(data []byte) ([]ExtractedAddress, error) {
	var root xmlNode
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, err
	}

	var entries []*xmlNode
	collectEntries(&root, 0, &entries)

	var out []ExtractedAddress
	for _, entry := range entries {
		name := sdnName(entry)
		id := sdnID(entry)
		for _, addr := range entryAddresses(entry) {
			addr.SDNName = name
			addr.SDNID = id
			out = append(out, addr)
		}
	}
	return out, nil
}

// collectEntries gathers sdnEntry nodes, descending at most 5 levels into
// containers whose name mentions entry or sdn when the usual top-level
// location moved.
func collectEntries(n *xmlNode, depth int, out *[]*xmlNode) {
	if depth > 5 {
		return
	}
	for i := range n.Children {
		c := &n.Children[i]
		name := c.name()
		if name == "sdnentry" {
			*out = append(*out, c)
			continue
		}
		if depth == 0 || strings.Contains(name, "entry") || strings.Contains(name, "sdn") || len(c.Children) > 0 {
			collectEntries(c, depth+1, out)
		}
	}
}

// sdnName resolves the entity name through the documented fallback chain:
// lastName alone (entities carry their full name there), then wholeName,
// then the first/last concatenation, then name.
func sdnName(entry *xmlNode) string {
	if v := entry.childText("lastName"); v != "" {
		return v
	}
	if v := entry.childText("wholeName"); v != "" {
		return v
	}
	if v := strings.TrimSpace(entry.childText("firstName") + " " + entry.childText("lastName")); v != "" {
		return v
	}
	if v := entry.childText("name"); v != "" {
		return v
	}
	return "UNKNOWN"
}

func sdnID(entry *xmlNode) string {
	if v := entry.attr("uid"); v != "" {
		return v
	}
	return entry.childText("uid")
}

// entryAddresses pulls digital-currency ids out of the entry's idList and
// feature nodes.
func entryAddresses(entry *xmlNode) []ExtractedAddress {
	var out []ExtractedAddress

	if idList := entry.child("idList"); idList != nil {
		for i := range idList.Children {
			id := &idList.Children[i]
			if !strings.EqualFold(id.XMLName.Local, "id") {
				continue
			}
			idType := id.childText("idType")
			m := digitalCurrencyMarker.FindStringSubmatch(idType)
			if m == nil {
				continue
			}
			value := id.childText("idNumber")
			if value == "" {
				continue
			}
			out = append(out, ExtractedAddress{
				Address:     value,
				AddressType: normalizeTicker(m[1]),
			})
		}
	}

	if features := entry.child("features"); features != nil {
		for i := range features.Children {
			f := &features.Children[i]
			typ := f.childText("type")
			if typ == "" {
				typ = f.attr("type")
			}
			m := digitalCurrencyMarker.FindStringSubmatch(typ)
			if m == nil {
				continue
			}
			value := f.childText("value")
			if value == "" {
				value = strings.TrimSpace(f.Text)
			}
			if value == "" {
				continue
			}
			out = append(out, ExtractedAddress{
				Address:     value,
				AddressType: normalizeTicker(m[1]),
			})
		}
	}

	return out
}

// ExtractAddresses runs the structured extractor and falls back to the
// regex pass when it yields nothing.
func ExtractAddresses(data []byte) []ExtractedAddress {
	structured, err := StructuredExtractor{}.Extract(data)
	if err == nil && len(structured) > 0 {
		return structured
	}
	fallback, _ := RegexExtractor{}.Extract(data)
	return fallback
}
