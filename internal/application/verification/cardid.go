package verification

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	cardIDPrefix       = "HT"
	cardIDAlphabet     = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	cardIDSuffixLen    = 4
	defaultCitySegment = "IND"
)

// GenerateCardID builds HT-<CITY3>-<YEAR>-<RAND4>. intn must return a value in [0, n).
func GenerateCardID(city string, year int, intn func(int) int) string {
	suffix := make([]byte, cardIDSuffixLen)
	for i := range suffix {
		suffix[i] = cardIDAlphabet[intn(len(cardIDAlphabet))]
	}
	return fmt.Sprintf("%s-%s-%04d-%s", cardIDPrefix, CitySegment(city), year, suffix)
}

// CitySegment is the upper-cased first three runes of the trimmed city, or IND when shorter.
func CitySegment(city string) string {
	r := []rune(strings.TrimSpace(city))
	if len(r) < 3 {
		return defaultCitySegment
	}
	return strings.ToUpper(string(r[:3]))
}

// PublicURL is the shareable trade card page for cardID under base.
func PublicURL(base, cardID string) string {
	return strings.TrimRight(base, "/") + "/trade-card/" + url.PathEscape(cardID)
}

// QRCodeURL points the QR image service at data.
func QRCodeURL(service, size, data string) string {
	sep := "?"
	if strings.Contains(service, "?") {
		sep = "&"
	}
	return service + sep + "size=" + url.QueryEscape(size) + "&data=" + url.QueryEscape(data)
}
