package scrape

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	currencyNoiseRe = regexp.MustCompile(`[£$€\s]`)
	euroDecimalRe   = regexp.MustCompile(`,\d{2}$`)
	firstNumberRe   = regexp.MustCompile(`(\d+\.?\d*)`)
)

// CleanPrice extracts a numeric price from raw price text such as "£29.99",
// "$15.00", "€ 19,99" or "From £29.99". It returns false when no number is
// present.
func CleanPrice(text string) (float64, bool) {
	if text == "" {
		return 0, false
	}

	cleaned := currencyNoiseRe.ReplaceAllString(text, "")

	// A trailing comma with exactly two digits is a European decimal
	// separator; any other comma is a thousands separator.
	if euroDecimalRe.MatchString(cleaned) {
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	} else {
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}

	match := firstNumberRe.FindStringSubmatch(cleaned)
	if match == nil {
		return 0, false
	}

	price, err := strconv.ParseFloat(match[1], 64)
	if err != nil || price < 0 {
		return 0, false
	}
	return price, true
}

// CleanText collapses runs of whitespace and trims the result.
func CleanText(text string) string {
	return strings.TrimSpace(strings.Join(strings.Fields(text), " "))
}

var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{"t-shirts", []string{"t-shirt", "tee", "tshirt"}},
	{"shirts", []string{"shirt", "blouse", "button-up"}},
	{"jeans", []string{"jeans", "denim"}},
	{"trousers", []string{"trousers", "pants", "chinos", "slacks"}},
	{"dresses", []string{"dress"}},
	{"skirts", []string{"skirt"}},
	{"shorts", []string{"shorts"}},
	{"sweaters", []string{"sweater", "jumper", "pullover", "knit"}},
	{"hoodies", []string{"hoodie", "sweatshirt"}},
	{"jackets", []string{"jacket", "coat", "blazer"}},
	{"underwear", []string{"underwear", "briefs", "boxers", "panties", "bra"}},
	{"socks", []string{"socks", "sock"}},
	{"activewear", []string{"joggers", "leggings", "sports", "gym", "athletic"}},
}

// CategorizeProduct infers a product category from its name and URL,
// defaulting to "other".
func CategorizeProduct(name, url string) string {
	text := strings.ToLower(name + " " + url)
	for _, entry := range categoryKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(text, kw) {
				return entry.category
			}
		}
	}
	return "other"
}
