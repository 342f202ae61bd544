package registry

import "time"

// Genders recognized by the category path tables.
const (
	GenderMen   = "men"
	GenderWomen = "women"
	GenderKids  = "kids"
)

// KnownGenders lists the valid gender selections in display order.
var KnownGenders = []string{GenderMen, GenderWomen, GenderKids}

// IsKnownGender reports whether g is a valid gender selection.
func IsKnownGender(g string) bool {
	for _, known := range KnownGenders {
		if g == known {
			return true
		}
	}
	return false
}

// Inter-request delay bounds applied when a retailer config does not set its
// own range.
const (
	defaultMinDelay = 2 * time.Second
	defaultMaxDelay = 3500 * time.Millisecond
)

var defaultRegions = []Region{
	{Code: "UK", Currency: "GBP", CurrencySymbol: "£"},
	{Code: "USA", Currency: "USD", CurrencySymbol: "$"},
}

func defaultRetailers() []*Config {
	return []*Config{
		{
			Key:  "hm",
			Name: "H&M",
			BaseURLs: map[string]string{
				"UK":  "https://www2.hm.com/en_gb",
				"USA": "https://www2.hm.com/en_us",
			},
			CategoryPaths: map[string]string{
				GenderMen:   "/men/products/view-all.html",
				GenderWomen: "/women/products/view-all.html",
				GenderKids:  "/kids/products/view-all.html",
			},
		},
		{
			Key:  "asos",
			Name: "ASOS",
			BaseURLs: map[string]string{
				"UK":  "https://www.asos.com",
				"USA": "https://www.asos.com/us",
			},
			CategoryPaths: map[string]string{
				GenderMen:   "/men/ctas/generic/generic-all-clothing-702/cat/?cid=3602",
				GenderWomen: "/women/ctas/generic/generic-all-clothing/cat/?cid=4209",
				GenderKids:  "/kids/cat/?cid=27391",
			},
			MaterialFilter:         "composition=100%25+Cotton",
			SupportsMaterialFilter: true,
		},
		{
			Key:  "uniqlo",
			Name: "Uniqlo",
			BaseURLs: map[string]string{
				"UK":  "https://www.uniqlo.com/uk/en",
				"USA": "https://www.uniqlo.com/us/en",
			},
			CategoryPaths: map[string]string{
				GenderMen:   "/men",
				GenderWomen: "/women",
				GenderKids:  "/kids",
			},
		},
		{
			Key:  "next",
			Name: "Next",
			BaseURLs: map[string]string{
				"UK": "https://www.next.co.uk",
			},
			CategoryPaths: map[string]string{
				GenderMen:   "/shop/gender-men",
				GenderWomen: "/shop/gender-women",
				GenderKids:  "/shop/department-kids",
			},
		},
		{
			Key:  "marksandspencer",
			Name: "Marks & Spencer",
			BaseURLs: map[string]string{
				"UK": "https://www.marksandspencer.com",
			},
			CategoryPaths: map[string]string{
				GenderMen:   "/l/men",
				GenderWomen: "/l/women",
				GenderKids:  "/l/kids",
			},
		},
		{
			Key:  "zara",
			Name: "Zara",
			BaseURLs: map[string]string{
				"UK":  "https://www.zara.com/uk",
				"USA": "https://www.zara.com/us",
			},
			CategoryPaths: map[string]string{
				GenderMen:   "/en/man-new-in-l603.html",
				GenderWomen: "/en/woman-new-in-l1180.html",
				GenderKids:  "/en/kids-new-in-l585.html",
			},
		},
		{
			Key:  "primark",
			Name: "Primark",
			BaseURLs: map[string]string{
				"UK": "https://www.primark.com/en-gb",
			},
			CategoryPaths: map[string]string{
				GenderMen:   "/products/mens/clothing",
				GenderWomen: "/products/womens/clothing",
				GenderKids:  "/products/kids",
			},
		},
		{
			Key:  "johnlewis",
			Name: "John Lewis",
			BaseURLs: map[string]string{
				"UK": "https://www.johnlewis.com",
			},
			CategoryPaths: map[string]string{
				GenderMen:   "/browse/men/mens-clothing/_/N-7jzh",
				GenderWomen: "/browse/women/womens-clothing/_/N-7jzf",
				GenderKids:  "/browse/baby-child/kids-clothing/_/N-7jzg",
			},
		},
		{
			Key:  "debenhams",
			Name: "Debenhams",
			BaseURLs: map[string]string{
				"UK": "https://www.debenhams.com",
			},
			CategoryPaths: map[string]string{
				GenderMen:   "/men/mens-clothing",
				GenderWomen: "/women/womens-clothing",
				GenderKids:  "/kids",
			},
		},
		{
			Key:  "gap",
			Name: "Gap",
			BaseURLs: map[string]string{
				"USA": "https://www.gap.com",
			},
			CategoryPaths: map[string]string{
				GenderMen:   "/browse/category.do?cid=5225",
				GenderWomen: "/browse/category.do?cid=5736",
				GenderKids:  "/browse/category.do?cid=6189",
			},
		},
		{
			Key:  "oldnavy",
			Name: "Old Navy",
			BaseURLs: map[string]string{
				"USA": "https://oldnavy.gap.com",
			},
			CategoryPaths: map[string]string{
				GenderMen:   "/browse/category.do?cid=1011502",
				GenderWomen: "/browse/category.do?cid=1011506",
				GenderKids:  "/browse/category.do?cid=1011510",
			},
		},
		{
			Key:  "target",
			Name: "Target",
			BaseURLs: map[string]string{
				"USA": "https://www.target.com",
			},
			CategoryPaths: map[string]string{
				GenderMen:   "/c/men-s-clothing/-/N-5xtcd",
				GenderWomen: "/c/women-s-clothing/-/N-5xtco",
				GenderKids:  "/c/kids-clothing/-/N-5xtcv",
			},
		},
		{
			Key:  "macys",
			Name: "Macy's",
			BaseURLs: map[string]string{
				"USA": "https://www.macys.com",
			},
			CategoryPaths: map[string]string{
				GenderMen:   "/shop/mens-clothing?id=1",
				GenderWomen: "/shop/womens-clothing?id=255",
				GenderKids:  "/shop/kids-clothes?id=5991",
			},
		},
		{
			Key:  "nordstrom",
			Name: "Nordstrom",
			BaseURLs: map[string]string{
				"USA": "https://www.nordstrom.com",
			},
			CategoryPaths: map[string]string{
				GenderMen:   "/browse/men/clothing",
				GenderWomen: "/browse/women/clothing",
				GenderKids:  "/browse/kids/clothing",
			},
		},
		{
			Key:  "jcrew",
			Name: "J.Crew",
			BaseURLs: map[string]string{
				"USA": "https://www.jcrew.com",
			},
			CategoryPaths: map[string]string{
				GenderMen:   "/c/mens_category/clothing",
				GenderWomen: "/c/womens_category/clothing",
				GenderKids:  "/c/girls_category",
			},
		},
		{
			Key:  "bananarepublic",
			Name: "Banana Republic",
			BaseURLs: map[string]string{
				"USA": "https://bananarepublic.gap.com",
			},
			CategoryPaths: map[string]string{
				GenderMen:   "/browse/category.do?cid=32643",
				GenderWomen: "/browse/category.do?cid=70174",
				GenderKids:  "/browse/category.do?cid=1056958",
			},
		},
	}
}
