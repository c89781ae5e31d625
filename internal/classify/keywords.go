package classify

import (
	"context"
	"strings"
)

var defaultKeywords = map[string][]string{
	CategoryFood: {
		"ăn", "uống", "cơm", "phở", "bún", "bánh", "cà phê", "cafe", "trà", "nước",
		"bia", "lẩu", "nhậu", "chè", "xôi", "mì", "cháo", "gà", "trái cây", "đồ ăn",
	},
	CategoryTransport: {
		"xăng", "grab", "taxi", "xe", "vé máy bay", "tàu", "gửi xe", "bus", "be", "gojek",
	},
	CategoryHealth: {
		"thuốc", "khám", "bệnh viện", "nha khoa", "bảo hiểm y tế", "vitamin", "gym",
	},
	CategoryBills: {
		"điện", "nước sinh hoạt", "internet", "wifi", "tiền nhà", "thuê nhà", "điện thoại", "hóa đơn", "học phí",
	},
	CategoryHousehold: {
		"nồi", "chảo", "chén", "bát", "quạt", "máy giặt", "tủ lạnh", "khăn", "giường", "bột giặt",
	},
	CategoryShopping: {
		"áo", "quần", "giày", "dép", "túi", "mỹ phẩm", "son", "đồng hồ", "shopee", "lazada",
	},
	CategoryEntertainment: {
		"phim", "rạp", "karaoke", "game", "du lịch", "concert", "netflix", "spotify",
	},
}

// KeywordClassifier matches descriptions against keyword lists on whole
// words. The first category, in Categories order, with a matching keyword
// wins.
type KeywordClassifier struct {
	keywords map[string][]string
}

// NewKeywordClassifier uses keywords, or the built-in lists when nil.
func NewKeywordClassifier(keywords map[string][]string) *KeywordClassifier {
	if keywords == nil {
		keywords = defaultKeywords
	}
	return &KeywordClassifier{keywords: keywords}
}

func (k *KeywordClassifier) Classify(_ context.Context, descriptions []string) ([]string, error) {
	out := fillDefault(len(descriptions))
	for i, d := range descriptions {
		d = " " + strings.Join(strings.Fields(strings.ToLower(d)), " ") + " "
	categories:
		for _, c := range Categories {
			for _, kw := range k.keywords[c] {
				if strings.Contains(d, " "+kw+" ") {
					out[i] = c
					break categories
				}
			}
		}
	}
	return out, nil
}
