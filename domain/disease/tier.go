package disease

import (
	"strings"
	"unicode"
)

// Tier represents the statutory severity class of a notifiable disease
type Tier string

const (
	TierA        Tier = "class_a"
	TierB        Tier = "class_b"
	TierC        Tier = "class_c"
	Unclassified Tier = "unclassified"
)

// DisplayName returns the tier label used in report prose
func (t Tier) DisplayName() string {
	switch t {
	case TierA:
		return "Class A"
	case TierB:
		return "Class B"
	case TierC:
		return "Class C"
	default:
		return "Unclassified"
	}
}

// Exact membership sets from the national notifiable-disease catalogue.
var tierAExact = nameSet(
	"鼠疫", "霍乱",
)

var tierBExact = nameSet(
	"传染性非典型肺炎", "艾滋病", "病毒性肝炎", "脊髓灰质炎", "人感染高致病性禽流感",
	"麻疹", "流行性出血热", "狂犬病", "流行性乙型脑炎", "登革热", "炭疽", "细菌性痢疾",
	"阿米巴性痢疾", "肺结核", "伤寒", "副伤寒", "流行性脑脊髓膜炎", "百日咳", "白喉",
	"新生儿破伤风", "猩红热", "布鲁氏菌病", "淋病", "梅毒", "钩端螺旋体病", "血吸虫病",
	"疟疾", "新型冠状病毒感染", "新冠病毒感染", "人感染H7N9禽流感", "猴痘",
)

var tierCExact = nameSet(
	"流行性感冒", "流行性腮腺炎", "风疹", "急性出血性结膜炎", "麻风病", "流行性斑疹伤寒",
	"地方性斑疹伤寒", "黑热病", "包虫病", "丝虫病",
	"除霍乱、细菌性痢疾、伤寒和副伤寒以外的感染性腹泻病", "手足口病",
	"其它感染性腹泻病", "其他感染性腹泻病",
)

// Keyword fallbacks for reporting-system spellings absent from the exact sets
// (subtype suffixes, abbreviations). Only consulted after exact lookup fails.
var tierBKeywords = []string{"肝炎", "梅毒", "炭疽", "艾滋"}
var tierCKeywords = []string{"腹泻", "斑疹"}

// Classify maps a free-text disease name to its statutory tier.
// Evaluation order is fixed: TierA exact, TierB exact-or-keyword,
// TierC exact-or-keyword, Unclassified. The function is pure and total.
func Classify(name string) Tier {
	n := normalizeName(name)
	if _, ok := tierAExact[n]; ok {
		return TierA
	}
	if _, ok := tierBExact[n]; ok {
		return TierB
	}
	if containsAny(n, tierBKeywords) {
		return TierB
	}
	if _, ok := tierCExact[n]; ok {
		return TierC
	}
	if containsAny(n, tierCKeywords) {
		return TierC
	}
	return Unclassified
}

// normalizeName strips all interior and surrounding whitespace, including
// full-width spaces common in reporting-system exports.
func normalizeName(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, name)
}

func containsAny(s string, keywords []string) bool {
	if s == "" {
		return false
	}
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func nameSet(names ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}
