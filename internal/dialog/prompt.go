package dialog

import (
	"fmt"
	"strings"

	"vslim/internal/core"
)

const (
	needPrice       = "giá tiền"
	needDescription = "mô tả"
	needAnyField    = "ít nhất một trong: mô tả, giá tiền, ngày tháng, hoặc địa điểm"
	needStatPeriod  = "khoảng thời gian cần thống kê"
	needCondition   = "điều kiện để tìm chi tiêu (mô tả, giá tiền, ngày tháng, hoặc địa điểm)"
	needTarget      = "giá trị mới để cập nhật (giá tiền, ngày tháng, mô tả, hoặc địa điểm)"
)

var intentLabels = map[core.Intent]string{
	core.IntentAddExpense:    "thêm chi tiêu",
	core.IntentDeleteExpense: "xóa chi tiêu",
	core.IntentUpdateExpense: "cập nhật chi tiêu",
	core.IntentSearchExpense: "tìm kiếm chi tiêu",
	core.IntentStatExpense:   "thống kê chi tiêu",
}

// Missing lists what f still lacks, as user-facing phrases. ruled is false
// for intents without slot rules.
func Missing(f core.Frame) (missing []string, ruled bool) {
	switch f.Intent {
	case core.IntentAddExpense:
		if !f.HasAny(priceSlots...) {
			missing = append(missing, needPrice)
		}
		if !f.Has(core.SlotDescription) {
			missing = append(missing, needDescription)
		}
	case core.IntentDeleteExpense, core.IntentSearchExpense:
		if !f.HasAny(conditionSlots...) {
			missing = append(missing, needAnyField)
		}
	case core.IntentStatExpense:
		if !f.HasAny(statPeriodSlots...) {
			missing = append(missing, needStatPeriod)
		}
	case core.IntentUpdateExpense:
		if !f.HasAny(conditionSlots...) {
			missing = append(missing, needCondition)
		}
		if !f.HasAny(targetSlots...) {
			missing = append(missing, needTarget)
		}
	default:
		return nil, false
	}
	return missing, true
}

// MissingInfoMessage builds one follow-up sentence per incomplete frame.
// ok is false when there is nothing to ask.
func MissingInfoMessage(frames []core.Frame) (string, bool) {
	var sentences []string
	for _, f := range frames {
		missing, ruled := Missing(f)
		if !ruled {
			sentences = append(sentences, fmt.Sprintf("Bạn vui lòng cung cấp thêm thông tin cho %s nhé!", f.Intent))
			continue
		}
		if len(missing) == 0 {
			continue
		}
		sentences = append(sentences, fmt.Sprintf("Để %s, bạn vui lòng cung cấp %s nhé!", label(f.Intent), strings.Join(missing, ", ")))
	}
	if len(sentences) == 0 {
		return "", false
	}
	return strings.Join(sentences, ". "), true
}

func label(intent core.Intent) string {
	if l, ok := intentLabels[intent]; ok {
		return l
	}
	return string(intent)
}
