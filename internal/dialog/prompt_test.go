package dialog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vslim/internal/core"
)

func TestMissingInfoMessage(t *testing.T) {
	desc := core.NewFrame(core.IntentAddExpense)
	desc.Set(core.SlotDescription, core.TextValue("phở"))

	cases := []struct {
		name   string
		frames []core.Frame
		want   string
	}{
		{
			name:   "add missing both",
			frames: []core.Frame{core.NewFrame(core.IntentAddExpense)},
			want:   "Để thêm chi tiêu, bạn vui lòng cung cấp giá tiền, mô tả nhé!",
		},
		{
			name:   "add missing price",
			frames: []core.Frame{desc},
			want:   "Để thêm chi tiêu, bạn vui lòng cung cấp giá tiền nhé!",
		},
		{
			name:   "stat",
			frames: []core.Frame{core.NewFrame(core.IntentStatExpense)},
			want:   "Để thống kê chi tiêu, bạn vui lòng cung cấp khoảng thời gian cần thống kê nhé!",
		},
		{
			name:   "delete",
			frames: []core.Frame{core.NewFrame(core.IntentDeleteExpense)},
			want:   "Để xóa chi tiêu, bạn vui lòng cung cấp ít nhất một trong: mô tả, giá tiền, ngày tháng, hoặc địa điểm nhé!",
		},
		{
			name:   "update",
			frames: []core.Frame{core.NewFrame(core.IntentUpdateExpense)},
			want: "Để cập nhật chi tiêu, bạn vui lòng cung cấp điều kiện để tìm chi tiêu (mô tả, giá tiền, ngày tháng, hoặc địa điểm), " +
				"giá trị mới để cập nhật (giá tiền, ngày tháng, mô tả, hoặc địa điểm) nhé!",
		},
		{
			name:   "unruled intent",
			frames: []core.Frame{core.NewFrame(core.IntentNone)},
			want:   "Bạn vui lòng cung cấp thêm thông tin cho none nhé!",
		},
		{
			name:   "joined",
			frames: []core.Frame{desc, core.NewFrame(core.IntentSearchExpense)},
			want: "Để thêm chi tiêu, bạn vui lòng cung cấp giá tiền nhé!. " +
				"Để tìm kiếm chi tiêu, bạn vui lòng cung cấp ít nhất một trong: mô tả, giá tiền, ngày tháng, hoặc địa điểm nhé!",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := MissingInfoMessage(tc.frames)
			assert.True(t, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestMissingInfoMessageNothingToSay(t *testing.T) {
	_, ok := MissingInfoMessage(nil)
	assert.False(t, ok)

	done := core.NewFrame(core.IntentSearchExpense)
	done.Set(core.SlotLocation, core.TextValue("Hà Nội"))
	_, ok = MissingInfoMessage([]core.Frame{done})
	assert.False(t, ok)
}
