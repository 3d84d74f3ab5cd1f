package groups

import "context"

// StaticSource serves a fixed record list.
type StaticSource struct {
	Records []GroupRecord
}

// FetchAll returns a copy of the configured records.
func (s StaticSource) FetchAll(context.Context) ([]GroupRecord, error) {
	return cloneRecords(s.Records), nil
}

// RecordSourceFunc adapts a function to RecordSource.
type RecordSourceFunc func(ctx context.Context) ([]GroupRecord, error)

// FetchAll calls f.
func (f RecordSourceFunc) FetchAll(ctx context.Context) ([]GroupRecord, error) {
	return f(ctx)
}

// DefaultRecords is the demo catalog: the storefront's standard tiers arranged
// as a hierarchy, with a partner sub-group under Đối tác.
func DefaultRecords() []GroupRecord {
	return []GroupRecord{
		{
			ID:              3,
			Name:            "Thành viên",
			Description:     "Khách hàng đã đăng ký tài khoản",
			CustomerCount:   1256,
			DiscountPercent: 5,
			Benefits:        []string{"Tích điểm mua hàng"},
			ColorTag:        ColorSecondary,
		},
		{
			ID:              2,
			Name:            "Premium",
			Description:     "Khách hàng chi tiêu từ 50-100 triệu",
			CustomerCount:   128,
			DiscountPercent: 10,
			Benefits:        []string{"Miễn phí vận chuyển đơn > 500k", "Ưu tiên hỗ trợ"},
			ColorTag:        ColorPrimary,
			ParentID:        ParentRef(3),
		},
		{
			ID:              1,
			Name:            "VIP",
			Description:     "Khách hàng chi tiêu trên 100 triệu",
			CustomerCount:   45,
			DiscountPercent: 15,
			Benefits:        []string{"Miễn phí vận chuyển", "Ưu tiên hỗ trợ", "Quà tặng sinh nhật"},
			ColorTag:        ColorWarning,
			ParentID:        ParentRef(2),
		},
		{
			ID:              4,
			Name:            "Khách mới",
			Description:     "Khách hàng đăng ký trong 30 ngày",
			CustomerCount:   89,
			DiscountPercent: 20,
			Benefits:        []string{"Giảm 20% đơn đầu tiên", "Miễn phí vận chuyển"},
			ColorTag:        ColorSuccess,
		},
		{
			ID:              5,
			Name:            "Đối tác",
			Description:     "Đại lý và đối tác kinh doanh",
			CustomerCount:   12,
			DiscountPercent: 25,
			Benefits:        []string{"Chiết khấu đặc biệt", "Thanh toán sau", "Hỗ trợ chuyên biệt"},
			ColorTag:        ColorInfo,
		},
		{
			ID:              6,
			Name:            "Đại lý cấp 1",
			Description:     "Đại lý phân phối khu vực",
			CustomerCount:   4,
			DiscountPercent: 30,
			Benefits:        []string{"Chiết khấu đặc biệt", "Thanh toán sau"},
			ColorTag:        ColorInfo,
			ParentID:        ParentRef(5),
		},
	}
}
