package groups

import "strings"

// DefaultLocale is used when the viewer does not state a language.
const DefaultLocale = "vi"

var columnLabels = map[ColumnKey]map[string]string{
	ColumnName:          {"vi": "Tên nhóm", "en": "Group name"},
	ColumnDescription:   {"vi": "Mô tả", "en": "Description"},
	ColumnCustomerCount: {"vi": "Số khách hàng", "en": "Customers"},
	ColumnDiscount:      {"vi": "Giảm giá", "en": "Discount"},
	ColumnBenefits:      {"vi": "Quyền lợi", "en": "Benefits"},
	ColumnActions:       {"vi": "Thao tác", "en": "Actions"},
}

var uiLabels = map[string]map[string]string{
	"title":           {"vi": "Nhóm khách hàng", "en": "Customer groups"},
	"stats.groups":    {"vi": "Tổng nhóm", "en": "Total groups"},
	"stats.discount":  {"vi": "Giảm giá cao nhất", "en": "Highest discount"},
	"stats.benefits":  {"vi": "Tổng quyền lợi", "en": "Total benefits"},
	"stats.customers": {"vi": "Tổng khách hàng", "en": "Total customers"},
	"action.view":     {"vi": "Xem khách hàng", "en": "View customers"},
	"action.edit":     {"vi": "Chỉnh sửa", "en": "Edit"},
	"action.delete":   {"vi": "Xóa", "en": "Delete"},
	"empty":           {"vi": "Không có nhóm nào", "en": "No groups found"},
}

// ResolveLocalizedValue selects the best translation for locale. Keys match
// case-insensitively and "en-us" falls back to "en", then to DefaultLocale.
func ResolveLocalizedValue(values map[string]string, locale, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	for _, candidate := range localeCandidates(locale) {
		for key, value := range values {
			if strings.EqualFold(key, candidate) && value != "" {
				return value
			}
		}
	}
	return fallback
}

// ColumnLabel returns the header text for a column.
func ColumnLabel(col ColumnKey, locale string) string {
	return ResolveLocalizedValue(columnLabels[col], locale, string(col))
}

// Label returns a localized UI string by key, or the key itself when unknown.
func Label(key, locale string) string {
	return ResolveLocalizedValue(uiLabels[key], locale, key)
}

// Labels resolves every UI string for a locale, for templates. Dots in keys
// become underscores so templates can use attribute access.
func Labels(locale string) map[string]string {
	out := make(map[string]string, len(uiLabels))
	for key := range uiLabels {
		out[strings.ReplaceAll(key, ".", "_")] = Label(key, locale)
	}
	return out
}

func localeCandidates(locale string) []string {
	locale = normalizeLocale(locale)
	if locale == "" {
		return []string{DefaultLocale}
	}
	candidates := []string{locale}
	if idx := strings.IndexAny(locale, "-_"); idx > 0 {
		candidates = append(candidates, locale[:idx])
	}
	return append(candidates, DefaultLocale)
}

func normalizeLocale(locale string) string {
	return strings.TrimSpace(strings.ToLower(locale))
}
