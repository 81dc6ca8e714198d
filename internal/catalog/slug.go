package catalog

import (
	"strings"
	"unicode"
)

// Slugify は表示名から slug を導出します。小文字化し、空白の連続をハイフン1つに置き換えます。
// URL のパスを壊す文字（/ ? # %）は取り除きます。
func Slugify(name string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsSpace(r):
			pendingDash = true
		case strings.ContainsRune(unsafeSlugRunes, r):
		default:
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		}
	}
	return b.String()
}

const unsafeSlugRunes = "/?#%"

// validSlug は明示指定された slug を検査します。
func validSlug(slug string) bool {
	if slug == "" || len(slug) > 200 {
		return false
	}
	return !strings.ContainsFunc(slug, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsUpper(r) || strings.ContainsRune(unsafeSlugRunes, r)
	})
}
