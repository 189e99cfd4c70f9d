package news

import "strings"

const DefaultLanguage = "en-us"

var SupportedLanguages = []string{
	"en-us", "zh-cn", "zh-tw", "de-de", "es-es", "fr-fr", "id-id",
	"it-it", "ja-jp", "ko-kr", "pt-pt", "ru-ru", "th-th", "tr-tr", "vi-vn",
}

var languageAliases = map[string]string{
	"en": "en-us",
	"cn": "zh-cn",
	"tw": "zh-tw",
	"de": "de-de",
	"es": "es-es",
	"fr": "fr-fr",
	"id": "id-id",
	"it": "it-it",
	"ja": "ja-jp",
	"jp": "ja-jp",
	"ko": "ko-kr",
	"kr": "ko-kr",
	"pt": "pt-pt",
	"ru": "ru-ru",
	"th": "th-th",
	"tr": "tr-tr",
	"vi": "vi-vn",
	"vn": "vi-vn",
}

// ParseLanguage maps a short alias or a full language tag onto one of the
// supported languages, anything unrecognized maps to DefaultLanguage.
func ParseLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if full, ok := languageAliases[lang]; ok {
		return full
	}
	for _, supported := range SupportedLanguages {
		if lang == supported {
			return supported
		}
	}
	return DefaultLanguage
}
