package i18n

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

// 支持的语言
const (
	LocaleZH = "zh-CN"
	LocaleEN = "en-US"

	DefaultLocale = LocaleZH
)

const localeHeader = "X-Locale"

// ResolveLocale 从请求头解析语言，优先 X-Locale，其次 Accept-Language
func ResolveLocale(c *gin.Context) string {
	if c == nil || c.Request == nil {
		return DefaultLocale
	}
	if locale := NormalizeLocale(c.GetHeader(localeHeader)); locale != "" {
		return locale
	}
	accept := c.GetHeader("Accept-Language")
	for _, part := range strings.Split(accept, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if locale := NormalizeLocale(tag); locale != "" {
			return locale
		}
	}
	return DefaultLocale
}

// NormalizeLocale 归一化语言标识，不支持时返回空字符串
func NormalizeLocale(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case value == "":
		return ""
	case strings.HasPrefix(value, "zh"):
		return LocaleZH
	case strings.HasPrefix(value, "en"):
		return LocaleEN
	default:
		return ""
	}
}

// T 翻译消息 key，缺失时回退到默认语言，再回退到 key 本身
func T(locale, key string) string {
	if msg, ok := lookup(locale, key); ok {
		return msg
	}
	return key
}

// Sprintf 翻译并格式化
func Sprintf(locale, key string, args ...interface{}) string {
	msg, ok := lookup(locale, key)
	if !ok {
		return key
	}
	return fmt.Sprintf(msg, args...)
}

func lookup(locale, key string) (string, bool) {
	normalized := NormalizeLocale(locale)
	if normalized == "" {
		normalized = DefaultLocale
	}
	if table, ok := catalog[normalized]; ok {
		if msg, ok := table[key]; ok {
			return msg, true
		}
	}
	if table, ok := catalog[DefaultLocale]; ok {
		if msg, ok := table[key]; ok {
			return msg, true
		}
	}
	return "", false
}
