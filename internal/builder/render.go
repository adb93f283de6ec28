package builder

import "regexp"

// placeholderPattern matches {{ name }}. \s also matches newlines, so the
// name may sit on its own line between the delimiters.
var placeholderPattern = regexp.MustCompile(`\{\{\s*([^}\s]+)\s*\}\}`)

// Render substitutes every {{ name }} placeholder in template with the value
// params holds for name. Placeholders whose name is absent are left exactly
// as written so that a later pass with a wider mapping can resolve them.
func Render(template string, params Params) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(span string) string {
		name := placeholderPattern.FindStringSubmatch(span)[1]
		if value, ok := params.Get(name); ok {
			return value
		}
		return span
	})
}
