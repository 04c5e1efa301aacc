// internal/service/template_service.go
package service

import (
	"regexp"
)

// placeholderPattern matches {{ name }} where name is made of word
// characters, dots and dashes.
var placeholderPattern = regexp.MustCompile(`{{\s*([\w.-]+)\s*}}`)

// RenderTemplate replaces every placeholder in template with its binding.
// Unbound names render as the empty string. Substituted values are never
// expanded again.
func RenderTemplate(template string, data map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(token string) string {
		m := placeholderPattern.FindStringSubmatch(token)
		return data[m[1]]
	})
}

// MapVariables zips names with values. Names without a value bind to "".
func MapVariables(names, values []string) map[string]string {
	bindings := make(map[string]string, len(names))
	for i, name := range names {
		if i < len(values) {
			bindings[name] = values[i]
		} else {
			bindings[name] = ""
		}
	}
	return bindings
}

// Placeholders lists the distinct placeholder names used in template, in
// order of first appearance.
func Placeholders(template string) []string {
	seen := map[string]bool{}
	names := []string{}
	for _, m := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}
