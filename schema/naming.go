package schema

import (
	"reflect"
	"strings"
	"unicode"

	pluralizer "github.com/gertd/go-pluralize"
)

var pluralizeClient = pluralizer.NewClient()

// dataSuffix is appended to a Contract type name to form the name of its
// dynamic Data type.
const dataSuffix = "Data"

// FullName returns the package-qualified name of t, dereferencing pointers.
// Unnamed types fall back to their string form.
func FullName(t reflect.Type) string {
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	if t.PkgPath() == "" {
		return t.Name()
	}
	return t.PkgPath() + "." + t.Name()
}

// ShortName strips the package path from a full type name.
func ShortName(fullName string) string {
	if i := strings.LastIndexByte(fullName, '/'); i >= 0 {
		fullName = fullName[i+1:]
	}
	if i := strings.LastIndexByte(fullName, '.'); i >= 0 {
		return fullName[i+1:]
	}
	return fullName
}

// DynamicDataName returns the synthesized Data type name for a Contract type
// that has no compiled Data struct.
func DynamicDataName(contractFullName string) string {
	return contractFullName + dataSuffix
}

// entityName trims the Data suffix so "PersonData" and "Person" name the
// same entity.
func entityName(fullName string) string {
	short := ShortName(fullName)
	if len(short) > len(dataSuffix) && strings.HasSuffix(short, dataSuffix) {
		short = strings.TrimSuffix(short, dataSuffix)
	}
	return short
}

// Plural returns the plural display name of an entity type, e.g.
// "ProjectActivities" for "acme.ProjectActivityData".
func Plural(fullName string) string {
	name := entityName(fullName)
	if name == "" {
		return ""
	}

	// Only the last word is pluralized; the prefix keeps its casing.
	cut := lastWordStart(name)
	return name[:cut] + pluralize(name[cut:])
}

// CollectionName returns the snake_case plural name handed to load
// collaborators, e.g. "project_activities".
func CollectionName(fullName string) string {
	name := entityName(fullName)
	if name == "" {
		return ""
	}

	snake := toSnakeCase(name)
	cut := strings.LastIndexByte(snake, '_') + 1
	return snake[:cut] + pluralize(snake[cut:])
}

func lastWordStart(name string) int {
	runes := []rune(name)
	for i := len(runes) - 1; i > 0; i-- {
		if unicode.IsUpper(runes[i]) && unicode.IsLower(runes[i-1]) {
			return len(string(runes[:i]))
		}
	}
	return 0
}

// toSnakeCase converts PascalCase or camelCase to snake_case, keeping
// acronyms together: "HTTPServer2Go" -> "http_server2_go".
func toSnakeCase(name string) string {
	if name == "" || strings.ToLower(name) == name {
		return name
	}

	runes := []rune(name)
	var b strings.Builder
	b.Grow(len(name) + 4)

	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			acronymEnd := unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || acronymEnd {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// irregulars the pluralizer gets wrong for type names.
var irregulars = map[string]string{
	"person":    "people",
	"datum":     "data",
	"criterion": "criteria",
}

// pluralize returns the plural of a single word in the casing of word.
func pluralize(word string) string {
	if word == "" {
		return ""
	}
	plural, ok := irregulars[strings.ToLower(word)]
	if !ok {
		plural = pluralizeClient.Pluralize(word, 2, false)
	}
	return matchCase(word, plural)
}

// matchCase applies the casing of word (lower, upper or title) to s.
func matchCase(word, s string) string {
	switch {
	case strings.ToLower(word) == word:
		return strings.ToLower(s)
	case strings.ToUpper(word) == word:
		return strings.ToUpper(s)
	case unicode.IsUpper([]rune(word)[0]):
		r := []rune(strings.ToLower(s))
		r[0] = unicode.ToUpper(r[0])
		return string(r)
	}
	return strings.ToLower(s)
}
