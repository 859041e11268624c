package archive

import (
	"mime"
	"path"
	"strings"
)

// sanitizeSegment lowercases value and keeps [a-z0-9_-].
func sanitizeSegment(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	builder := strings.Builder{}
	builder.Grow(len(value))
	for i := 0; i < len(value); i++ {
		ch := value[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= '0' && ch <= '9':
			builder.WriteByte(ch)
		case ch >= 'A' && ch <= 'Z':
			builder.WriteByte(ch + 32)
		case ch == '-', ch == '_':
			builder.WriteByte(ch)
		}
	}
	return builder.String()
}

func normalizeExtension(ext string) string {
	trimmed := strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if trimmed == "" {
		return "bin"
	}
	return sanitizeSegment(trimmed)
}

// ObjectKey builds "<category>/<name>.<ext>". Name may contain "/" to nest
// directories; every segment is sanitised.
func ObjectKey(opts PutOptions) string {
	category := sanitizeSegment(opts.Category)
	if category == "" {
		category = "misc"
	}

	var parts []string
	for _, seg := range strings.Split(opts.Name, "/") {
		seg = strings.Trim(sanitizeSegment(strings.ReplaceAll(seg, " ", "-")), "-_")
		if seg != "" {
			parts = append(parts, seg)
		}
	}
	if len(parts) == 0 {
		parts = []string{"export"}
	}
	parts[len(parts)-1] += "." + normalizeExtension(opts.Extension)

	return path.Join(append([]string{category}, parts...)...)
}

func detectContentType(ext string) string {
	typeName := mime.TypeByExtension("." + normalizeExtension(ext))
	if typeName == "" {
		return "application/octet-stream"
	}
	return typeName
}

func joinPrefix(prefix, key string) string {
	cleanPrefix := trimPrefix(prefix)
	if cleanPrefix == "" {
		return strings.TrimLeft(key, "/")
	}
	return path.Join(cleanPrefix, strings.TrimLeft(key, "/"))
}

func trimPrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), "/")
}
