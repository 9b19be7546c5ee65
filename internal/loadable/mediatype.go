package loadable

import (
	"strings"

	"github.com/h2non/filetype"
)

// Text formats have no magic numbers, so the sniffer does not know them.
// Registering them lets MediaType answer for every format the bundled
// loaders handle.
var textTypes = map[string]string{
	"txt":        "text/plain",
	"md":         "text/markdown",
	"env":        "text/plain",
	"properties": "text/x-java-properties",
	"yaml":       "application/yaml",
	"yml":        "application/yaml",
	"toml":       "application/toml",
	"json":       "application/json",
	"csv":        "text/csv",
	"xml":        "application/xml",
}

func init() {
	for ext, mime := range textTypes {
		filetype.AddType(ext, mime)
	}
}

// MediaType returns the MIME type registered for a format extension, or
// an empty string when it is unknown.
func MediaType(format string) string {
	t := filetype.GetType(strings.ToLower(strings.TrimPrefix(format, ".")))
	if t == filetype.Unknown {
		return ""
	}
	return t.MIME.Value
}

// sniff detects the type of a file from its leading bytes.
func sniff(path string) string {
	kind, err := filetype.MatchFile(path)
	if err != nil || kind == filetype.Unknown {
		return ""
	}
	return kind.MIME.Value
}
