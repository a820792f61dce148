package cli

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// virtualPathPattern finds the start of the MCP segments in a request URL.
var virtualPathPattern = regexp.MustCompile(`/(tools|resources|prompts)(/.*)?$`)

// ParseRequestURL splits a full request URL into the server base URL and the
// virtual path. The virtual path begins at the last /tools, /resources, or
// /prompts segment; everything before it is the server endpoint.
func ParseRequestURL(fullURL string) (baseURL, virtualPath string, err error) {
	loc := virtualPathPattern.FindStringIndex(fullURL)
	if loc == nil {
		return "", "", fmt.Errorf("invalid MCP URL: must contain /tools, /resources, or /prompts")
	}

	return fullURL[:loc[0]], fullURL[loc[0]:], nil
}

// ParseDataValue coerces a -d value string into a typed argument: booleans,
// integers, floats, falling back to the raw string.
func ParseDataValue(value string) interface{} {
	switch strings.ToLower(value) {
	case "true":
		return true
	case "false":
		return false
	}

	if !strings.Contains(value, ".") {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	} else if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}

	return value
}

// ParseDataFlags parses -d/--data flags into the request arguments. Each
// flag is either key=value (value type-coerced) or a JSON object, merged in
// order. JSON arrays are rejected: MCP arguments are key-value pairs.
func ParseDataFlags(dataFlags []string) (map[string]interface{}, error) {
	result := make(map[string]interface{})

	for _, data := range dataFlags {
		stripped := strings.TrimSpace(data)

		switch {
		case strings.HasPrefix(stripped, "{"):
			var parsed map[string]interface{}
			if err := json.Unmarshal([]byte(data), &parsed); err != nil {
				return nil, fmt.Errorf("invalid JSON in -d flag: %s", data)
			}
			for k, v := range parsed {
				result[k] = v
			}

		case strings.HasPrefix(stripped, "["):
			return nil, fmt.Errorf("JSON arrays are not supported in -d flag; use key=value or JSON objects")

		default:
			key, value, found := strings.Cut(data, "=")
			if !found {
				return nil, fmt.Errorf("invalid data format: %s (expected key=value or JSON)", data)
			}
			result[key] = ParseDataValue(value)
		}
	}

	return result, nil
}

// ParseHeaders parses -H/--header flags of the form "Key: Value".
func ParseHeaders(headerFlags []string) (map[string]string, error) {
	headers := make(map[string]string)

	for _, header := range headerFlags {
		key, value, found := strings.Cut(header, ":")
		if !found {
			return nil, fmt.Errorf("invalid header format: %s (expected \"Key: Value\")", header)
		}
		headers[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	return headers, nil
}
