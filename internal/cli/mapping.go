package cli

import (
	"fmt"
	"strings"
)

// MCP methods the virtual paths map onto.
const (
	MethodToolsList     = "tools/list"
	MethodToolsCall     = "tools/call"
	MethodResourcesList = "resources/list"
	MethodResourcesRead = "resources/read"
	MethodPromptsList   = "prompts/list"
	MethodPromptsGet    = "prompts/get"
)

// MapVirtualPath maps a virtual path and the parsed -d data onto an MCP
// method and its params:
//
//	/tools            -> tools/list
//	/tools/<name>     -> tools/call with arguments from data
//	/resources        -> resources/list
//	/resources/<path> -> resources/read with a file:// URI built from <path>
//	/prompts          -> prompts/list
//	/prompts/<name>   -> prompts/get with arguments from data
func MapVirtualPath(virtualPath string, data map[string]interface{}) (string, map[string]interface{}, error) {
	parts := strings.Split(strings.TrimPrefix(virtualPath, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		return "", nil, fmt.Errorf("invalid virtual path: empty path")
	}

	category := parts[0]

	switch category {
	case "tools":
		if len(parts) == 1 {
			return MethodToolsList, map[string]interface{}{}, nil
		}
		return MethodToolsCall, map[string]interface{}{
			"name":      parts[1],
			"arguments": data,
		}, nil

	case "resources":
		if len(parts) == 1 {
			return MethodResourcesList, map[string]interface{}{}, nil
		}
		filePath := strings.Join(parts[1:], "/")
		if filePath == "" {
			return "", nil, fmt.Errorf("invalid resources path: path cannot be empty after /resources/")
		}
		if !strings.HasPrefix(filePath, "/") {
			filePath = "/" + filePath
		}
		params := map[string]interface{}{"uri": "file://" + filePath}
		for k, v := range data {
			params[k] = v
		}
		return MethodResourcesRead, params, nil

	case "prompts":
		if len(parts) == 1 {
			return MethodPromptsList, map[string]interface{}{}, nil
		}
		return MethodPromptsGet, map[string]interface{}{
			"name":      parts[1],
			"arguments": data,
		}, nil

	default:
		return "", nil, fmt.Errorf("invalid MCP category: %s", category)
	}
}
