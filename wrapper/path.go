package wrapper

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// lookupPath evaluates a gjson path over data. A leading "$." is accepted.
func lookupPath(data any, path string) (any, bool, error) {
	path = strings.TrimPrefix(strings.TrimPrefix(path, "$"), ".")
	if path == "" {
		return data, true, nil
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, false, fmt.Errorf("path %s: %w", path, err)
	}
	res := gjson.GetBytes(raw, path)
	if !res.Exists() {
		return nil, false, nil
	}
	v, err := decodeJSON([]byte(res.Raw))
	if err != nil {
		return nil, false, fmt.Errorf("path %s: %w", path, err)
	}
	return v, true, nil
}
