package wrapper

import (
	"fmt"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// Decode converts a client's data into T using json tags. Numbers, strings
// and RFC 3339 timestamps are converted as needed.
//
//	type user struct {
//		ID   int    `json:"id"`
//		Name string `json:"name"`
//	}
//	u, err := wrapper.Decode[user](resp)
func Decode[T any](c *Client) (T, error) {
	var out T
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           &out,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return out, fmt.Errorf("decode: %w", err)
	}
	if err := dec.Decode(c.data); err != nil {
		return out, fmt.Errorf("decode: %w", err)
	}
	return out, nil
}
