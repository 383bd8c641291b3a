package oracle

import (
	"encoding/json"
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// DecodeInto maps a raw JSON payload onto a tagged struct. Unknown fields are
// ignored; numeric strings and similar near-misses from the oracle are
// coerced rather than rejected.
func DecodeInto(raw json.RawMessage, out any) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("oracle: parsing payload: %w", err)
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("oracle: building decoder: %w", err)
	}
	if err := dec.Decode(doc); err != nil {
		return fmt.Errorf("oracle: decoding payload: %w", err)
	}
	return nil
}
