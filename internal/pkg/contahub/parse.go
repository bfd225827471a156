package contahub

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// ParseList normalizes the shapes the vendor answers with: sometimes a bare
// array, sometimes {data:[...]}, sometimes {list:[...]}. Anything else
// yields no records.
func ParseList(raw []byte) []json.RawMessage {
	parsed := gjson.ParseBytes(raw)

	if parsed.IsArray() {
		return rawArray(parsed)
	}

	if data := parsed.Get("data"); data.IsArray() {
		return rawArray(data)
	}

	if list := parsed.Get("list"); list.IsArray() {
		return rawArray(list)
	}

	return nil
}

func rawArray(result gjson.Result) []json.RawMessage {
	if !result.IsArray() {
		return nil
	}

	items := result.Array()
	records := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		records = append(records, json.RawMessage(item.Raw))
	}
	return records
}
