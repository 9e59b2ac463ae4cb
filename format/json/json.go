// Package json serializes decision events as JSON objects.
package json

import (
	"encoding/json"

	"github.com/pktwall/pktwall/format"
)

type JSONDriver struct {
}

func (d *JSONDriver) Prepare() error {
	return nil
}

func (d *JSONDriver) Init() error {
	return nil
}

func (d *JSONDriver) Format(data interface{}) ([]byte, []byte, error) {
	var key []byte
	if dataIf, ok := data.(interface{ Key() []byte }); ok {
		key = dataIf.Key()
	}
	output, err := json.Marshal(data)
	return key, output, err
}

func init() {
	d := &JSONDriver{}
	format.RegisterFormatDriver("json", d)
}
