// Package text serializes decision events as human-readable lines.
package text

import (
	"fmt"

	"github.com/pktwall/pktwall/format"
)

type TextDriver struct {
}

func (d *TextDriver) Prepare() error {
	return nil
}

func (d *TextDriver) Init() error {
	return nil
}

func (d *TextDriver) Format(data interface{}) ([]byte, []byte, error) {
	var key []byte
	if dataIf, ok := data.(interface{ Key() []byte }); ok {
		key = dataIf.Key()
	}
	if dataIf, ok := data.(interface{ String() string }); ok {
		return key, []byte(dataIf.String()), nil
	}
	return key, []byte(fmt.Sprintf("%v", data)), nil
}

func init() {
	d := &TextDriver{}
	format.RegisterFormatDriver("text", d)
}
