// Package binary serializes decision events in their fixed wire layout,
// matching the slot contract shared with external readers.
package binary

import (
	"encoding"
	"fmt"

	"github.com/pktwall/pktwall/format"
)

type BinaryDriver struct {
}

func (d *BinaryDriver) Prepare() error {
	return nil
}

func (d *BinaryDriver) Init() error {
	return nil
}

func (d *BinaryDriver) Format(data interface{}) ([]byte, []byte, error) {
	var key []byte
	if dataIf, ok := data.(interface{ Key() []byte }); ok {
		key = dataIf.Key()
	}
	dataIf, ok := data.(encoding.BinaryMarshaler)
	if !ok {
		return nil, nil, fmt.Errorf("message is not binary-serializable")
	}
	output, err := dataIf.MarshalBinary()
	return key, output, err
}

func init() {
	d := &BinaryDriver{}
	format.RegisterFormatDriver("bin", d)
}
