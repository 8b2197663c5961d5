package wsp

import "github.com/calvinalkan/wsp/pkg/wsp/codec"

// Close releases d's backend instance and descriptor array (spec.md
// section 4.5.4). Idempotent: closing an already-closed or never-opened
// Database is a no-op.
func (d *Database) Close() error {
	if d.instance == nil {
		return nil
	}

	err := d.instance.Close()

	d.instance = nil
	d.backend = nil
	d.archives = nil
	d.meta = codec.Metadata{}
	d.aggKind = 0
	d.path = ""

	return err
}
