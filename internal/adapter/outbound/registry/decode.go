package registry

import "github.com/i2y/intakeq-mcp/internal/domain"

// decoder reads typed values out of an argument bag and keeps the first
// coercion error, so a closure can read every field and check once.
type decoder struct {
	args domain.Args
	err  error
}

func (d *decoder) keep(err error) {
	if d.err == nil && err != nil {
		d.err = err
	}
}

func (d *decoder) str(name string) string {
	v, err := d.args.String(name)
	d.keep(err)
	return v
}

func (d *decoder) int(name string) *int64 {
	v, err := d.args.Int(name)
	d.keep(err)
	return v
}

// intValue is int for arguments the dispatcher already checked as required.
func (d *decoder) intValue(name string) int64 {
	if v := d.int(name); v != nil {
		return *v
	}
	return 0
}

func (d *decoder) bool(name string) *bool {
	v, err := d.args.Bool(name)
	d.keep(err)
	return v
}

func (d *decoder) object(name string) map[string]any {
	v, err := d.args.Object(name)
	d.keep(err)
	return v
}
