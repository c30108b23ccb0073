package appsize

import (
	"errors"
	"fmt"
)

// MeasureError is a measurement failure annotated with the item it belongs to.
type MeasureError struct {
	Err   error
	Key   string
	Label string
}

func newMeasureError(err error, item Item) error {
	if err == nil {
		return nil
	}
	var me *MeasureError
	if errors.As(err, &me) {
		return err
	}
	return &MeasureError{Err: err, Key: item.Key, Label: item.Label}
}

func (e *MeasureError) Error() string { return e.Err.Error() }
func (e *MeasureError) Unwrap() error { return e.Err }

func (e *MeasureError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			_, _ = fmt.Fprintf(s, "item(key=%s,label=%q): %+v", e.Key, e.Label, e.Err)
			return
		}
		fallthrough
	case 's':
		_, _ = fmt.Fprint(s, e.Error())
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", e.Error())
	}
}

// ExtractItemKey returns the key of the item a measurement error belongs to, if present.
func ExtractItemKey(err error) (string, bool) {
	var me *MeasureError
	if errors.As(err, &me) {
		return me.Key, true
	}
	return "", false
}
