package wrapper

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kbukum/apiwrap/wrapper/serializer"
)

// To converts the executor data through a serializer method such as
// "to_datetime".
func (e *Executor) To(method string, kwargs map[string]any) (any, error) {
	if e.api.serializer == nil {
		return nil, ErrNoSerializer
	}
	return e.api.serializer.Deserialize(method, e.data, kwargs)
}

// Time converts the data with "to_datetime".
func (e *Executor) Time() (time.Time, error) {
	v, err := e.To(serializer.MethodDatetime, nil)
	if err != nil {
		return time.Time{}, err
	}
	t, ok := v.(time.Time)
	if !ok {
		return time.Time{}, fmt.Errorf("%s returned %T", serializer.MethodDatetime, v)
	}
	return t, nil
}

// Decimal converts the data with "to_decimal".
func (e *Executor) Decimal() (decimal.Decimal, error) {
	v, err := e.To(serializer.MethodDecimal, nil)
	if err != nil {
		return decimal.Decimal{}, err
	}
	d, ok := v.(decimal.Decimal)
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%s returned %T", serializer.MethodDecimal, v)
	}
	return d, nil
}
