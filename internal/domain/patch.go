package domain

import (
	"bytes"
	"encoding/json"
)

// Optional marks whether a field was sent at all. Set with a nil Value means
// the caller explicitly cleared it.
type Optional[T any] struct {
	Set   bool
	Value *T
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}

// BookingPatch carries the editable scheduling, status and payment fields of
// a booking update.
type BookingPatch struct {
	Status        Optional[BookingStatus] `json:"booking_status"`
	TripType      Optional[TripType]      `json:"trip_type"`
	PickupDate    Optional[Date]          `json:"pickup_date"`
	PickupTime    Optional[Clock]         `json:"pickup_time"`
	ReturnDate    Optional[Date]          `json:"return_date"`
	ReturnTime    Optional[Clock]         `json:"return_time"`
	TimePeriod    Optional[string]        `json:"time_period"`
	PaymentType   Optional[PaymentType]   `json:"payment_type"`
	PaymentStatus Optional[string]        `json:"payment_status"`
}

func (p BookingPatch) Empty() bool {
	return !p.Status.Set && !p.TripType.Set && !p.PickupDate.Set && !p.PickupTime.Set &&
		!p.ReturnDate.Set && !p.ReturnTime.Set && !p.TimePeriod.Set && !p.PaymentType.Set && !p.PaymentStatus.Set
}

// Apply returns a copy of b with the patch applied. Payment status is derived
// from payment type whenever the type is present.
func (p BookingPatch) Apply(b Booking) Booking {
	if p.Status.Set && p.Status.Value != nil {
		b.Status = *p.Status.Value
	}
	if p.TripType.Set && p.TripType.Value != nil {
		b.TripType = *p.TripType.Value
	}
	if p.PickupDate.Set {
		b.PickupDate = p.PickupDate.Value
	}
	if p.PickupTime.Set {
		b.PickupTime = p.PickupTime.Value
	}
	if p.ReturnDate.Set {
		b.ReturnDate = p.ReturnDate.Value
	}
	if p.ReturnTime.Set {
		b.ReturnTime = p.ReturnTime.Value
	}
	if p.TimePeriod.Set {
		b.TimePeriod = deref(p.TimePeriod.Value)
	}
	if p.PaymentStatus.Set {
		b.PaymentStatus = deref(p.PaymentStatus.Value)
	}
	if p.PaymentType.Set {
		b.PaymentType = deref(p.PaymentType.Value)
		if status := PaymentStatusFor(b.PaymentType); status != "" {
			b.PaymentStatus = status
		}
	}
	return b
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}
