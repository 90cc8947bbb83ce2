// Package serializer converts request and response values between native Go
// types and their wire representation.
//
// Serialize runs over request data before the adapter encodes it, replacing
// registered types (time.Time, decimal.Decimal) with wire values. Deserialize
// is invoked by name from an executor, for example:
//
//	s := serializer.NewSimple()
//	v, err := s.Deserialize("to_datetime", "2024-05-01T10:00:00Z", nil)
//
// Custom serializers embed or wrap *Base and register their own encoders and
// decoders.
package serializer
