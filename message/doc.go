// Package message converts typed Go values to and from self-describing Arrow
// dense union arrays.
//
// Every participating type has a Codec: scalars map to single-row arrays of
// their native Arrow type, scalar slices to a single-row List, optionals to a
// two-variant union ([none: null, some: T]) and composites to a union with one
// variant per field, all declared in order:
//
//	func (m Metadata) ArrowField(name string) arrow.Field {
//		return message.MakeUnionFields(name, []arrow.Field{
//			message.Option(message.String).Field("name"),
//			message.Uint32.Field("width"),
//		})
//	}
//
// Composite encoders pack their fields with PackStruct; composite decoders
// call UnpackUnion once and then ExtractUnionData for every field. The array
// carries its own field names, so a decoder built from the same schema logic
// can read a buffer produced in another process or language.
//
// Codecs hold no state and are safe for concurrent use.
package message
