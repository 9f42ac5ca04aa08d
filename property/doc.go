// Package property builds dotted document field paths from chains of struct
// fields.
//
// A path is rooted at a document type T and extended one field at a time,
// either through code emitted by kmgo-gen:
//
//	model.Owner_.Pet().Name()      // "pet.name"
//	model.Owner_.Pets().Elem().Name() // "pets.name"
//
// or reflectively:
//
//	pets := property.Of[model.Owner, []model.Pet]("Pets")
//	property.Div[string](pets, "Name") // "pets.name"
//
// Field names follow the codec: an explicit tag name wins over the lowercased
// Go field name. Names resolved for struct fields are cached process-wide;
// literal, positional and map-key steps are recomputed on every call.
package property
