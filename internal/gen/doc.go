// Package gen generates typed path accessors for mapped struct types.
//
// A struct is mapped when its doc comment carries the kmgo:data directive:
//
//	// Owner keeps pets.
//	//
//	// kmgo:data
//	type Owner struct { ... }
//
// For each mapped struct the generated file declares one property descriptor
// per stored field, an OwnerPath[T] type with one accessor per field and an
// Owner_ root value. Fields holding other mapped structs, slices of them or
// maps of them return the nested path types, so that Owner_.Pets().Elem().Name()
// resolves to "pets.name".
package gen
