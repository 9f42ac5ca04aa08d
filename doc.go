// doc.go - Package documentation

// Package kmgo is a typed layer over the official MongoDB Go driver.
//
// Documents are Go structs. Field paths are generated by kmgo-gen and render
// with the naming rules of the mapping strategy the client was configured
// with, so filters and updates built from them always match what the
// collection stores:
//
//	client, err := kmgo.Connect(ctx, cfg)
//	if err != nil {
//	    ...
//	}
//	defer client.Close()
//
//	owners := kmgo.GetCollection[model.Owner](client.DB(""))
//	err = owners.InsertOne(ctx, &model.Owner{Name: "ann"})
//	dogs, err := owners.Find(expr.Eq(model.Owner_.Pet().Kind(), "dog")).
//	    SortBy(expr.Ascending(model.Owner_.Name())).
//	    All(ctx)
//
// Filters and updates may also be relaxed JSON templates:
//
//	owners.UpdateOne(ctx, `{name: 'ann'}`, `{$inc: {age: 1}}`)
package kmgo
