// writemodel.go - JSON bulk write requests

package query

import (
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
)

// WriteModels parses a JSON array of bulk write requests such as
//
//	[{insertOne: {document: {name: 'ann'}}},
//	 {updateOne: {filter: {name: 'bob'}, update: {$set: {age: 3}}, upsert: true}},
//	 {deleteMany: {filter: {}}}]
func WriteModels(s string) ([]mongodrv.WriteModel, error) {
	docs, err := ParseList(s)
	if err != nil {
		return nil, err
	}
	models := make([]mongodrv.WriteModel, 0, len(docs))
	for _, d := range docs {
		m, err := writeModel(d)
		if err != nil {
			return nil, err
		}
		models = append(models, m)
	}
	return models, nil
}

func writeModel(d bson.D) (mongodrv.WriteModel, error) {
	if len(d) != 1 {
		return nil, errors.Errorf("write model must have exactly one key: %v", d)
	}
	kind := d[0].Key
	args, ok := d[0].Value.(bson.D)
	if !ok {
		return nil, errors.Errorf("%s arguments must be a document", kind)
	}

	switch kind {
	case "insertOne":
		return mongodrv.NewInsertOneModel().SetDocument(value(args, "document")), nil
	case "updateOne":
		return mongodrv.NewUpdateOneModel().
			SetFilter(filterOf(args)).
			SetUpdate(value(args, "update")).
			SetUpsert(flag(args, "upsert")), nil
	case "updateMany":
		return mongodrv.NewUpdateManyModel().
			SetFilter(filterOf(args)).
			SetUpdate(value(args, "update")).
			SetUpsert(flag(args, "upsert")), nil
	case "replaceOne":
		return mongodrv.NewReplaceOneModel().
			SetFilter(filterOf(args)).
			SetReplacement(value(args, "replacement")).
			SetUpsert(flag(args, "upsert")), nil
	case "deleteOne":
		return mongodrv.NewDeleteOneModel().SetFilter(filterOf(args)), nil
	case "deleteMany":
		return mongodrv.NewDeleteManyModel().SetFilter(filterOf(args)), nil
	}
	return nil, errors.Errorf("unknown write model : %s", kind)
}

func value(d bson.D, key string) interface{} {
	for _, e := range d {
		if e.Key == key {
			return e.Value
		}
	}
	return nil
}

func filterOf(d bson.D) interface{} {
	if f := value(d, "filter"); f != nil {
		return f
	}
	return bson.D{}
}

func flag(d bson.D, key string) bool {
	b, _ := value(d, key).(bool)
	return b
}
