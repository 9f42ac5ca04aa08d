// Package model holds sample mapped types used by the examples and tests.
package model

//go:generate go run github.com/kinfkong/kmgo/cmd/kmgo-gen .

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Owner keeps pets.
//
// kmgo:data
type Owner struct {
	ID      primitive.ObjectID `bson:"_id,omitempty"`
	Name    string             `bson:"name"`
	Nick    string             `bson:"nickname,omitempty" json:"nick"`
	Email   string             `json:"mail"`
	Age     int                `bson:"age"`
	Pet     Pet                `bson:"pet"`
	Pets    []Pet              `bson:"pets"`
	Tags    []string           `bson:"tags"`
	Scores  map[string]int     `bson:"scores"`
	Address *Address           `bson:"address,omitempty"`
	Audit   `bson:",inline"`
}

// Pet belongs to an Owner.
//
// kmgo:data
type Pet struct {
	Name      string `bson:"name"`
	Kind      string `bson:"species"`
	BirthYear int
}

// Address is stored without tags, under lowercased field names.
//
// kmgo:data
type Address struct {
	Street string
	City   string
}

// Audit is inlined into the documents that embed it.
//
// kmgo:data
type Audit struct {
	CreatedAt time.Time `bson:"createdAt"`
	Version   int       `bson:"v"`
}

// Account uses a string id generated on insert.
type Account struct {
	ID    string `bson:"_id"`
	Login string `bson:"login"`
}

// Counter uses an id type no generator supports.
type Counter struct {
	ID    int `bson:"_id"`
	Value int `bson:"value"`
}
