// Package shop exercises every accessor shape.
package shop

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order is placed by a Customer.
//
// kmgo:data
type Order struct {
	ID       primitive.ObjectID  `bson:"_id"`
	Customer *Customer           `bson:"customer"`
	Lines    []Line              `bson:"lines"`
	Notes    []string            `json:"notes"`
	Payload  []byte              `bson:"payload"`
	ByRegion map[string]Customer `bson:"byRegion"`
	Totals   map[string]float64  `bson:"totals"`
	Path     string              `bson:"path"`
	Placed   time.Time           `json:"placedAt"`
	Ignored  string              `bson:"-"`
	internal int
}

// kmgo:data
type Customer struct {
	Name string `json:"fullName"`
}

// Line is one ordered item.
//
// kmgo:data
type Line struct {
	SKU string `bson:"sku"`
	Qty int
}

// Draft is exported but not marked.
type Draft struct {
	Note string
}

func (o Order) weight() int { return o.internal }
