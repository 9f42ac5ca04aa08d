// results.go - Modes, write safety, index specs and operation results

package kmgo

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// Mode is the replica-set read preference. The numeric values are the ones
// legacy mgo sessions used.
type Mode int

const (
	Primary            Mode = 2
	PrimaryPreferred   Mode = 3
	Secondary          Mode = 4
	SecondaryPreferred Mode = 5
	Nearest            Mode = 6

	// Legacy aliases.
	Eventual  Mode = 0
	Monotonic Mode = 1
	Strong    Mode = 2
)

// ParseMode parses a read preference name. The empty string is Primary.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "primary":
		return Primary, nil
	case "primarypreferred":
		return PrimaryPreferred, nil
	case "secondary":
		return Secondary, nil
	case "secondarypreferred":
		return SecondaryPreferred, nil
	case "nearest":
		return Nearest, nil
	}
	return Primary, errors.Errorf("unknown read preference %q", s)
}

func (m Mode) readPref() *readpref.ReadPref {
	switch m {
	case PrimaryPreferred:
		return readpref.PrimaryPreferred()
	case Secondary:
		return readpref.Secondary()
	case SecondaryPreferred, Monotonic, Eventual:
		return readpref.SecondaryPreferred()
	case Nearest:
		return readpref.Nearest()
	}
	return readpref.Primary()
}

// Safe is the write concern applied to a client's writes.
type Safe struct {
	W        int    `yaml:"w"`        // servers that must acknowledge the write
	WMode    string `yaml:"wmode"`    // e.g. "majority"; takes precedence over W
	RMode    string `yaml:"rmode"`    // read concern level
	WTimeout int    `yaml:"wtimeout"` // milliseconds
	FSync    bool   `yaml:"fsync"`    // legacy, implies J
	J        bool   `yaml:"j"`        // wait for the journal commit
}

func (s *Safe) writeConcern() *writeconcern.WriteConcern {
	if s == nil {
		return nil
	}
	wc := &writeconcern.WriteConcern{WTimeout: time.Duration(s.WTimeout) * time.Millisecond}
	switch {
	case s.WMode != "":
		wc.W = s.WMode
	case s.W > 0:
		wc.W = s.W
	}
	if s.J || s.FSync {
		j := true
		wc.Journal = &j
	}
	return wc
}

// document is the writeConcern field of commands run directly.
func (s *Safe) document() bson.D {
	if s == nil {
		return nil
	}
	var d bson.D
	switch {
	case s.WMode != "":
		d = append(d, bson.E{Key: "w", Value: s.WMode})
	case s.W > 0:
		d = append(d, bson.E{Key: "w", Value: int32(s.W)})
	}
	if s.J || s.FSync {
		d = append(d, bson.E{Key: "j", Value: true})
	}
	if s.WTimeout > 0 {
		d = append(d, bson.E{Key: "wtimeout", Value: int32(s.WTimeout)})
	}
	return d
}

// ErrNotFound is returned when a single-document read matches nothing.
var ErrNotFound = errors.New("not found")

// Index describes an index in the legacy form: each key is a field name,
// prefixed with "-" for descending order.
type Index struct {
	Key           []string
	Unique        bool
	Background    bool
	Sparse        bool
	PartialFilter bson.M

	// Documents older than ExpireAfter are removed by the server.
	ExpireAfter time.Duration

	// Name is generated by the server when empty.
	Name string

	DefaultLanguage  string
	LanguageOverride string
	Weights          map[string]int

	Collation *Collation
}

func (index Index) keys() bson.D {
	var keys bson.D
	for _, key := range index.Key {
		order := 1
		field := key
		if strings.HasPrefix(key, "-") {
			order = -1
			field = key[1:]
		}
		keys = append(keys, bson.E{Key: field, Value: order})
	}
	return keys
}

func (index Index) options() *options.IndexOptions {
	opts := options.Index().
		SetUnique(index.Unique).
		SetBackground(index.Background).
		SetSparse(index.Sparse)
	if index.Name != "" {
		opts.SetName(index.Name)
	}
	if index.ExpireAfter > 0 {
		opts.SetExpireAfterSeconds(int32(index.ExpireAfter.Seconds()))
	}
	if index.PartialFilter != nil {
		opts.SetPartialFilterExpression(index.PartialFilter)
	}
	if index.DefaultLanguage != "" {
		opts.SetDefaultLanguage(index.DefaultLanguage)
	}
	if index.LanguageOverride != "" {
		opts.SetLanguageOverride(index.LanguageOverride)
	}
	if len(index.Weights) > 0 {
		opts.SetWeights(index.Weights)
	}
	if index.Collation != nil {
		opts.SetCollation(index.Collation.options())
	}
	return opts
}

// Collation specifies language-specific rules for string comparison.
type Collation struct {
	Locale          string `bson:"locale"`
	CaseFirst       string `bson:"caseFirst,omitempty"`
	Strength        int    `bson:"strength,omitempty"`
	Alternate       string `bson:"alternate,omitempty"`
	MaxVariable     string `bson:"maxVariable,omitempty"`
	Normalization   bool   `bson:"normalization,omitempty"`
	CaseLevel       bool   `bson:"caseLevel,omitempty"`
	NumericOrdering bool   `bson:"numericOrdering,omitempty"`
	Backwards       bool   `bson:"backwards,omitempty"`
}

func (c *Collation) options() *options.Collation {
	if c == nil {
		return nil
	}
	return &options.Collation{
		Locale:          c.Locale,
		CaseFirst:       c.CaseFirst,
		Strength:        c.Strength,
		Alternate:       c.Alternate,
		MaxVariable:     c.MaxVariable,
		Normalization:   c.Normalization,
		CaseLevel:       c.CaseLevel,
		NumericOrdering: c.NumericOrdering,
		Backwards:       c.Backwards,
	}
}

// ChangeInfo reports the outcome of an update or delete.
type ChangeInfo struct {
	Updated    int         // documents modified
	Removed    int         // documents removed
	Matched    int         // documents matched, may differ from Updated
	UpsertedId interface{} // _id of an upserted document
}

// BulkResult reports the outcome of a bulk write.
type BulkResult struct {
	Matched  int
	Modified int
	Inserted int
	Upserted int
	Deleted  int

	UpsertedIDs map[int64]interface{}
}

// BuildInfo holds server build details returned by the buildInfo command.
type BuildInfo struct {
	Version        string `bson:"version"`
	VersionArray   []int  `bson:"versionArray"`
	GitVersion     string `bson:"gitVersion"`
	OpenSSLVersion string `bson:"OpenSSLVersion"`
	SysInfo        string `bson:"sysInfo"`
	Bits           int    `bson:"bits"`
	Debug          bool   `bson:"debug"`
	MaxObjectSize  int    `bson:"maxBsonObjectSize"`
}

// VersionAtLeast reports whether the server version is at least version.
func (bi *BuildInfo) VersionAtLeast(version ...int) bool {
	for i, v := range version {
		if i >= len(bi.VersionArray) {
			return false
		}
		if bi.VersionArray[i] > v {
			return true
		}
		if bi.VersionArray[i] < v {
			return false
		}
	}
	return true
}

// Change is the modification applied by Query.Apply.
type Change struct {
	Update    interface{} // update document, expr.Doc, template string or struct
	Upsert    bool        // insert the document when nothing matches
	Remove    bool        // remove the matched document instead of updating it
	ReturnNew bool        // return the modified rather than the original document
}
