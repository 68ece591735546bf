package object

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"scryfall/internal/record"
)

// ── Variants ───────────────────────────────────────────────
// Every API payload that can be decoded on its own carries an "object"
// field naming its shape. Decode turns a Record into the matching
// variant, or into Unknown when nothing is registered for it.

// DiscriminatorKey is the field whose value selects the variant.
const DiscriminatorKey = "object"

// Kind is a discriminator value.
type Kind string

const (
	KindError   Kind = "error"
	KindList    Kind = "list"
	KindUnknown Kind = ""
)

// Object is implemented by every decoded variant.
type Object interface {
	Kind() Kind
	Record() record.Record
}

// Constructor builds a variant from its record. Constructors must not
// fail: malformed fields resolve to their accessor defaults.
type Constructor func(rec record.Record) Object

var (
	ErrUnknownKind     = errors.New("unknown object kind")
	ErrTypeMismatch    = errors.New("object kind mismatch")
	ErrClosed          = errors.New("collection is closed")
	ErrNoMorePages     = errors.New("collection has no more pages")
	ErrMissingNextPage = errors.New("has_more without next_page")
)

// ── Registry ───────────────────────────────────────────────
// Registration via init() in each variant file.

var (
	registryMu sync.RWMutex
	registry   = map[Kind]Constructor{}
)

// RegisterKind adds a constructor for kind. It panics on an empty or
// duplicate kind, and on "error", which Decode handles itself.
func RegisterKind(kind Kind, ctor Constructor) {
	if kind == KindUnknown {
		panic("object: RegisterKind with empty kind")
	}
	if kind == KindError {
		panic("object: kind \"error\" is reserved")
	}
	if ctor == nil {
		panic(fmt.Sprintf("object: nil constructor for %q", kind))
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[kind]; dup {
		panic(fmt.Sprintf("object: kind %q registered twice", kind))
	}
	registry[kind] = ctor
}

// Kinds returns the registered kinds, sorted.
func Kinds() []Kind {
	registryMu.RLock()
	defer registryMu.RUnlock()
	kinds := make([]Kind, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

func lookup(kind Kind) (Constructor, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	ctor, ok := registry[kind]
	return ctor, ok
}

// ── Decoding ───────────────────────────────────────────────

// Decode returns the variant for rec. Error records always decode to
// *Error, ahead of the registry. A missing or unregistered
// discriminator yields *Unknown.
func Decode(rec record.Record) Object {
	kind := Kind(rec.String(DiscriminatorKey))
	if kind == KindError {
		return NewError(rec)
	}
	if kind == KindUnknown {
		return &Unknown{rec: rec}
	}
	ctor, ok := lookup(kind)
	if !ok {
		return &Unknown{rec: rec, Discriminator: string(kind)}
	}
	return ctor(rec)
}

// DecodeAs decodes rec and asserts the result is a T.
//
// An error record is returned as the error itself (an *Error), so callers
// can inspect it with AsError or errors.As. Records of no known kind wrap
// ErrUnknownKind; records of another known kind wrap ErrTypeMismatch.
func DecodeAs[T Object](rec record.Record) (T, error) {
	var zero T
	obj := Decode(rec)
	if v, ok := obj.(T); ok {
		return v, nil
	}
	switch o := obj.(type) {
	case *Error:
		return zero, o
	case *Unknown:
		return zero, fmt.Errorf("decode %T: %w %q", zero, ErrUnknownKind, o.Discriminator)
	default:
		return zero, fmt.Errorf("decode %T: %w: got %q", zero, ErrTypeMismatch, obj.Kind())
	}
}

// Unknown is a record whose discriminator matched no registered kind.
type Unknown struct {
	rec record.Record

	// Discriminator is the value seen in the record, "" if absent.
	Discriminator string
}

func (u *Unknown) Kind() Kind            { return KindUnknown }
func (u *Unknown) Record() record.Record { return u.rec }
