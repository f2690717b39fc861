package validator

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/shrek82/minorm/model"
)

type person struct {
	model.Entity `jorm:"table:person"`
	ID           int64 `jorm:"pk"`
	Name         string
	CreatedAt    time.Time `jorm:"column:created_at"`
}

type unmarked struct {
	ID int64 `jorm:"pk"`
}

type noID struct {
	model.Entity
	Name string
}

type twoIDs struct {
	model.Entity
	ID    int64 `jorm:"pk"`
	Other int64 `jorm:"pk"`
}

type needsFactory struct {
	model.Entity `jorm:"factory"`
	ID           int64 `jorm:"pk"`
	cache        map[string]string
}

type registered struct {
	model.Entity `jorm:"factory"`
	ID           int64 `jorm:"pk"`
	cache        map[string]string
}

type notEntityNoID struct {
	Name string
}

func TestValidate(t *testing.T) {
	model.RegisterFactory(func() *registered {
		return &registered{cache: make(map[string]string)}
	})

	tests := []struct {
		name   string
		typ    reflect.Type
		reason error
	}{
		{"valid", reflect.TypeOf(person{}), nil},
		{"valid pointer", reflect.TypeOf(&person{}), nil},
		{"registered factory", reflect.TypeOf(registered{}), nil},
		{"not an entity", reflect.TypeOf(unmarked{}), ErrNotEntity},
		{"not a struct", reflect.TypeOf(0), ErrNotEntity},
		{"first failure wins", reflect.TypeOf(notEntityNoID{}), ErrNotEntity},
		{"missing id", reflect.TypeOf(noID{}), ErrMissingID},
		{"ambiguous id", reflect.TypeOf(twoIDs{}), ErrAmbiguousID},
		{"no default constructor", reflect.TypeOf(needsFactory{}), ErrNoDefaultConstructor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.typ)
			if tt.reason == nil {
				if err != nil {
					t.Fatalf("Expected valid, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.reason) {
				t.Fatalf("Expected %v, got %v", tt.reason, err)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Expected *ValidationError, got %T", err)
			}
			if !strings.Contains(err.Error(), tt.reason.Error()) {
				t.Errorf("Message %q should mention %q", err.Error(), tt.reason)
			}
		})
	}
}

func TestValidateWrapsMetadataError(t *testing.T) {
	err := Validate(reflect.TypeOf(twoIDs{}))
	var me *model.MetadataError
	if !errors.As(err, &me) {
		t.Fatalf("Expected MetadataError in chain, got %v", err)
	}
	if !errors.Is(err, model.ErrAmbiguousID) {
		t.Errorf("Expected model.ErrAmbiguousID in chain")
	}
}

func TestValidateNil(t *testing.T) {
	if err := Validate(nil); !errors.Is(err, ErrNotEntity) {
		t.Errorf("Expected ErrNotEntity for nil type, got %v", err)
	}
}
