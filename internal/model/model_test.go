package model

import (
	"reflect"
	"testing"
)

// The schema relies on plain unique indexes (username, token, user_id,
// title, name). A gorm soft-delete column would keep deleted rows inside
// those indexes, so a re-login could not store its replacement refresh
// token and a deleted username could never be registered again. Deletes
// here must be hard, which means no model may carry a DeletedAt field.
func TestModelsHaveNoSoftDeleteColumn(t *testing.T) {
	models := []interface{}{
		User{},
		RefreshToken{},
		BlogPost{},
		Tag{},
		MediaFile{},
	}

	for _, m := range models {
		typ := reflect.TypeOf(m)
		if _, found := typ.FieldByName("DeletedAt"); found {
			t.Errorf("%s has a DeletedAt field; deletes would be soft and dead rows would stay in the unique indexes", typ.Name())
		}
	}
}
