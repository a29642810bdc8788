package models

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The dashboard samples by genre overlap (genre && ?), which needs a GIN
// index on the array column of both catalog tables.
func TestGenreColumnsDeclareGinIndex(t *testing.T) {
	for _, model := range []any{ReviewedBook{}, CustomBook{}} {
		field, ok := reflect.TypeOf(model).FieldByName("Genre")
		require.True(t, ok)

		tag := field.Tag.Get("gorm")
		assert.Contains(t, tag, "type:text[]", "%T genre column", model)
		assert.Contains(t, tag, "type:gin", "%T genre index", model)
	}
}

func TestTruncateGenresCapsList(t *testing.T) {
	genres := []string{"fantasy", "history", "horror", "poetry", "romance"}

	truncated := truncateGenres(genres)
	assert.Len(t, truncated, MaxGenres)
	assert.Equal(t, genres[:MaxGenres], truncated)

	short := []string{"fantasy"}
	assert.Equal(t, short, truncateGenres(short))
}

func TestCustomBookToDetailsAlwaysCustomSource(t *testing.T) {
	book := &CustomBook{
		BookKey: "custom-1",
		Title:   "Field Notes",
		Author:  "A. Author",
		Genre:   []string{"nature"},
	}

	details := book.ToDetails()
	assert.Equal(t, SourceCustom, details.Source)
	assert.Equal(t, "custom-1", details.BookKey)
}
