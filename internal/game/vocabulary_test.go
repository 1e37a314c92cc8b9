package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVocabulary_Defaults(t *testing.T) {
	v := NewVocabulary(nil)
	assert.True(t, v.Has("food"))
	assert.Contains(t, v.Categories(), "animal")

	keywords, ok := v.Keywords("food")
	assert.True(t, ok)
	assert.NotEmpty(t, keywords)
}

func TestVocabulary_ConfiguredWords(t *testing.T) {
	v := NewVocabulary(map[string][]string{
		"fruit": {" apple ", "", "pear"},
		"empty": {"  "},
		" ":     {"x"},
	})

	assert.Equal(t, []string{"fruit"}, v.Categories())
	keywords, ok := v.Keywords("fruit")
	assert.True(t, ok)
	assert.Equal(t, []string{"apple", "pear"}, keywords)

	_, ok = v.Keywords("food")
	assert.False(t, ok)
}

func TestVocabulary_ReplaceAndCopy(t *testing.T) {
	v := NewVocabulary(map[string][]string{"fruit": {"apple"}})

	keywords, _ := v.Keywords("fruit")
	keywords[0] = "changed"
	again, _ := v.Keywords("fruit")
	assert.Equal(t, "apple", again[0])

	v.Replace(map[string][]string{"city": {"seoul"}})
	assert.False(t, v.Has("fruit"))
	assert.True(t, v.Has("city"))
}
