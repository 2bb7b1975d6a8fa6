package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeMaps_SecondMapWins(t *testing.T) {
	result := MergeMaps(
		map[string]string{"a": "1", "b": "2"},
		map[string]string{"b": "3", "c": "4"},
	)
	assert.Equal(t, map[string]string{"a": "1", "b": "3", "c": "4"}, result)
}

func TestMergeMaps_HandlesNilInputs(t *testing.T) {
	assert.Equal(t, map[string]string{}, MergeMaps(nil, nil))
	assert.Equal(t, map[string]string{"a": "1"}, MergeMaps(nil, map[string]string{"a": "1"}))
}

func TestDeepCopy(t *testing.T) {
	original := map[string]string{"a": "1"}
	copied := DeepCopy(original)

	copied["a"] = "changed"
	assert.Equal(t, "1", original["a"])
}

func TestDeepCopy_PreservesNil(t *testing.T) {
	assert.Nil(t, DeepCopy(nil))
}
