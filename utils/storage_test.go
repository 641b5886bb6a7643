package utils

import (
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileKey(t *testing.T) {
	tests := map[string]string{
		"https://cdn.test/attachments/notes.pdf":         "notes.pdf",
		"https://cdn.test/attachments/notes.pdf?dl=1":    "notes.pdf",
		"https://cdn.test/attachments/notes.pdf#page=2":  "notes.pdf",
		"https://cdn.test/attachments/folder/":           "folder",
		"https://utfs.io/f/2e0fdb64-9957-4262-8e45-f372": "2e0fdb64-9957-4262-8e45-f372",
	}
	for in, want := range tests {
		assert.Equal(t, want, FileKey(in), in)
	}
}

func TestObjectName(t *testing.T) {
	a := ObjectName("Lesson 1.MP4")
	b := ObjectName("Lesson 1.MP4")
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, ".mp4"), a)
	assert.Len(t, ObjectName("noext"), 36)
}

func TestParseSupabaseObjectURL(t *testing.T) {
	bucket, object, err := parseSupabaseObjectURL("https://x.supabase.co/storage/v1/object/public/uploads/videos/a%20b.mp4?t=1")
	require.NoError(t, err)
	assert.Equal(t, "uploads", bucket)
	assert.Equal(t, "videos/a b.mp4", object)

	bucket, object, err = parseSupabaseObjectURL("https://x.supabase.co/storage/v1/object/uploads/images/c.png")
	require.NoError(t, err)
	assert.Equal(t, "uploads", bucket)
	assert.Equal(t, "images/c.png", object)

	_, _, err = parseSupabaseObjectURL("https://cdn.test/images/c.png")
	assert.Error(t, err)
	_, _, err = parseSupabaseObjectURL("https://x.supabase.co/storage/v1/object/public/uploads")
	assert.Error(t, err)
}

func TestPriceValidator(t *testing.T) {
	v := Validator()
	for _, ok := range []float64{0, 1, 19.99, 0.1, 1000000} {
		assert.NoError(t, v.Var(ok, "price"), ok)
	}
	for _, bad := range []float64{-0.01, 1.234} {
		assert.Error(t, v.Var(bad, "price"), bad)
	}
}

func TestValidatorIsShared(t *testing.T) {
	var first, second *validator.Validate
	assert.NotPanics(t, func() {
		first = Validator()
		second = Validator()
	})
	assert.Same(t, first, second)
	assert.NoError(t, second.Var(2.5, "price"), "custom tag stays registered")
}
