package diffstore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codepathfinder/prreview/internal/diffstore"
)

func TestCanonicalize(t *testing.T) {
	cases := map[string]string{
		"a/src/main.go":  "src/main.go",
		"b/src/main.go":  "src/main.go",
		"./src/main.go":  "src/main.go",
		"/src/main.go":   "src/main.go",
		"src/main.go":    "src/main.go",
	}
	for in, want := range cases {
		assert.Equal(t, want, diffstore.Canonicalize(in), "input %q", in)
	}
}

func TestValidateRef_RejectsOptionInjection(t *testing.T) {
	err := diffstore.ValidateRef("--upload-pack=evil")
	assert.Error(t, err)
}

func TestValidateRef_RejectsShellMetacharacters(t *testing.T) {
	err := diffstore.ValidateRef("main;rm -rf /")
	assert.Error(t, err)
}

func TestValidateRef_AcceptsNormalRef(t *testing.T) {
	assert.NoError(t, diffstore.ValidateRef("origin/main"))
	assert.NoError(t, diffstore.ValidateRef("HEAD~1"))
	assert.NoError(t, diffstore.ValidateRef("abc123"))
}

func TestValidatePath_RejectsTraversal(t *testing.T) {
	err := diffstore.ValidatePath("../../etc/passwd")
	assert.Error(t, err)
}

func TestValidatePath_AcceptsNormalPath(t *testing.T) {
	assert.NoError(t, diffstore.ValidatePath("src/main.go"))
}
