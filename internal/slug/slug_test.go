package slug

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlugify_LowercasesAndHyphenates(t *testing.T) {
	require.Equal(t, "hello-world", Slugify("Hello World"))
}

func TestSlugify_CollapsesWhitespaceRuns(t *testing.T) {
	require.Equal(t, "a-b-c", Slugify("a \t b\n c"))
}

func TestSlugify_StripsPunctuation(t *testing.T) {
	require.Equal(t, "gos-stdlib-v2", Slugify("Go's stdlib, v2!"))
}

func TestSlugify_CollapsesRepeatedHyphens(t *testing.T) {
	require.Equal(t, "a-b", Slugify("a --- b"))
}

func TestSlugify_TrimsEdgeHyphens(t *testing.T) {
	require.Equal(t, "middle", Slugify("--middle--"))
}

func TestSlugify_KeepsCJKIdeographs(t *testing.T) {
	require.Equal(t, "中文-post", Slugify("中文 Post"))
	require.Equal(t, "秘密", Slugify("秘密"))
}

func TestSlugify_Idempotent(t *testing.T) {
	labels := []string{
		"Hello World",
		"Go's stdlib, v2!",
		"中文 Post",
		"  --weird -- input--  ",
		"",
	}
	for _, label := range labels {
		once := Slugify(label)
		require.Equal(t, once, Slugify(once), "label %q", label)
	}
}

func TestNormalizeBase_AddsLeadingAndTrailingSlash(t *testing.T) {
	require.Equal(t, "/blog/", NormalizeBase("blog"))
	require.Equal(t, "/blog/", NormalizeBase("/blog"))
	require.Equal(t, "/blog/", NormalizeBase("blog/"))
	require.Equal(t, "/blog/", NormalizeBase("/blog/"))
}

func TestNormalizeBase_EmptyBecomesRoot(t *testing.T) {
	require.Equal(t, "/", NormalizeBase(""))
	require.Equal(t, "/", NormalizeBase("/"))
}
