package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bryanwahyu/aio-strategy/internal/domain/analysis"
)

func TestBuild_Deterministic(t *testing.T) {
	in := analysis.Input{
		BrandName:    "Acme",
		OfficialURLs: "https://acme.example\nhttps://acme.example/news",
		Competitors:  "Globex, Initech",
		ExtraNotes:   "Focus on hiring.",
	}
	assert.Equal(t, Build(in), Build(in))
}

func TestBuild_EmptyFieldsUseSentinel(t *testing.T) {
	out := Build(analysis.Input{BrandName: "Acme"})

	assert.Contains(t, out, "1) Target brand: Acme\n")
	for _, label := range []string{
		"2) Official URLs",
		"3) Supplementary material / news",
		"4) Brands to compare against",
		"5) Acquisition goal",
		"6) Industry conditions",
		"7) Additional requirements from the user",
	} {
		assert.Contains(t, out, label+": "+Unspecified+"\n")
	}
}

func TestBuild_WhitespaceCountsAsEmpty(t *testing.T) {
	out := Build(analysis.Input{BrandName: "Acme", Goal: "   \n"})
	assert.Contains(t, out, "5) Acquisition goal: unspecified\n")
}

func TestBuild_SectionsInOrder(t *testing.T) {
	out := Build(analysis.Input{BrandName: "Acme"})
	assert.Len(t, Sections, 7)

	last := -1
	for i, s := range Sections {
		idx := strings.Index(out, s)
		assert.Greater(t, idx, last, "section %d out of order", i+1)
		last = idx
	}
}

func TestBuild_ExtraNotesPriorityAndRules(t *testing.T) {
	out := Build(analysis.Input{BrandName: "Acme", ExtraNotes: "Compare pricing pages"})

	assert.Contains(t, out, "7) Additional requirements from the user: Compare pricing pages")
	assert.Contains(t, out, "top priority")
	assert.Contains(t, out, "JSON-LD")
	assert.GreaterOrEqual(t, strings.Count(out, `"**"`), 2, "emphasis ban must be restated")
}
