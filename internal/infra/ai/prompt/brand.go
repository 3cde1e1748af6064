package prompt

import (
	"fmt"
	"strings"

	"github.com/bryanwahyu/aio-strategy/internal/domain/analysis"
)

// Unspecified replaces any empty input field in the prompt.
const Unspecified = "unspecified"

// Sections lists the report structure, in order. The model must produce all seven.
var Sections = []string{
	"Background: explain how generative AI assistants such as ChatGPT, Gemini and Perplexity are becoming a primary way people search, and why being chosen as a source those assistants cite matters.",
	"Current-state analysis of the target brand: organise the strengths and weaknesses that can be read from its official site and press releases.",
	"Comparison with competitors: make the differences against the named brands explicit and compare how likely each is to be referenced by AI.",
	"Requirements for being chosen by AI: a checklist covering authority, ease of citation, structured data and entity design.",
	"Optimisation priorities by goal: rank tactics according to the acquisition goal (awareness, conversions, hiring and so on).",
	"Risk analysis: organise risk factors such as the industry environment, regulation and intensifying competition.",
	"Concrete execution plan: a step-by-step task list that anyone can carry out.",
}

const preamble = `You are a consultant specialising in AI search optimisation (AIO/LLMO) strategy.
Using the company and brand information provided, write a highly detailed report with the following structure.

[Report structure]
%s
[Strict output rules]
- Never use the symbols "*" or "**" (not for bullet points, not for emphasis).
- Do not include code fragments such as JSON-LD, HTML or program code.
- Write everything as natural-language prose.
- Aim for long, detailed output.
`

const reminders = `[Strict instructions]
- Make the output extremely detailed and long.
- Do not use the symbols "*" or "**" anywhere: not in sentences, not in bullet points, not for emphasis.
- Do not include any code fragments such as JSON-LD, HTML or program code. Write every step as concrete natural-language instructions that a non-specialist can follow.
- For "7) Concrete execution plan", describe the work procedure in words anyone can understand.
- If additional requirements (item 7 of the input) are given, reflect them in the analysis with top priority.
`

// Build renders the full prompt for one analysis. It is pure: the same
// input always yields the same bytes.
func Build(in analysis.Input) string {
	var sections strings.Builder
	for i, s := range Sections {
		fmt.Fprintf(&sections, "%d) %s\n", i+1, s)
	}

	var b strings.Builder
	fmt.Fprintf(&b, preamble, sections.String())
	b.WriteString("\nBased on the input below, write the AI search optimisation (AIO/LLMO) strategy analysis report.\n\n")
	b.WriteString("Analysis target:\n")
	fields := []struct{ label, value string }{
		{"Target brand", in.BrandName},
		{"Official URLs", in.OfficialURLs},
		{"Supplementary material / news", in.AdditionalURLs},
		{"Brands to compare against", in.Competitors},
		{"Acquisition goal", in.Goal},
		{"Industry conditions", in.Conditions},
		{"Additional requirements from the user", in.ExtraNotes},
	}
	for i, f := range fields {
		fmt.Fprintf(&b, "%d) %s: %s\n", i+1, f.label, orUnspecified(f.value))
	}
	b.WriteString("\n")
	b.WriteString(reminders)
	return b.String()
}

func orUnspecified(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return Unspecified
	}
	return v
}
