package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/aio-strategy/internal/client"
	"github.com/bryanwahyu/aio-strategy/internal/report"
)

var formFlags = []struct {
	field string
	flag  string
	usage string
}{
	{"brandName", "brand", "brand name (required)"},
	{"officialUrls", "official-urls", "official site URLs, comma or newline separated"},
	{"additionalUrls", "additional-urls", "other URLs about the brand"},
	{"competitors", "competitors", "competitor names or URLs"},
	{"goal", "goal", "what the brand wants to achieve"},
	{"conditions", "conditions", "constraints to respect"},
	{"extraNotes", "notes", "extra notes; these take priority in the analysis"},
}

var formValues = make(map[string]*string, len(formFlags))

// analyzeCmd submits one brand and prints the report
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Submit a brand for analysis",
	Example: `  aio analyze --brand Acme --goal "be cited by AI search" --token $AIO_TOKEN
  aio analyze --brand Acme --competitors "Globex, Initech" --plain`,
	RunE: runAnalyze,
}

func init() {
	for _, f := range formFlags {
		formValues[f.field] = analyzeCmd.Flags().String(f.flag, "", f.usage)
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	api, err := newAPI()
	if err != nil {
		return err
	}

	sh := client.NewShell(api, func(context.Context) (string, error) { return token, nil })
	sh.OnSignIn = func() {
		fmt.Fprintln(os.Stderr, "Sign in required: pass --token or set AIO_TOKEN (aio token mints a development token).")
	}
	for _, f := range formFlags {
		if err := sh.Set(f.field, *formValues[f.field]); err != nil {
			return err
		}
	}

	fmt.Fprintln(os.Stderr, "Analyzing... this can take up to a minute.")
	if err := sh.Submit(cmd.Context()); err != nil {
		if errors.Is(err, client.ErrSignInRequired) {
			return err
		}
		if msg := sh.Message(); msg != "" {
			return errors.New(msg)
		}
		return err
	}

	doc, id := sh.Result()
	printReport(doc)
	fmt.Fprintf(os.Stderr, "\nSaved as %s\n", id)
	return nil
}

func printReport(doc report.Document) {
	if plain {
		fmt.Print(doc.String())
		return
	}
	fmt.Print(report.Terminal(doc, width))
}
