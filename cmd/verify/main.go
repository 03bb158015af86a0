// Package main provides the offline content verification tool.
//
// Usage:
//
//	verify            # check the content compiled into the binary
//	verify path.yaml  # check a draft document before committing it
package main

import (
	"fmt"
	"os"

	"github.com/garyellow/itdept-site/internal/content"
)

type verifyResult struct {
	name   string
	passed bool
	errs   []error
}

func main() {
	fmt.Println("IT Department Site - Content Verification")
	fmt.Println("=========================================")

	data := content.Embedded()
	source := "embedded content.yaml"
	if len(os.Args) > 1 {
		var err error
		if data, err = os.ReadFile(os.Args[1]); err != nil {
			fmt.Printf("FAIL read %s: %v\n", os.Args[1], err)
			os.Exit(1)
		}
		source = os.Args[1]
	}
	fmt.Printf("Source: %s\n\n", source)

	c, err := content.Decode(data)
	if err != nil {
		fmt.Printf("FAIL decode: %v\n", err)
		os.Exit(1)
	}

	results := make([]verifyResult, 0, len(content.Rules())+1)
	for _, rule := range content.Rules() {
		errs := rule.Check(c)
		results = append(results, verifyResult{name: rule.Name, passed: len(errs) == 0, errs: errs})
	}
	results = append(results, verifyMarkdown(c))

	failed := 0
	for _, r := range results {
		status := "PASS"
		if !r.passed {
			status = "FAIL"
			failed++
		}
		fmt.Printf("%s %s\n", status, r.name)
		for _, err := range r.errs {
			fmt.Printf("     - %v\n", err)
		}
	}

	fmt.Printf("\nSummary: %d passed, %d failed\n", len(results)-failed, failed)
	fmt.Println(summarize(c))

	if failed > 0 {
		os.Exit(1)
	}
}

// verifyMarkdown renders every description the page will show.
func verifyMarkdown(c *content.Content) verifyResult {
	var errs []error
	for i, n := range c.News {
		if _, err := content.RenderMarkdown(n.Description); err != nil {
			errs = append(errs, fmt.Errorf("news[%d].description: %w", i, err))
		}
	}
	for i, e := range c.Events {
		if _, err := content.RenderMarkdown(e.Description); err != nil {
			errs = append(errs, fmt.Errorf("events[%d].description: %w", i, err))
		}
	}
	return verifyResult{name: "markdown", passed: len(errs) == 0, errs: errs}
}

func summarize(c *content.Content) string {
	counts := c.Counts()
	out := "Items:"
	for _, id := range content.Regions() {
		out += fmt.Sprintf(" %s=%d", id, counts[id])
	}
	return out
}
