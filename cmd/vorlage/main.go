package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hauswerk/vorlage/document"
	"github.com/hauswerk/vorlage/importer"
	"github.com/hauswerk/vorlage/placeholder"
)

const (
	modeParse     = "parse"
	modeValidate  = "validate"
	modeVariables = "variables"
	modeRender    = "render"
	modeImport    = "import"
)

func main() {
	mode := flag.String("mode", modeParse, "Mode: parse|validate|variables|render|import")
	contextFile := flag.String("context", "", "YAML context file for render mode")
	from := flag.String("from", "markdown", "Import source format: markdown|html")
	flat := flag.Bool("flat", false, "Treat input as flat text instead of a document (render mode)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: vorlage [options] <input-file>\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		os.Exit(1)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}

	switch strings.ToLower(strings.TrimSpace(*mode)) {
	case modeParse:
		runParse(data)
	case modeValidate:
		runValidate(data)
	case modeVariables:
		runVariables(data)
	case modeRender:
		runRender(data, *contextFile, *flat)
	case modeImport:
		runImport(data, *from)
	default:
		fmt.Fprintf(os.Stderr, "Unknown mode %q (allowed: parse, validate, variables, render, import)\n", *mode)
		os.Exit(1)
	}
}

func runParse(data []byte) {
	result := document.Parse(string(data))
	for _, warning := range result.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", warning)
	}
	if !result.Success {
		for _, message := range result.Errors {
			fmt.Fprintf(os.Stderr, "Error: %s\n", message)
		}
		os.Exit(1)
	}

	serialized := document.Serialize(result.Content)
	if !serialized.Success {
		for _, message := range serialized.Errors {
			fmt.Fprintf(os.Stderr, "Error: %s\n", message)
		}
		os.Exit(1)
	}
	printPretty([]byte(serialized.Content))
}

func runValidate(data []byte) {
	var decoded interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		fmt.Fprintf(os.Stderr, "Error: input is not valid JSON: %v\n", err)
		os.Exit(1)
	}

	result := document.Validate(decoded)
	for _, warning := range result.Warnings {
		fmt.Fprintf(os.Stderr, "Warning [%s]: %s\n", warning.Code, warning.Message)
	}
	for _, issue := range result.Errors {
		fmt.Fprintf(os.Stderr, "Error [%s]: %s\n", issue.Code, issue.Message)
	}
	if !result.IsValid {
		os.Exit(1)
	}
	fmt.Println("valid")
}

func runVariables(data []byte) {
	parsed := document.Parse(string(data))
	extraction := document.ExtractVariables(parsed.Content)
	for _, warning := range extraction.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", warning)
	}

	out, err := json.MarshalIndent(map[string]interface{}{
		"variables":           extraction.Variables,
		"contextRequirements": document.ContextRequirements(extraction.Variables),
	}, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

func runRender(data []byte, contextFile string, flat bool) {
	var ctx placeholder.Context
	if contextFile != "" {
		raw, err := os.ReadFile(contextFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading context file: %v\n", err)
			os.Exit(1)
		}
		if err := yaml.Unmarshal(raw, &ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing context file: %v\n", err)
			os.Exit(1)
		}
	}

	if flat {
		check := placeholder.ValidateContext(string(data), ctx)
		for _, missing := range check.MissingContext {
			fmt.Fprintf(os.Stderr, "Warning: context is missing %s\n", missing)
		}
		result := placeholder.Process(string(data), ctx)
		for _, unresolved := range result.UnresolvedPlaceholders {
			fmt.Fprintf(os.Stderr, "Warning: unresolved placeholder %s\n", unresolved)
		}
		fmt.Print(result.ProcessedContent)
		return
	}

	parsed := document.Parse(string(data))
	rendered := placeholder.RenderDocument(parsed.Content, ctx)
	for _, unresolved := range rendered.UnresolvedPlaceholders {
		fmt.Fprintf(os.Stderr, "Warning: unresolved placeholder %s\n", unresolved)
	}

	serialized := document.Serialize(rendered.Content)
	if !serialized.Success {
		for _, message := range serialized.Errors {
			fmt.Fprintf(os.Stderr, "Error: %s\n", message)
		}
		os.Exit(1)
	}
	printPretty([]byte(serialized.Content))
}

func runImport(data []byte, from string) {
	var result importer.Result
	var err error

	switch strings.ToLower(strings.TrimSpace(from)) {
	case "markdown", "md":
		result, err = importer.NewMarkdown().Convert(string(data))
	case "html":
		result, err = importer.NewHTML().Convert(string(data))
	default:
		fmt.Fprintf(os.Stderr, "Unknown import format %q (allowed: markdown, html)\n", from)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error importing: %v\n", err)
		os.Exit(1)
	}

	for _, warning := range result.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", warning)
	}

	serialized := document.Serialize(result.Content)
	if !serialized.Success {
		for _, message := range serialized.Errors {
			fmt.Fprintf(os.Stderr, "Error: %s\n", message)
		}
		os.Exit(1)
	}
	printPretty([]byte(serialized.Content))
}

func printPretty(raw []byte) {
	var parsed interface{}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		fmt.Println(string(raw))
		return
	}
	pretty, err := json.MarshalIndent(parsed, "", "  ")
	if err != nil {
		fmt.Println(string(raw))
		return
	}
	fmt.Println(string(pretty))
}
