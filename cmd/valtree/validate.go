package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	valtree "github.com/reoring/valtree"
	"github.com/reoring/valtree/declarative"
	"github.com/reoring/valtree/i18n"
)

var validateFlags struct {
	schemaFile string
	selectPath string
	typecast   bool
	format     string
	lang       string
	dateFormat string
}

var validateCmd = &cobra.Command{
	Use:   "validate [FILE]",
	Short: "Validate a JSON document against a schema declaration",
	Long: `Reads a JSON document from FILE (or stdin) and validates it against the
schema declared in --schema. The declaration file may be YAML or JSON.

Exit codes: 0 when the document is valid, 1 when it is invalid, 2 on usage
errors or an invalid schema declaration.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateFlags.schemaFile, "schema", "", "schema declaration file (YAML or JSON)")
	validateCmd.Flags().StringVar(&validateFlags.selectPath, "select", "", "gjson path selecting the sub-document to validate")
	validateCmd.Flags().BoolVar(&validateFlags.typecast, "typecast", false, "coerce string input into the declared types")
	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "error report format (json or text)")
	validateCmd.Flags().StringVar(&validateFlags.lang, "lang", "", "comma-separated locale priorities for error messages")
	validateCmd.Flags().StringVar(&validateFlags.dateFormat, "date-format", "", "Go time layout overriding date/datetime formats")
	_ = validateCmd.MarkFlagRequired("schema")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	s, err := loadSchema(validateFlags.schemaFile)
	if err != nil {
		if decl, ok := declarative.AsDeclarationError(err); ok {
			reportDeclarationError(os.Stderr, decl)
			os.Exit(2)
		}
		return err
	}

	raw, err := readInput(args)
	if err != nil {
		return err
	}
	if validateFlags.selectPath != "" {
		selected := gjson.GetBytes(raw, validateFlags.selectPath)
		if !selected.Exists() {
			return fmt.Errorf("path %q matches nothing in the input document", validateFlags.selectPath)
		}
		raw = []byte(selected.Raw)
	}

	value, err := decodeValue(raw)
	if err != nil {
		return fmt.Errorf("invalid input document: %w", err)
	}

	translations := i18n.Default()
	if validateFlags.lang != "" {
		translations = i18n.Match(strings.Split(validateFlags.lang, ",")...)
	}
	formatter, err := valtree.NewFormatter(validateFlags.format, translations)
	if err != nil {
		return err
	}

	ctx := valtree.Context{}
	if validateFlags.dateFormat != "" {
		ctx["date_format"] = validateFlags.dateFormat
	}

	result := valtree.NewValidator(s).Validate(value, validateFlags.typecast, ctx)
	if !result.IsValid() {
		report, err := result.FormatErrors(formatter)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, report)
		os.Exit(1)
	}

	out, err := json.Marshal(result.Value)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(out))
	return nil
}

// loadSchema parses the declaration file and builds the schema. YAML is a
// superset of JSON here, so one parser covers both.
func loadSchema(path string) (valtree.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var declaration map[string]any
	if err := yaml.Unmarshal(data, &declaration); err != nil {
		return nil, fmt.Errorf("cannot parse schema declaration: %w", err)
	}
	return declarative.Build(normalizeDeclaration(declaration))
}

// normalizeDeclaration forces string keys on every nested mapping. yaml.v3
// already produces map[string]any for most documents, but merge keys and
// non-string scalar keys come through as map[any]any.
func normalizeDeclaration(declaration map[string]any) map[string]any {
	out := make(map[string]any, len(declaration))
	for key, value := range declaration {
		out[key] = normalizeValue(value)
	}
	return out
}

func normalizeValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return normalizeDeclaration(v)
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[fmt.Sprint(key)] = normalizeValue(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return value
	}
}

func readInput(args []string) ([]byte, error) {
	if len(args) == 1 && args[0] != "-" {
		return os.ReadFile(args[0])
	}
	return io.ReadAll(os.Stdin)
}

// decodeValue parses the document with numbers kept as json.Number, so
// integer input survives undamaged and typecasting stays in the engine.
func decodeValue(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	return value, nil
}

func reportDeclarationError(w io.Writer, err *declarative.DeclarationError) {
	fmt.Fprintln(w, "schema declaration is invalid:")
	report, ferr := valtree.NewTextFormatter(i18n.Default()).Format(err.Errors)
	if ferr != nil {
		// Never swallow the diagnosis; the code summary is better than a
		// bare header.
		report = err.Errors.Error()
	}
	fmt.Fprintln(w, report)
}
