package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// OutputFormat selects how command results are printed.
type OutputFormat string

const (
	// FormatText prints an aligned table.
	FormatText OutputFormat = "text"
	// FormatJSON prints indented JSON.
	FormatJSON OutputFormat = "json"
	// FormatYAML prints YAML in the route file layout.
	FormatYAML OutputFormat = "yaml"
)

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(s); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", NewConfigError("output", fmt.Sprintf("unsupported format %q (text, json, yaml)", s))
	}
}

// WriteRoutes prints a route table (service name -> base URL) sorted by
// name.
func WriteRoutes(w io.Writer, format OutputFormat, routes map[string]string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"count": len(routes), "providers": routes})
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(map[string]any{"providers": routes}); err != nil {
			return err
		}
		return enc.Close()
	default:
		names := make([]string, 0, len(routes))
		for name := range routes {
			names = append(names, name)
		}
		sort.Strings(names)

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "SERVICE\tBASE URL")
		for _, name := range names {
			fmt.Fprintf(tw, "%s\t%s\n", name, routes[name])
		}
		return tw.Flush()
	}
}
