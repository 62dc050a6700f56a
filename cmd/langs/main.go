// Command langs prints the execution catalog: every language the
// server can run, how it is launched, and its deadline. Useful when
// checking which interpreters and compilers a host must provide.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/olekukonko/tablewriter"

	"code-lab/lang"
)

type Options struct {
	// LANGS_COLOURS enables colorized output for better readability
	Colours bool `envconfig:"LANGS_COLOURS" default:"true"`
}

func main() {
	var opts Options
	if err := envconfig.Process("", &opts); err != nil {
		fmt.Fprintf(os.Stderr, "options: %v\n", err)
		os.Exit(2)
	}

	header := "  ====== Supported languages ======"
	if opts.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	fmt.Println(header)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Name", "Mode", "Extensions", "Timeout"})
	for _, spec := range lang.All() {
		table.Append([]string{
			spec.ID,
			spec.DisplayName,
			string(spec.Mode),
			strings.Join(spec.Extensions, " "),
			spec.Timeout.String(),
		})
	}
	table.Render()
}
