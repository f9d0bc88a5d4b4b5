package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/law-makers/catalogsync/internal/ui"
)

// helpWidth is the column descriptions are wrapped at
const helpWidth = 80

// minFlagColumn keeps short flag lists aligned with the long ones
const minFlagColumn = 28

type helpPage struct {
	w   io.Writer
	cmd *cobra.Command
}

func renderHelp(cmd *cobra.Command, _ []string) {
	p := helpPage{w: cmd.OutOrStdout(), cmd: cmd}

	fmt.Fprintf(p.w, "\n%s\n", ui.Paint(strings.ToUpper(cmd.Name()), ui.StyleBold, ui.Cyan))
	if cmd.Short != "" {
		fmt.Fprintln(p.w, cmd.Short)
	}
	if cmd.Long != "" && cmd.Long != cmd.Short {
		fmt.Fprintf(p.w, "\n%s\n", wrapText(cmd.Long, helpWidth))
	}

	p.usage()
	p.examples()
	p.commands()
	p.flags("Flags", cmd.LocalFlags(), cmd.HasAvailableLocalFlags())
	p.flags("Global Flags", cmd.InheritedFlags(), cmd.HasAvailableInheritedFlags())
	p.footer()
	fmt.Fprintln(p.w)
}

func renderUsage(cmd *cobra.Command) error {
	p := helpPage{w: cmd.ErrOrStderr(), cmd: cmd}

	p.usage()
	p.commands()
	p.flags("Flags", cmd.LocalFlags(), cmd.HasAvailableLocalFlags())
	p.footer()
	return nil
}

func (p helpPage) section(title string) {
	fmt.Fprintf(p.w, "\n%s\n", ui.Heading(title))
}

func (p helpPage) usage() {
	p.section("Usage")
	if p.cmd.Runnable() {
		fmt.Fprintf(p.w, "  %s\n", ui.Command(p.cmd.UseLine()))
	}
	if p.cmd.HasAvailableSubCommands() {
		fmt.Fprintf(p.w, "  %s %s %s\n",
			ui.Command(p.cmd.CommandPath()), ui.Warn("<command>"), ui.Muted("[flags]"))
	}
}

// examples prints "# comment" lines muted and everything else as a shell
// prompt, with a blank line before each comment that follows a command.
func (p helpPage) examples() {
	if !p.cmd.HasExample() {
		return
	}
	p.section("Examples")

	afterCommand := false
	for _, line := range strings.Split(p.cmd.Example, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "#"):
			if afterCommand {
				fmt.Fprintln(p.w)
			}
			fmt.Fprintf(p.w, "  %s\n", ui.Muted(line))
			afterCommand = false
		default:
			fmt.Fprintf(p.w, "  %s\n", ui.Flag("$ "+line))
			afterCommand = true
		}
	}
}

func (p helpPage) commands() {
	if !p.cmd.HasAvailableSubCommands() {
		return
	}
	p.section("Commands")

	var visible []*cobra.Command
	width := 0
	for _, c := range p.cmd.Commands() {
		if !c.IsAvailableCommand() || c.Name() == "help" {
			continue
		}
		visible = append(visible, c)
		width = max(width, len(c.Name()))
	}
	for _, c := range visible {
		fmt.Fprintf(p.w, "  %s%s%s\n",
			ui.Command(c.Name()), strings.Repeat(" ", width-len(c.Name())+2), ui.Muted(c.Short))
	}
}

func (p helpPage) flags(title string, set *pflag.FlagSet, show bool) {
	if !show {
		return
	}
	p.section(title)
	printFlagsTo(p.w, set.FlagUsages())
}

func (p helpPage) footer() {
	target := ui.Command(p.cmd.CommandPath())
	if p.cmd.HasAvailableSubCommands() {
		target += " " + ui.Warn("<command>")
	}
	fmt.Fprintf(p.w, "\n%s %s %s %s\n",
		ui.Muted("Use"), target, ui.Flag("--help"), ui.Muted("for more information."))
}

// printFlagsTo re-aligns pflag's usage block: flag names in one column,
// descriptions (and their continuation lines) in the next.
func printFlagsTo(w io.Writer, usages string) {
	type row struct{ flag, desc string }
	var rows []row
	column := minFlagColumn

	for _, line := range strings.Split(usages, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(trimmed, "-") {
			rows = append(rows, row{desc: trimmed})
			continue
		}
		name, desc, _ := strings.Cut(trimmed, "  ")
		rows = append(rows, row{flag: name, desc: strings.TrimSpace(desc)})
		column = max(column, len(name))
	}

	for _, r := range rows {
		if r.flag == "" {
			fmt.Fprintf(w, "%s%s\n", strings.Repeat(" ", column+4), ui.Muted(r.desc))
			continue
		}
		fmt.Fprintf(w, "  %s%s%s\n", ui.Flag(r.flag), strings.Repeat(" ", column-len(r.flag)+2), ui.Muted(r.desc))
	}
}

// wrapText wraps prose at width. Paragraphs and list items keep their own lines.
func wrapText(text string, width int) string {
	var paragraphs []string
	for _, para := range strings.Split(text, "\n\n") {
		var out []string
		var prose []string
		flush := func() {
			if len(prose) > 0 {
				out = append(out, wrapWords(strings.Join(prose, " "), width)...)
				prose = nil
			}
		}

		for _, line := range strings.Split(para, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "*") || strings.HasPrefix(line, "•") {
				flush()
				out = append(out, line)
				continue
			}
			prose = append(prose, line)
		}
		flush()

		if len(out) > 0 {
			paragraphs = append(paragraphs, strings.Join(out, "\n"))
		}
	}
	return strings.Join(paragraphs, "\n\n")
}

func wrapWords(s string, width int) []string {
	var lines []string
	var current strings.Builder
	for _, word := range strings.Fields(s) {
		if current.Len() > 0 && current.Len()+1+len(word) > width {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
