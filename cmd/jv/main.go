package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	flag "github.com/spf13/pflag"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/json-tools/jsonschema"
)

func usage() {
	fmt.Fprintln(os.Stderr, "jv [--assert-format] [--at POINTER] <json-schema> [<json-or-yaml-doc>]...")
	flag.PrintDefaults()
}

func main() {
	assertFormat := flag.Bool("assert-format", false, "treat the format keyword as an assertion")
	at := flag.String("at", "", "validate against the subschema at this reference instead of the root")
	quiet := flag.BoolP("quiet", "q", false, "report only the exit status")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	var loader jsonschema.FileLoader
	doc, err := loader.Load(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading schema %q: %v\n", flag.Arg(0), err)
		os.Exit(2)
	}
	sch, err := jsonschema.Decode(doc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid schema %q: %v\n", flag.Arg(0), err)
		os.Exit(2)
	}

	vd := jsonschema.Validator{AssertFormat: *assertFormat}
	pass := color.New(color.FgGreen)
	fail := color.New(color.FgRed, color.Bold)
	p := message.NewPrinter(language.English)

	invalid := 0
	for _, f := range flag.Args()[1:] {
		v, err := loader.Load(f)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error reading %q: %v\n", f, err)
			os.Exit(2)
		}

		if *at != "" {
			err = vd.ValidateAt(v, sch, *at)
		} else {
			err = vd.Validate(v, sch)
		}
		if err == nil {
			if !*quiet {
				pass.Printf("%s: valid\n", f)
			}
			continue
		}
		invalid++
		if *quiet {
			continue
		}
		fail.Printf("%s: invalid\n", f)
		if errs, ok := err.(jsonschema.ErrorList); ok {
			for _, e := range errs {
				fmt.Printf("  %s\n", e)
			}
			p.Printf("  %d error(s)\n", len(errs))
		} else {
			fmt.Printf("  %v\n", err)
		}
	}
	if invalid > 0 {
		os.Exit(1)
	}
}
