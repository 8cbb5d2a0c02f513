// catalog-lint validates activity catalog files before import.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"xavilearn/catalog"
)

func main() {
	files := os.Args[1:]
	if len(files) == 0 {
		var err error
		files, err = filepath.Glob("./catalog/*.json")
		if err != nil {
			fmt.Println("error: cannot read ./catalog:", err)
			os.Exit(1)
		}
	}
	if len(files) == 0 {
		fmt.Println("no catalog files found in ./catalog")
		return
	}

	exitCode := 0
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			fmt.Printf("%s: read error: %v\n", f, err)
			exitCode = 1
			continue
		}

		entries, err := catalog.Parse(data)
		if err != nil {
			fmt.Printf("%s: %v\n", f, err)
			exitCode = 1
			continue
		}

		problems := catalog.Lint(entries)
		for _, p := range problems {
			fmt.Printf("%s: %s\n", f, p)
		}
		if len(problems) > 0 {
			exitCode = 1
			continue
		}
		fmt.Printf("%s: OK (%d activities)\n", f, len(entries))
	}
	os.Exit(exitCode)
}
