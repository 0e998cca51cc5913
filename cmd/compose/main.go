// compose builds a print sheet from photo files on the command line,
// useful for checking template layouts without running the booth.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/kioskworks/go-booth/pkg/compose"
	"github.com/kioskworks/go-booth/pkg/template"
)

func main() {
	catalogPath := flag.String("templates", "public/templates/index.json", "Template catalog path")
	templateID := flag.String("template", "", "Template id (defaults to the first in the catalog)")
	filterName := flag.String("filter", "none", "Filter: none, black_white or sepia")
	out := flag.String("out", "sheet.jpg", "Output JPEG path")
	flag.Parse()

	photos := flag.Args()
	if len(photos) == 0 {
		fmt.Fprintln(os.Stderr, "usage: compose [flags] photo.jpg [photo.jpg ...]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	catalog, err := template.LoadCatalog(*catalogPath)
	if err != nil {
		log.Printf("catalog unavailable (%v), using built-in", err)
		catalog = template.DefaultCatalog()
	}

	tpl := catalog.At(0)
	if *templateID != "" {
		t, ok := catalog.ByID(*templateID)
		if !ok {
			log.Fatalf("unknown template %q", *templateID)
		}
		tpl = t
	}

	filter, err := compose.ParseFilter(*filterName)
	if err != nil {
		log.Fatal(err)
	}

	comp, err := compose.SheetFiles(tpl, photos, filter)
	if err != nil {
		log.Fatalf("compose: %v", err)
	}
	if err := os.WriteFile(*out, comp.JPEG, 0o644); err != nil {
		log.Fatalf("write %s: %v", *out, err)
	}
	fmt.Printf("%s: template %s, %d photos, filter %s\n", *out, tpl.ID, len(photos), filter)
}
