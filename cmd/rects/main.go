// rects prints slot rectangles for the standard layouts as catalog JSON,
// the generator behind the shipped template index.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/kioskworks/go-booth/pkg/template"
)

func main() {
	slots := flag.Int("slots", 1, "Slot count: 1, 2 or 4")
	id := flag.String("id", "", "Template id (defaults to grid_<slots>)")
	name := flag.String("name", "", "Template display name")
	flag.Parse()

	rects, err := template.RectsForSlots(*slots, template.GridOptions{})
	if err != nil {
		log.Fatal(err)
	}

	tpl := template.Template{
		ID:    *id,
		Name:  *name,
		Slots: *slots,
		Rects: rects,
	}
	if tpl.ID == "" {
		tpl.ID = fmt.Sprintf("grid_%d", *slots)
	}
	if tpl.Name == "" {
		tpl.Name = fmt.Sprintf("Grid %d", *slots)
	}
	if err := tpl.Validate(); err != nil {
		log.Fatal(err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode([]template.Template{tpl}); err != nil {
		log.Fatal(err)
	}
}
